// Package ir provides the canonical data types for the to-do engine.
//
// This package contains type definitions and their encodings only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Items are immutable once created; only the engine creates them
//   - Collections keep insertion order and never hold duplicate ids
//   - Action payloads are sealed Values; floats are rejected on decode
//   - All JSON tags use snake_case
package ir
