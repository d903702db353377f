// Package engine implements the to-do transition engine.
//
// The engine is a pure function of (current Collection, Action): it returns
// the next Collection and never modifies its input. The only dependency is an
// IDGenerator, injected so tests and replay can make ids deterministic.
//
// # Transitions
//
//	ADD_NEW_TO_DO(text)  -> input + {fresh id, text} appended at the end
//	REMOVE_TO_DO(id)     -> input without the item whose id matches (no-op if absent)
//	anything else        -> input unchanged, UNKNOWN_OPERATION error
//
// Text is not validated here; rejecting empty input is the caller's job.
//
// # Identity
//
// Ids come from the generator and must never repeat for the lifetime of the
// generator. The engine additionally refuses ids already present in the input
// collection, retrying a bounded number of times (see WithMaxIDAttempts), so a
// misbehaving generator surfaces as ID_COLLISION rather than a duplicate.
//
// # Value semantics
//
// Every successful transition allocates a fresh backing array. A caller that
// keeps the previous Collection can rely on it staying unchanged.
package engine
