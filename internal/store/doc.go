// Package store holds the current to-do collection and makes it observable.
//
// A Store owns exactly one Collection. Changes go through Submit, which runs
// the transition engine and swaps in the result; observers registered with
// Subscribe are then called in registration order. Collection returns a copy,
// so nothing outside the store can change the held state.
//
// The store is process-local. An optional Recorder (see internal/journal)
// receives every submit for tracing and replay verification, but nothing is
// persisted across runs.
package store
