// Package journal keeps an append-only log of store submissions in SQLite.
//
// Every Submit, accepted or rejected, becomes one entry: the action value
// as submitted, the id it assigned or targeted, the outcome, and the
// content hash of the collection afterwards. The CLI opens the journal at
// ":memory:" so nothing outlives the process; tests may use a file under
// t.TempDir().
//
// The journal exists to make runs inspectable (the trace printed by
// `todo apply --trace`) and to verify replay: folding the applied actions
// through an engine seeded with the journaled ids must reproduce the final
// collection hash.
//
// # Database Configuration
//
//   - Single connection: SQLite has one writer, and ":memory:" databases are
//     per-connection
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - user_version tracks the schema version
//
// All ordering uses seq; queries end in ORDER BY seq ASC.
package journal
