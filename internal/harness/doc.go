// Package harness runs to-do scenarios end to end.
//
// A scenario is a YAML file listing steps (adds, removes, raw actions) and
// assertions over the resulting state:
//
//	name: remove_first
//	description: "Removing the first item keeps the second"
//	steps:
//	  - add: "Buy milk."
//	  - add: "Practice typing."
//	  - remove: todo-1
//	assertions:
//	  - type: final_texts
//	    texts: ["Practice typing."]
//
// Each run uses a fresh store over a counter id generator (todo-1, todo-2,
// ...), an in-memory journal, and a recording observer, so traces are
// reproducible and can be compared against golden files.
//
// Scenario files are checked twice: against the embedded CUE schema
// (ValidateScenario) and by strict YAML decoding into Scenario, which rejects
// unknown fields.
//
// # Trace
//
// The trace is read back from the journal after the last step, one event per
// submit:
//
//	{"action":{"type":"ADD_NEW_TO_DO","value":"Buy milk."},"item_id":"todo-1","items":1,"outcome":"applied","seq":1}
//
// Golden files hold the canonical JSON of the trace, the final collection,
// and the notification count. Regenerate them with:
//
//	go test ./internal/harness -update
package harness
