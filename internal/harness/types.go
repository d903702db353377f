package harness

import "github.com/roach88/todoflux/internal/ir"

// TraceEvent is one submit as recorded by the journal.
type TraceEvent struct {
	Seq     int64     `json:"seq"`
	Action  ir.Action `json:"action"`
	ItemID  ir.ItemID `json:"item_id,omitempty"`
	Outcome string    `json:"outcome"`
	Items   int       `json:"items"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step behaved as expected and every assertion
	// held.
	Pass bool `json:"pass"`

	// Trace lists every submit in order, accepted or not.
	Trace []TraceEvent `json:"trace"`

	// Errors contains step and assertion failure messages.
	Errors []string `json:"errors,omitempty"`

	// Final is the collection after the last step.
	Final ir.Collection `json:"final"`

	// Notifications counts observer calls during the run.
	Notifications int `json:"notifications"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Final:  ir.Collection{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
