package engine

import (
	"github.com/roach88/todoflux/internal/ir"
)

// ReplayResult is the outcome of folding a sequence of actions.
type ReplayResult struct {
	// Collection is the state after every action was offered to the engine.
	Collection ir.Collection

	// Applied counts actions that changed (or were accepted against) the state.
	Applied int

	// Failures lists rejected actions in input order.
	Failures []ReplayFailure
}

// ReplayFailure records one rejected action.
type ReplayFailure struct {
	Index  int
	Action ir.Action
	Err    error
}

// Fold applies actions to initial in order.
//
// A rejected action leaves the state unchanged and folding continues, the
// same way a store keeps serving after a failed submit.
func (e *Engine) Fold(initial ir.Collection, actions []ir.Action) ReplayResult {
	state := initial.Clone()
	res := ReplayResult{}
	for i, action := range actions {
		next, err := e.Apply(state, action)
		if err != nil {
			res.Failures = append(res.Failures, ReplayFailure{Index: i, Action: action, Err: err})
			continue
		}
		state = next
		res.Applied++
	}
	res.Collection = state
	return res
}

// Replay folds actions starting from the empty collection.
//
// With a FixedGenerator seeded from a journal, Replay reproduces the recorded
// state exactly.
func (e *Engine) Replay(actions []ir.Action) ReplayResult {
	return e.Fold(ir.Collection{}, actions)
}
