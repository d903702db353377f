package journal

import (
	"context"
	"fmt"

	"github.com/roach88/todoflux/internal/engine"
	"github.com/roach88/todoflux/internal/ir"
)

// ReplayReport compares the journaled state with a fresh replay.
type ReplayReport struct {
	Applied      int
	Collection   ir.Collection
	ExpectedHash string
	ActualHash   string
}

// Match reports whether replay reproduced the journaled state.
func (r ReplayReport) Match() bool {
	return r.ExpectedHash == r.ActualHash
}

// VerifyReplay folds the applied actions through an engine that hands out
// the journaled ids again and compares collection hashes.
//
// A mismatch is reported in the result, not as an error; errors mean the
// journal could not be read or the replay itself failed.
func (j *Journal) VerifyReplay(ctx context.Context) (ReplayReport, error) {
	actions, ids, err := j.AppliedActions(ctx)
	if err != nil {
		return ReplayReport{}, fmt.Errorf("verify replay: %w", err)
	}
	expected, err := j.LastHash(ctx)
	if err != nil {
		return ReplayReport{}, fmt.Errorf("verify replay: %w", err)
	}

	// One attempt per add: a journaled id that collides is reported as
	// ID_COLLISION instead of drawing the next add's id.
	gen := engine.NewFixedGenerator(ids...)
	res := engine.New(gen, engine.WithMaxIDAttempts(1)).Replay(actions)
	if len(res.Failures) > 0 {
		f := res.Failures[0]
		return ReplayReport{}, fmt.Errorf("verify replay: action %d (%s): %w", f.Index, f.Action, f.Err)
	}
	if n := gen.Remaining(); n > 0 {
		return ReplayReport{}, fmt.Errorf("verify replay: %d journaled id(s) not used by replay", n)
	}

	actual, err := ir.CollectionHash(res.Collection)
	if err != nil {
		return ReplayReport{}, fmt.Errorf("verify replay: %w", err)
	}

	return ReplayReport{
		Applied:      res.Applied,
		Collection:   res.Collection,
		ExpectedHash: expected,
		ActualHash:   actual,
	}, nil
}
