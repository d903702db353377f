package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/todoflux/internal/engine"
	"github.com/roach88/todoflux/internal/ir"
	"github.com/roach88/todoflux/internal/journal"
	"github.com/roach88/todoflux/internal/logging"
	"github.com/roach88/todoflux/internal/store"
	"github.com/roach88/todoflux/internal/testutil"
)

// Option configures a scenario run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger routes store logs for the run to l. Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh store and in-memory journal, with
// counter ids so the trace is reproducible.
//
// Execution flow:
//  1. Create the journal, store and recording observer
//  2. Submit every step, checking expect_error
//  3. Verify the journal replays to the final state
//  4. Read the trace back from the journal
//  5. Evaluate assertions
//
// Step mismatches and failed assertions are reported in the result. The
// returned error is reserved for infrastructure failures.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	j, err := journal.OpenMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer j.Close()

	prefix := scenario.IDPrefix
	if prefix == "" {
		prefix = engine.DefaultCounterPrefix
	}
	ids := engine.NewCounterGenerator(prefix)
	st := store.New(
		engine.New(ids),
		store.WithRecorder(j),
		store.WithLogger(cfg.logger.With("scenario", scenario.Name)),
	)

	observer := testutil.NewRecordingObserver(st.Collection)
	unsubscribe := st.Subscribe(observer.Notify)
	defer unsubscribe()

	ctx := context.Background()
	result := NewResult()

	if err := executeSteps(ctx, st, scenario.Steps, result); err != nil {
		return nil, err
	}

	report, err := j.VerifyReplay(ctx)
	if err != nil {
		return nil, err
	}
	if !report.Match() {
		result.AddError(fmt.Sprintf("replay mismatch: journal hash %s, replay hash %s",
			report.ExpectedHash, report.ActualHash))
	}

	entries, err := j.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	adds := 0
	for _, e := range entries {
		if e.Applied() && e.Action.Type == ir.ActionAddToDo {
			adds++
		}
		result.Trace = append(result.Trace, TraceEvent{
			Seq:     e.Seq,
			Action:  e.Action,
			ItemID:  e.ItemID,
			Outcome: e.Outcome,
			Items:   e.ItemCount,
		})
	}

	// Rejected adds must not consume counter ids.
	if issued := ids.Issued(); issued != int64(adds) {
		result.AddError(fmt.Sprintf("id counter issued %d id(s) for %d applied add(s)", issued, adds))
	}

	result.Final = st.Collection()
	result.Notifications = observer.Calls()

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeSteps submits each step and compares the outcome with the step's
// expect_error.
func executeSteps(ctx context.Context, st *store.Store, steps []Step, result *Result) error {
	for i, step := range steps {
		action, err := step.ToAction()
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}

		_, err = st.Submit(ctx, action)
		code := engine.ErrorCode(err)
		if err != nil && (code == "" || store.IsRecordError(err)) {
			return fmt.Errorf("step %d: %w", i, err)
		}

		switch {
		case step.ExpectError == "" && code != "":
			result.AddError(fmt.Sprintf("step %d %s: unexpected error: %v", i, action, err))
		case step.ExpectError != "" && code == "":
			result.AddError(fmt.Sprintf("step %d %s: expected %s, got success", i, action, step.ExpectError))
		case step.ExpectError != "" && string(code) != step.ExpectError:
			result.AddError(fmt.Sprintf("step %d %s: expected %s, got %s", i, action, step.ExpectError, code))
		}
	}
	return nil
}
