package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/todoflux/internal/ir"
)

// TraceSnapshot captures what a golden file pins down for a scenario.
type TraceSnapshot struct {
	ScenarioName  string
	Trace         []TraceEvent
	Final         ir.Collection
	Notifications int
}

// NewTraceSnapshot builds the snapshot of a result.
func NewTraceSnapshot(name string, result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName:  name,
		Trace:         result.Trace,
		Final:         result.Final,
		Notifications: result.Notifications,
	}
}

// toCanonicalMap converts the snapshot to plain maps and slices that
// ir.MarshalCanonical accepts.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"seq":     event.Seq,
			"action":  event.Action,
			"outcome": event.Outcome,
			"items":   event.Items,
		}
		if event.ItemID != "" {
			eventMap["item_id"] = event.ItemID
		}
		traceList[i] = eventMap
	}

	final := s.Final
	if final == nil {
		final = ir.Collection{}
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
		"final":         final,
		"notifications": s.Notifications,
	}
}

// MarshalCanonical renders the snapshot as canonical JSON, the golden file
// format.
func (s *TraceSnapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. A snapshot mismatch fails the
// test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := NewTraceSnapshot(scenarioName, result)
	traceJSON, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
