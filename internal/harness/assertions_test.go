package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todoflux/internal/ir"
)

func sampleResult() *Result {
	r := NewResult()
	r.Final = ir.Collection{
		{ID: "todo-1", Text: "Buy milk."},
		{ID: "todo-2", Text: "Practice typing."},
	}
	r.Notifications = 2
	r.Trace = []TraceEvent{
		{Seq: 1, Action: ir.AddToDo("Buy milk."), ItemID: "todo-1", Outcome: "applied", Items: 1},
		{Seq: 2, Action: ir.Action{Type: "BOGUS", Value: ir.Null{}}, Outcome: "UNKNOWN_OPERATION", Items: 1},
		{Seq: 3, Action: ir.AddToDo("Practice typing."), ItemID: "todo-2", Outcome: "applied", Items: 2},
	}
	return r
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertFinalTexts, Texts: []string{"Buy milk.", "Practice typing."}},
		{Type: AssertFinalIDs, IDs: []string{"todo-1", "todo-2"}},
		{Type: AssertFinalCount, Count: 2},
		{Type: AssertUniqueIDs},
		{Type: AssertNotifications, Count: 2},
		{Type: AssertOutcomeCount, Outcome: "applied", Count: 2},
		{Type: AssertOutcomeCount, Outcome: "UNKNOWN_OPERATION", Count: 1},
		{Type: AssertOutcomeCount, Outcome: "INVALID_PAYLOAD", Count: 0},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		contains  string
	}{
		{"texts order", Assertion{Type: AssertFinalTexts, Texts: []string{"Practice typing.", "Buy milk."}}, "final_texts"},
		{"ids", Assertion{Type: AssertFinalIDs, IDs: []string{"todo-1"}}, `["todo-1" "todo-2"]`},
		{"count", Assertion{Type: AssertFinalCount, Count: 3}, "Expected: 3 items"},
		{"notifications", Assertion{Type: AssertNotifications, Count: 1}, "Actual: 2 notifications"},
		{"outcome", Assertion{Type: AssertOutcomeCount, Outcome: "applied", Count: 1}, "Actual: 2 events"},
		{"unknown type", Assertion{Type: "trace_order"}, `unknown assertion type "trace_order"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], "assertion 0")
			assert.Contains(t, errs[0], tt.contains)
		})
	}
}

func TestEvaluateAssertions_UniqueIDsViolation(t *testing.T) {
	r := sampleResult()
	r.Final = ir.Collection{{ID: "dup", Text: "a"}, {ID: "dup", Text: "b"}}

	errs := EvaluateAssertions(r, []Assertion{{Type: AssertUniqueIDs}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "pairwise distinct ids")
}

func TestEvaluateAssertions_EmptyCollection(t *testing.T) {
	r := NewResult()
	errs := EvaluateAssertions(r, []Assertion{
		{Type: AssertFinalTexts, Texts: []string{}},
		{Type: AssertFinalIDs},
		{Type: AssertFinalCount, Count: 0},
		{Type: AssertUniqueIDs},
	})
	assert.Empty(t, errs)
}

func TestAssertionError_Format(t *testing.T) {
	r := sampleResult()
	err := assertFinalCount(r, Assertion{Type: AssertFinalCount, Count: 0})
	require.Error(t, err)

	var aerr *AssertionError
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, AssertFinalCount, aerr.Type)

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: final_count")
	assert.Contains(t, msg, "Full trace:")
	assert.Contains(t, msg, `[1] ADD_NEW_TO_DO("Buy milk.") -> applied (todo-1), 1 items`)
	assert.Contains(t, msg, `[2] BOGUS(null) -> UNKNOWN_OPERATION, 1 items`)
}
