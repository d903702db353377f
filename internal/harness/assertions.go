package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/todoflux/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s -> %s", event.Seq, event.Action, event.Outcome)
		if event.ItemID != "" {
			fmt.Fprintf(&buf, " (%s)", event.ItemID)
		}
		fmt.Fprintf(&buf, ", %d items\n", event.Items)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and returns
// one message per failure. An empty slice means all assertions held.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %s", i, err.Error()))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertFinalTexts:
		return assertFinalTexts(result, a)
	case AssertFinalIDs:
		return assertFinalIDs(result, a)
	case AssertFinalCount:
		return assertFinalCount(result, a)
	case AssertUniqueIDs:
		return assertUniqueIDs(result)
	case AssertNotifications:
		return assertNotifications(result, a)
	case AssertOutcomeCount:
		return assertOutcomeCount(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertFinalTexts checks item texts in order.
func assertFinalTexts(result *Result, a Assertion) error {
	actual := result.Final.Texts()
	if slices.Equal(actual, a.Texts) {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalTexts,
		Expected: fmt.Sprintf("%q", a.Texts),
		Actual:   fmt.Sprintf("%q", actual),
		Trace:    result.Trace,
	}
}

// assertFinalIDs checks item ids in order.
func assertFinalIDs(result *Result, a Assertion) error {
	actual := idStrings(result.Final)
	if slices.Equal(actual, a.IDs) {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalIDs,
		Expected: fmt.Sprintf("%q", a.IDs),
		Actual:   fmt.Sprintf("%q", actual),
		Trace:    result.Trace,
	}
}

func assertFinalCount(result *Result, a Assertion) error {
	if result.Final.Len() == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalCount,
		Expected: fmt.Sprintf("%d items", a.Count),
		Actual:   fmt.Sprintf("%d items", result.Final.Len()),
		Trace:    result.Trace,
	}
}

func assertUniqueIDs(result *Result) error {
	if result.Final.HasUniqueIDs() {
		return nil
	}
	return &AssertionError{
		Type:     AssertUniqueIDs,
		Expected: "pairwise distinct ids",
		Actual:   fmt.Sprintf("%q", idStrings(result.Final)),
		Trace:    result.Trace,
	}
}

func assertNotifications(result *Result, a Assertion) error {
	if result.Notifications == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertNotifications,
		Expected: fmt.Sprintf("%d notifications", a.Count),
		Actual:   fmt.Sprintf("%d notifications", result.Notifications),
		Trace:    result.Trace,
	}
}

// assertOutcomeCount counts trace events with the given outcome.
func assertOutcomeCount(result *Result, a Assertion) error {
	count := 0
	for _, event := range result.Trace {
		if event.Outcome == a.Outcome {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertOutcomeCount,
		Expected: fmt.Sprintf("%d events with outcome %s", a.Count, a.Outcome),
		Actual:   fmt.Sprintf("%d events", count),
		Trace:    result.Trace,
	}
}

func idStrings(c ir.Collection) []string {
	out := make([]string, 0, len(c))
	for _, id := range c.IDs() {
		out = append(out, string(id))
	}
	return out
}
