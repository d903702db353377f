package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/todoflux/internal/engine"
	"github.com/roach88/todoflux/internal/ir"
)

// Scenario defines an end-to-end run: steps submitted in order to a fresh
// store, then assertions over the final state and trace.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// IDPrefix is the counter id prefix. Defaults to "todo-", so the first
	// add gets "todo-1".
	IDPrefix string `yaml:"id_prefix,omitempty"`

	// Steps are submitted in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state and trace.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one submit. Exactly one of Add, Remove or Action is set.
type Step struct {
	// Add submits ADD_NEW_TO_DO with this text.
	Add *string `yaml:"add,omitempty"`

	// Remove submits REMOVE_TO_DO with this id.
	Remove *string `yaml:"remove,omitempty"`

	// Action submits an arbitrary action, including unknown labels.
	Action *RawAction `yaml:"action,omitempty"`

	// ExpectError is the error code the submit must fail with.
	// Empty means the submit must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// RawAction is an action written out by hand in a scenario.
type RawAction struct {
	Type  string `yaml:"type"`
	Value any    `yaml:"value"`
}

// ToAction converts the step into the action it submits.
func (s Step) ToAction() (ir.Action, error) {
	switch {
	case s.Add != nil:
		return ir.AddToDo(*s.Add), nil
	case s.Remove != nil:
		return ir.RemoveToDo(ir.ItemID(*s.Remove)), nil
	case s.Action != nil:
		v, err := ir.FromGo(s.Action.Value)
		if err != nil {
			return ir.Action{}, fmt.Errorf("action value: %w", err)
		}
		return ir.Action{Type: ir.ActionType(s.Action.Type), Value: v}, nil
	default:
		return ir.Action{}, fmt.Errorf("step has no add, remove or action")
	}
}

// Assertion validates final state or trace.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Texts is the expected item text order (final_texts).
	Texts []string `yaml:"texts,omitempty"`

	// IDs is the expected item id order (final_ids).
	IDs []string `yaml:"ids,omitempty"`

	// Count is used by final_count, notifications and outcome_count.
	Count int `yaml:"count,omitempty"`

	// Outcome is the trace outcome to count (outcome_count): "applied" or an
	// error code.
	Outcome string `yaml:"outcome,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalTexts    = "final_texts"
	AssertFinalIDs      = "final_ids"
	AssertFinalCount    = "final_count"
	AssertUniqueIDs     = "unique_ids"
	AssertNotifications = "notifications"
	AssertOutcomeCount  = "outcome_count"
)

// LoadScenario reads, schema-checks and parses a scenario YAML file.
// Returns an error if the file doesn't exist, violates the schema,
// contains unknown fields, or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	if err := ValidateScenario(filepath.Base(path), data); err != nil {
		return nil, err
	}

	return ParseScenario(data)
}

// ParseScenario decodes a scenario document without the CUE schema check.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarioFiles returns the .yaml and .yml files directly under dir,
// sorted by name. A non-empty filter is a filepath.Match pattern applied to
// the base name.
func FindScenarioFiles(dir, filter string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scenarios directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenarios directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if filter != "" {
			ok, err := filepath.Match(filter, name)
			if err != nil {
				return nil, fmt.Errorf("invalid filter %q: %w", filter, err)
			}
			if !ok {
				continue
			}
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s *Step) error {
	set := 0
	for _, present := range []bool{s.Add != nil, s.Remove != nil, s.Action != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of add, remove, action is required", index)
	}

	if s.Action != nil && s.Action.Type == "" {
		return fmt.Errorf("steps[%d]: action type is required", index)
	}

	switch engine.RuntimeErrorCode(s.ExpectError) {
	case "", engine.ErrCodeUnknownOperation, engine.ErrCodeInvalidPayload, engine.ErrCodeIDCollision:
	default:
		return fmt.Errorf("steps[%d]: unknown error code %q", index, s.ExpectError)
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFinalTexts, AssertFinalIDs, AssertUniqueIDs:
	case AssertFinalCount, AssertNotifications:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertOutcomeCount:
		if a.Outcome == "" {
			return fmt.Errorf("assertions[%d]: outcome is required for outcome_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for outcome_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
