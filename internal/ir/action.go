package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// ActionType is the label carried by an Action. By convention labels are
// upper-case constants.
type ActionType string

const (
	// ActionAddToDo requests a new item; Value is the item text.
	ActionAddToDo ActionType = "ADD_NEW_TO_DO"

	// ActionRemoveToDo requests deletion of an item; Value is the item id.
	ActionRemoveToDo ActionType = "REMOVE_TO_DO"
)

// KnownActionTypes lists every label the engine recognizes, in a stable order.
var KnownActionTypes = []ActionType{ActionAddToDo, ActionRemoveToDo}

// IsKnown reports whether the engine recognizes this label.
func (t ActionType) IsKnown() bool {
	return slices.Contains(KnownActionTypes, t)
}

// Action is a labeled request to change a Collection.
//
// Actions are plain values: they can be built with AddToDo / RemoveToDo,
// decoded from JSON with ParseAction, or constructed directly (which is how
// unrecognized labels reach the engine).
type Action struct {
	Type  ActionType `json:"type"`
	Value Value      `json:"value"`
}

// AddToDo builds an ADD_NEW_TO_DO action carrying the item text.
func AddToDo(text string) Action {
	return Action{Type: ActionAddToDo, Value: String(text)}
}

// RemoveToDo builds a REMOVE_TO_DO action carrying the target id.
func RemoveToDo(id ItemID) Action {
	return Action{Type: ActionRemoveToDo, Value: String(id)}
}

// StringValue returns the payload as a string when it is one.
func (a Action) StringValue() (string, bool) {
	s, ok := a.Value.(String)
	return string(s), ok
}

// String renders the action for logs.
func (a Action) String() string {
	payload, err := MarshalValue(a.Value)
	if err != nil {
		payload = []byte(fmt.Sprintf("<%T>", a.Value))
	}
	return fmt.Sprintf("%s(%s)", a.Type, payload)
}

// MarshalJSON encodes the action as {"type":...,"value":...}.
func (a Action) MarshalJSON() ([]byte, error) {
	typeBytes, err := json.Marshal(string(a.Type))
	if err != nil {
		return nil, err
	}
	valueBytes, err := MarshalValue(a.Value)
	if err != nil {
		return nil, fmt.Errorf("marshal action value: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	buf.Write(typeBytes)
	buf.WriteString(`,"value":`)
	buf.Write(valueBytes)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler for Action.
// A missing value decodes to Null.
func (a *Action) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type  *string         `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Type == nil {
		return fmt.Errorf("action: type is required")
	}

	var val Value = Null{}
	if len(raw.Value) > 0 {
		v, err := ParseValue(raw.Value)
		if err != nil {
			return fmt.Errorf("action value: %w", err)
		}
		val = v
	}

	a.Type = ActionType(*raw.Type)
	a.Value = val
	return nil
}

// ParseAction decodes a single JSON action document.
func ParseAction(data []byte) (Action, error) {
	var a Action
	if err := json.Unmarshal(data, &a); err != nil {
		return Action{}, fmt.Errorf("parse action: %w", err)
	}
	return a, nil
}
