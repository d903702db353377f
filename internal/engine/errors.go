package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/todoflux/internal/ir"
)

// RuntimeError represents an action the engine could not apply.
//
// Runtime errors include:
//   - Unknown operation: the action label is not recognized
//   - Invalid payload: the label is known but the value has the wrong shape
//   - ID collision: the generator kept returning ids already in use
//
// The collection is never modified when a RuntimeError is returned.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// ActionType is the label of the rejected action.
	ActionType ir.ActionType

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownOperation indicates an unrecognized action label.
	ErrCodeUnknownOperation RuntimeErrorCode = "UNKNOWN_OPERATION"

	// ErrCodeInvalidPayload indicates a recognized label with a malformed value.
	ErrCodeInvalidPayload RuntimeErrorCode = "INVALID_PAYLOAD"

	// ErrCodeIDCollision indicates no unused id could be generated.
	ErrCodeIDCollision RuntimeErrorCode = "ID_COLLISION"
)

// Sentinels for errors.Is. A *RuntimeError matches the sentinel of its code.
var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrInvalidPayload   = errors.New("invalid payload")
	ErrIDCollision      = errors.New("id collision")
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.ActionType != "" {
		return fmt.Sprintf("%s: %s (action=%s)", e.Code, e.Message, e.ActionType)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is lets errors.Is match a RuntimeError against the code sentinels.
func (e *RuntimeError) Is(target error) bool {
	switch target {
	case ErrUnknownOperation:
		return e.Code == ErrCodeUnknownOperation
	case ErrInvalidPayload:
		return e.Code == ErrCodeInvalidPayload
	case ErrIDCollision:
		return e.Code == ErrCodeIDCollision
	}
	return false
}

// ErrorCode extracts the RuntimeErrorCode from err, or "" if err is not a
// RuntimeError. Uses errors.As to handle wrapped errors.
func ErrorCode(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsUnknownOperation returns true if the error is an unknown operation error.
// Uses errors.As to handle wrapped errors.
func IsUnknownOperation(err error) bool {
	return ErrorCode(err) == ErrCodeUnknownOperation
}

// IsInvalidPayload returns true if the error is an invalid payload error.
func IsInvalidPayload(err error) bool {
	return ErrorCode(err) == ErrCodeInvalidPayload
}

// NewUnknownOperationError creates a RuntimeError for an unrecognized label.
func NewUnknownOperationError(action ir.Action) *RuntimeError {
	return &RuntimeError{
		Code:       ErrCodeUnknownOperation,
		Message:    fmt.Sprintf("unrecognized action type %q", string(action.Type)),
		ActionType: action.Type,
	}
}

// NewInvalidPayloadError creates a RuntimeError for a malformed action value.
func NewInvalidPayloadError(action ir.Action, want string) *RuntimeError {
	return &RuntimeError{
		Code:       ErrCodeInvalidPayload,
		Message:    fmt.Sprintf("value must be %s, got %s", want, payloadKind(action.Value)),
		ActionType: action.Type,
	}
}

// NewIDCollisionError creates a RuntimeError for an exhausted id search.
func NewIDCollisionError(action ir.Action, attempts int, last ir.ItemID) *RuntimeError {
	return &RuntimeError{
		Code:       ErrCodeIDCollision,
		Message:    fmt.Sprintf("no unused id after %d attempts", attempts),
		ActionType: action.Type,
		Details: map[string]string{
			"attempts": fmt.Sprintf("%d", attempts),
			"last_id":  last.String(),
		},
	}
}

func payloadKind(v ir.Value) string {
	switch v.(type) {
	case nil, ir.Null:
		return "null"
	case ir.String:
		return "string"
	case ir.Int:
		return "integer"
	case ir.Bool:
		return "boolean"
	case ir.Array:
		return "array"
	case ir.Object:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
