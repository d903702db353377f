package engine

import (
	"github.com/roach88/todoflux/internal/ir"
)

// DefaultMaxIDAttempts bounds how many ids Apply draws before giving up
// with ID_COLLISION.
const DefaultMaxIDAttempts = 8

// Engine applies actions to collections.
//
// Engine holds no collection state; the same Engine can serve any number of
// stores. It is safe for concurrent use when its IDGenerator is.
type Engine struct {
	ids           IDGenerator
	maxIDAttempts int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxIDAttempts sets the id retry bound. Values below 1 are ignored.
func WithMaxIDAttempts(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.maxIDAttempts = n
		}
	}
}

// New creates an engine drawing ids from ids.
// A nil generator selects UUIDv4Generator.
func New(ids IDGenerator, opts ...Option) *Engine {
	if ids == nil {
		ids = UUIDv4Generator{}
	}
	e := &Engine{
		ids:           ids,
		maxIDAttempts: DefaultMaxIDAttempts,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply computes the collection that results from action.
//
// On success the returned collection is a new slice; current is never
// modified. On error the returned collection is current itself and the error
// is a *RuntimeError.
func (e *Engine) Apply(current ir.Collection, action ir.Action) (ir.Collection, error) {
	switch action.Type {
	case ir.ActionAddToDo:
		text, ok := action.StringValue()
		if !ok {
			return current, NewInvalidPayloadError(action, "a string")
		}
		id, err := e.freshID(current, action)
		if err != nil {
			return current, err
		}
		next := make(ir.Collection, len(current), len(current)+1)
		copy(next, current)
		return append(next, ir.Item{ID: id, Text: text}), nil

	case ir.ActionRemoveToDo:
		target, ok := action.StringValue()
		if !ok {
			return current, NewInvalidPayloadError(action, "a string id")
		}
		next := make(ir.Collection, 0, len(current))
		for _, item := range current {
			if item.ID != ir.ItemID(target) {
				next = append(next, item)
			}
		}
		return next, nil

	default:
		return current, NewUnknownOperationError(action)
	}
}

// freshID draws ids until one is not present in current.
func (e *Engine) freshID(current ir.Collection, action ir.Action) (ir.ItemID, error) {
	var id ir.ItemID
	for attempt := 1; attempt <= e.maxIDAttempts; attempt++ {
		id = e.ids.Generate()
		if id != "" && !current.Contains(id) {
			return id, nil
		}
	}
	return "", NewIDCollisionError(action, e.maxIDAttempts, id)
}
