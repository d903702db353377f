package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/todoflux/internal/engine"
	"github.com/roach88/todoflux/internal/ir"
	"github.com/roach88/todoflux/internal/logging"
	"github.com/roach88/todoflux/internal/metrics"
)

// OutcomeApplied is the Submission outcome of an accepted action.
// Rejected actions carry their engine error code instead.
const OutcomeApplied = "applied"

// Submission describes one Submit call, accepted or not.
type Submission struct {
	// Seq numbers every submit, starting at 1.
	Seq int64

	Action ir.Action

	// ItemID is the id assigned by an add or targeted by a remove.
	// Empty for rejected actions.
	ItemID ir.ItemID

	// Outcome is OutcomeApplied or the engine error code.
	Outcome string

	// Collection is the state after the submit.
	Collection ir.Collection
}

// Recorder receives every submission. The journal implements it.
type Recorder interface {
	Record(ctx context.Context, sub Submission) error
}

// RecordError reports that the recorder failed to store a submission.
// The submission itself took effect.
type RecordError struct {
	Seq int64
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record submission %d: %v", e.Seq, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// IsRecordError reports whether err carries a recorder failure.
func IsRecordError(err error) bool {
	var re *RecordError
	return errors.As(err, &re)
}

// Observer is notified after each accepted submit. It takes no arguments;
// call Collection to read the new state.
type Observer func()

// Store holds the current collection.
//
// Thread-safety: Submit serializes on an internal mutex. Observers run after
// the lock is released, so they may call Collection or Subscribe.
type Store struct {
	engine *engine.Engine

	mu        sync.Mutex
	items     ir.Collection
	observers []*subscription
	submits   *engine.Clock
	applied   *engine.Clock

	logger   *slog.Logger
	recorder Recorder
	metrics  *metrics.Metrics
}

type subscription struct {
	fn Observer
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder attaches a Recorder that sees every submit.
func WithRecorder(r Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

// WithMetrics attaches action counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New creates an empty store. A nil engine uses engine.New(nil).
func New(eng *engine.Engine, opts ...Option) *Store {
	if eng == nil {
		eng = engine.New(nil)
	}
	s := &Store{
		engine:  eng,
		items:   ir.Collection{},
		submits: engine.NewClock(),
		applied: engine.NewClock(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit applies action to the held collection.
//
// On success the new collection replaces the old one, the recorder sees the
// submission, and every observer is called in registration order. On failure
// the collection is unchanged, observers are not called, and the engine's
// *engine.RuntimeError is returned. The returned collection is a copy of the
// state after the call.
//
// A recorder failure is returned as a *RecordError, joined with the engine
// error when the action was rejected. On success it is returned after
// observers have been notified; the collection change is never rolled back.
func (s *Store) Submit(ctx context.Context, action ir.Action) (ir.Collection, error) {
	s.mu.Lock()
	seq := s.submits.Next()
	next, applyErr := s.engine.Apply(s.items, action)

	sub := Submission{Seq: seq, Action: action, Outcome: OutcomeApplied}
	if applyErr != nil {
		sub.Outcome = outcomeOf(applyErr)
		sub.Collection = s.items.Clone()
	} else {
		sub.ItemID = affectedID(action, next)
		s.items = next
		s.applied.Next()
		sub.Collection = next.Clone()
	}
	observers := s.activeObservers()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ObserveSubmit(action.Type, sub.Outcome, len(sub.Collection))
	}

	var recordErr error
	if s.recorder != nil {
		if err := s.recorder.Record(ctx, sub); err != nil {
			recordErr = &RecordError{Seq: seq, Err: err}
		}
	}

	if applyErr != nil {
		s.logger.Warn("action rejected",
			"seq", seq,
			"action", action.String(),
			"code", sub.Outcome,
			"error", applyErr,
		)
		if recordErr != nil {
			return sub.Collection, errors.Join(applyErr, recordErr)
		}
		return sub.Collection, applyErr
	}

	s.logger.Debug("action applied",
		"seq", seq,
		"action", action.String(),
		"item_id", sub.ItemID.String(),
		"items", len(sub.Collection),
	)

	for _, obs := range observers {
		obs.fn()
	}

	return sub.Collection, recordErr
}

// Collection returns a copy of the current collection.
func (s *Store) Collection() ir.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Clone()
}

// Subscribe registers an observer and returns a function that removes it.
// Calling the returned function more than once has no further effect.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	sub := &subscription{fn: fn}

	s.mu.Lock()
	s.observers = append(s.observers, sub)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, o := range s.observers {
				if o == sub {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					break
				}
			}
		})
	}
}

// Seq returns the number of accepted submits so far.
func (s *Store) Seq() int64 {
	return s.applied.Current()
}

// Submits returns the number of Submit calls so far, accepted or not.
func (s *Store) Submits() int64 {
	return s.submits.Current()
}

// activeObservers snapshots the observer list. Caller holds s.mu.
// Subscribe and unsubscribe calls made by observers take effect from the
// next submit.
func (s *Store) activeObservers() []*subscription {
	out := make([]*subscription, len(s.observers))
	copy(out, s.observers)
	return out
}

func affectedID(action ir.Action, next ir.Collection) ir.ItemID {
	switch action.Type {
	case ir.ActionAddToDo:
		return next[len(next)-1].ID
	case ir.ActionRemoveToDo:
		id, _ := action.StringValue()
		return ir.ItemID(id)
	}
	return ""
}

func outcomeOf(err error) string {
	if code := engine.ErrorCode(err); code != "" {
		return string(code)
	}
	return "ERROR"
}
