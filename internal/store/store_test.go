package store

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todoflux/internal/engine"
	"github.com/roach88/todoflux/internal/ir"
	"github.com/roach88/todoflux/internal/logging"
	"github.com/roach88/todoflux/internal/metrics"
	tu "github.com/roach88/todoflux/internal/testutil"
)

// newTestStore creates a store with counter ids todo-1, todo-2, ...
func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	return New(engine.New(engine.NewCounterGenerator("todo-")), opts...)
}

type memRecorder struct {
	mu   sync.Mutex
	subs []Submission
	err  error
}

func (r *memRecorder) Record(_ context.Context, sub Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, sub)
	return r.err
}

func TestNew_StartsEmpty(t *testing.T) {
	s := New(nil)

	c := s.Collection()
	assert.NotNil(t, c)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), s.Seq())
}

func TestSubmit_AddAdd(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Submit(ctx, ir.AddToDo("Buy milk."))
	require.NoError(t, err)
	got, err := s.Submit(ctx, ir.AddToDo("Practice typing."))
	require.NoError(t, err)

	assert.Equal(t, []string{"Buy milk.", "Practice typing."}, got.Texts())
	assert.True(t, got.HasUniqueIDs())
	assert.Equal(t, got, s.Collection())
	assert.Equal(t, int64(2), s.Seq())
}

func TestSubmit_RemoveFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Submit(ctx, ir.AddToDo("Buy milk."))
	require.NoError(t, err)
	_, err = s.Submit(ctx, ir.AddToDo("Practice typing."))
	require.NoError(t, err)

	milk := s.Collection()[0].ID
	got, err := s.Submit(ctx, ir.RemoveToDo(milk))
	require.NoError(t, err)

	assert.Equal(t, []string{"Practice typing."}, got.Texts())
}

func TestSubmit_RemoveMissingIsNoop(t *testing.T) {
	s := newTestStore(t)
	rec := tu.NewRecordingObserver(s.Collection)
	s.Subscribe(rec.Notify)

	got, err := s.Submit(context.Background(), ir.RemoveToDo("nonexistent-id"))
	require.NoError(t, err)

	assert.Equal(t, 0, got.Len())
	assert.Equal(t, 1, rec.Calls(), "a no-op remove is still an accepted submit")
}

func TestSubmit_UnknownOperation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.Submit(ctx, ir.AddToDo("Buy milk."))
	require.NoError(t, err)
	before := s.Collection()

	rec := tu.NewRecordingObserver(s.Collection)
	s.Subscribe(rec.Notify)

	got, err := s.Submit(ctx, ir.Action{Type: "BOGUS", Value: ir.Null{}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrUnknownOperation))
	assert.True(t, before.Equal(got))
	assert.True(t, before.Equal(s.Collection()))
	assert.Equal(t, 0, rec.Calls())
	assert.Equal(t, int64(1), s.Seq())
	assert.Equal(t, int64(2), s.Submits())
}

func TestCollection_ReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Submit(context.Background(), ir.AddToDo("Buy milk."))
	require.NoError(t, err)

	c := s.Collection()
	c[0].Text = "mutated"
	_ = append(c, ir.Item{ID: "x", Text: "sneaky"})

	assert.Equal(t, []string{"Buy milk."}, s.Collection().Texts())
}

func TestSubmit_ReturnedCollectionIsCopy(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Submit(context.Background(), ir.AddToDo("Buy milk."))
	require.NoError(t, err)

	got[0].Text = "mutated"
	assert.Equal(t, "Buy milk.", s.Collection()[0].Text)
}

func TestSubscribe_RegistrationOrder(t *testing.T) {
	s := newTestStore(t)
	var order []string
	s.Subscribe(func() { order = append(order, "first") })
	s.Subscribe(func() { order = append(order, "second") })
	s.Subscribe(func() { order = append(order, "third") })

	_, err := s.Submit(context.Background(), ir.AddToDo("x"))
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestSubscribe_ObserverSeesNewState(t *testing.T) {
	s := newTestStore(t)
	rec := tu.NewRecordingObserver(s.Collection)
	s.Subscribe(rec.Notify)

	ctx := context.Background()
	_, err := s.Submit(ctx, ir.AddToDo("a"))
	require.NoError(t, err)
	_, err = s.Submit(ctx, ir.AddToDo("b"))
	require.NoError(t, err)

	snaps := rec.Snapshots()
	require.Len(t, snaps, 2)
	assert.Equal(t, []string{"a"}, snaps[0].Texts())
	assert.Equal(t, []string{"a", "b"}, snaps[1].Texts())
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	s := newTestStore(t)
	rec := tu.NewRecordingObserver(nil)
	unsubscribe := s.Subscribe(rec.Notify)
	ctx := context.Background()

	_, err := s.Submit(ctx, ir.AddToDo("a"))
	require.NoError(t, err)

	unsubscribe()
	unsubscribe()

	_, err = s.Submit(ctx, ir.AddToDo("b"))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Calls())
}

func TestSubscribe_UnsubscribeOnlyRemovesOwnEntry(t *testing.T) {
	s := newTestStore(t)
	a := tu.NewRecordingObserver(nil)
	b := tu.NewRecordingObserver(nil)

	unsubA := s.Subscribe(a.Notify)
	s.Subscribe(b.Notify)
	unsubA()
	unsubA()

	_, err := s.Submit(context.Background(), ir.AddToDo("x"))
	require.NoError(t, err)
	assert.Equal(t, 0, a.Calls())
	assert.Equal(t, 1, b.Calls())
}

func TestSubscribe_UnsubscribeDuringNotification(t *testing.T) {
	s := newTestStore(t)
	later := tu.NewRecordingObserver(nil)

	var unsubLater func()
	s.Subscribe(func() { unsubLater() })
	unsubLater = s.Subscribe(later.Notify)

	ctx := context.Background()
	_, err := s.Submit(ctx, ir.AddToDo("a"))
	require.NoError(t, err)
	_, err = s.Submit(ctx, ir.AddToDo("b"))
	require.NoError(t, err)

	assert.Equal(t, 1, later.Calls(), "removal takes effect from the next submit")
}

func TestSubscribe_ObserverMayReadStore(t *testing.T) {
	s := newTestStore(t)
	var seen []int
	s.Subscribe(func() { seen = append(seen, s.Collection().Len()) })

	ctx := context.Background()
	for _, text := range []string{"a", "b", "c"} {
		_, err := s.Submit(ctx, ir.AddToDo(text))
		require.NoError(t, err)
	}

	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestSubmit_Recorder(t *testing.T) {
	rec := &memRecorder{}
	s := newTestStore(t, WithRecorder(rec))
	ctx := context.Background()

	_, err := s.Submit(ctx, ir.AddToDo("Buy milk."))
	require.NoError(t, err)
	_, err = s.Submit(ctx, ir.Action{Type: "BOGUS", Value: ir.Null{}})
	require.Error(t, err)
	_, err = s.Submit(ctx, ir.RemoveToDo("todo-1"))
	require.NoError(t, err)

	require.Len(t, rec.subs, 3)

	assert.Equal(t, int64(1), rec.subs[0].Seq)
	assert.Equal(t, OutcomeApplied, rec.subs[0].Outcome)
	assert.Equal(t, ir.ItemID("todo-1"), rec.subs[0].ItemID)
	assert.Equal(t, []string{"Buy milk."}, rec.subs[0].Collection.Texts())

	assert.Equal(t, int64(2), rec.subs[1].Seq)
	assert.Equal(t, "UNKNOWN_OPERATION", rec.subs[1].Outcome)
	assert.Equal(t, ir.ItemID(""), rec.subs[1].ItemID)
	assert.Equal(t, 1, rec.subs[1].Collection.Len())

	assert.Equal(t, ir.ItemID("todo-1"), rec.subs[2].ItemID)
	assert.Equal(t, 0, rec.subs[2].Collection.Len())
}

func TestSubmit_RecorderErrorKeepsChange(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	s := newTestStore(t, WithRecorder(rec))
	obs := tu.NewRecordingObserver(nil)
	s.Subscribe(obs.Notify)

	got, err := s.Submit(context.Background(), ir.AddToDo("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record submission 1: disk full")
	assert.True(t, IsRecordError(err))
	assert.Equal(t, engine.RuntimeErrorCode(""), engine.ErrorCode(err))
	assert.Equal(t, 1, got.Len())
	assert.Equal(t, 1, s.Collection().Len())
	assert.Equal(t, 1, obs.Calls())
}

func TestSubmit_RecorderErrorOnRejectedAction(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	s := newTestStore(t, WithRecorder(rec))
	obs := tu.NewRecordingObserver(nil)
	s.Subscribe(obs.Notify)

	got, err := s.Submit(context.Background(), ir.Action{Type: "BOGUS", Value: ir.Null{}})
	require.Error(t, err)
	assert.True(t, engine.IsUnknownOperation(err), "engine code still reachable")
	assert.True(t, IsRecordError(err), "recorder failure is not dropped")
	assert.Contains(t, err.Error(), "record submission 1: disk full")
	assert.Empty(t, got)
	assert.Equal(t, 0, obs.Calls())
	require.Len(t, rec.subs, 1)
	assert.Equal(t, "UNKNOWN_OPERATION", rec.subs[0].Outcome)
}

func TestSubmit_RejectedWithoutRecorderErrorIsPlain(t *testing.T) {
	s := newTestStore(t, WithRecorder(&memRecorder{}))

	_, err := s.Submit(context.Background(), ir.Action{Type: "BOGUS", Value: ir.Null{}})
	var re *engine.RuntimeError
	require.ErrorAs(t, err, &re)
	assert.False(t, IsRecordError(err))
}

func TestSubmit_IDCollision(t *testing.T) {
	s := New(engine.New(tu.NewConstantIDGenerator("dup")))
	ctx := context.Background()

	_, err := s.Submit(ctx, ir.AddToDo("first"))
	require.NoError(t, err)
	_, err = s.Submit(ctx, ir.AddToDo("second"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrIDCollision))
	assert.Equal(t, []string{"first"}, s.Collection().Texts())
}

func TestSubmit_Metrics(t *testing.T) {
	m := metrics.New()
	s := newTestStore(t, WithMetrics(m))
	ctx := context.Background()

	_, _ = s.Submit(ctx, ir.AddToDo("a"))
	_, _ = s.Submit(ctx, ir.AddToDo("b"))
	_, _ = s.Submit(ctx, ir.Action{Type: "BOGUS"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Actions.WithLabelValues("ADD_NEW_TO_DO", OutcomeApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Actions.WithLabelValues(metrics.UnknownTypeLabel, "UNKNOWN_OPERATION")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Items))
}

func TestSubmit_Logging(t *testing.T) {
	var buf bytes.Buffer
	s := newTestStore(t, WithLogger(logging.New(slog.LevelDebug, &buf)))
	ctx := context.Background()

	_, _ = s.Submit(ctx, ir.AddToDo("Buy milk."))
	_, _ = s.Submit(ctx, ir.Action{Type: "BOGUS", Value: ir.Null{}})

	out := buf.String()
	assert.Contains(t, out, "action applied")
	assert.Contains(t, out, "item_id=todo-1")
	assert.Contains(t, out, "action rejected")
	assert.Contains(t, out, "code=UNKNOWN_OPERATION")
}

func TestSubmit_ConcurrentUniqueIDs(t *testing.T) {
	s := New(engine.New(engine.UUIDv4Generator{}))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_, err := s.Submit(ctx, ir.AddToDo("x"))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	c := s.Collection()
	assert.Equal(t, 500, c.Len())
	assert.True(t, c.HasUniqueIDs())
	assert.Equal(t, int64(500), s.Seq())
}
