package testutil

import (
	"sync"

	"github.com/roach88/todoflux/internal/ir"
)

// RecordingObserver captures the collection each time it is notified.
//
// Wire it with store.Subscribe(rec.Notify) after constructing it with the
// store's Collection method as the getter.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type RecordingObserver struct {
	mu        sync.Mutex
	get       func() ir.Collection
	snapshots []ir.Collection
}

// NewRecordingObserver creates an observer that reads state through get.
// A nil get records empty snapshots, which still counts notifications.
func NewRecordingObserver(get func() ir.Collection) *RecordingObserver {
	return &RecordingObserver{get: get}
}

// Notify records one notification.
func (r *RecordingObserver) Notify() {
	var snap ir.Collection
	if r.get != nil {
		snap = r.get()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snap.Clone())
}

// Calls returns how many times Notify ran.
func (r *RecordingObserver) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

// Snapshots returns the recorded collections in notification order.
func (r *RecordingObserver) Snapshots() []ir.Collection {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ir.Collection, len(r.snapshots))
	copy(out, r.snapshots)
	return out
}

// Last returns the most recent snapshot, or nil before any notification.
func (r *RecordingObserver) Last() ir.Collection {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return nil
	}
	return r.snapshots[len(r.snapshots)-1]
}

// Reset clears recorded snapshots for test reuse.
func (r *RecordingObserver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = nil
}
