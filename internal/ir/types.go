package ir

import "slices"

// ItemID identifies an Item. It is opaque to callers: the engine's generator
// decides its shape (UUID, counter, fixed test value).
type ItemID string

// String returns the id as a plain string.
func (id ItemID) String() string {
	return string(id)
}

// Item is a single to-do entry.
type Item struct {
	ID   ItemID `json:"id"`
	Text string `json:"text"`
}

// Collection is the ordered set of current items, in insertion order.
//
// INVARIANT: no two items share an ID.
// Collections are values: the engine never modifies one in place, it
// returns a new one.
type Collection []Item

// Len returns the number of items.
func (c Collection) Len() int {
	return len(c)
}

// IndexOf returns the position of the item with the given id, or -1.
func (c Collection) IndexOf(id ItemID) int {
	for i, item := range c {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Contains reports whether an item with the given id is present.
func (c Collection) Contains(id ItemID) bool {
	return c.IndexOf(id) >= 0
}

// Texts returns the item texts in order.
func (c Collection) Texts() []string {
	texts := make([]string, len(c))
	for i, item := range c {
		texts[i] = item.Text
	}
	return texts
}

// IDs returns the item ids in order.
func (c Collection) IDs() []ItemID {
	ids := make([]ItemID, len(c))
	for i, item := range c {
		ids[i] = item.ID
	}
	return ids
}

// Clone returns a copy that shares no backing array with c.
// A nil collection clones to an empty, non-nil one.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// Equal reports whether both collections hold the same items in the same order.
func (c Collection) Equal(other Collection) bool {
	return slices.Equal(c, other)
}

// HasUniqueIDs reports whether every id in the collection is distinct.
func (c Collection) HasUniqueIDs() bool {
	seen := make(map[ItemID]struct{}, len(c))
	for _, item := range c {
		if _, dup := seen[item.ID]; dup {
			return false
		}
		seen[item.ID] = struct{}{}
	}
	return true
}
