package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/todoflux/internal/ir"
	"github.com/roach88/todoflux/internal/store"
)

// Entry is one journaled submission.
type Entry struct {
	Seq            int64     `json:"seq"`
	Action         ir.Action `json:"action"`
	ActionHash     string    `json:"action_hash"`
	ItemID         ir.ItemID `json:"item_id,omitempty"`
	Outcome        string    `json:"outcome"`
	ItemCount      int       `json:"item_count"`
	CollectionHash string    `json:"collection_hash"`
	EngineVersion  string    `json:"engine_version"`
}

// Applied reports whether the engine accepted the action.
func (e Entry) Applied() bool {
	return e.Outcome == store.OutcomeApplied
}

// Entries returns every entry in seq order.
// Returns an empty slice (not nil) for an empty journal.
func (j *Journal) Entries(ctx context.Context) ([]Entry, error) {
	return j.queryEntries(ctx, `
		SELECT seq, action_type, action_value, action_hash, item_id, outcome, item_count, collection_hash, engine_version
		FROM entries
		ORDER BY seq ASC
	`)
}

// AppliedEntries returns only accepted submissions, in seq order.
func (j *Journal) AppliedEntries(ctx context.Context) ([]Entry, error) {
	return j.queryEntries(ctx, `
		SELECT seq, action_type, action_value, action_hash, item_id, outcome, item_count, collection_hash, engine_version
		FROM entries
		WHERE outcome = ?
		ORDER BY seq ASC
	`, store.OutcomeApplied)
}

// AppliedActions returns the accepted actions in order, together with the
// ids that adds were assigned. Feeding the ids to an engine.FixedGenerator
// and folding the actions reproduces the journaled state.
func (j *Journal) AppliedActions(ctx context.Context) ([]ir.Action, []ir.ItemID, error) {
	entries, err := j.AppliedEntries(ctx)
	if err != nil {
		return nil, nil, err
	}

	actions := make([]ir.Action, 0, len(entries))
	ids := make([]ir.ItemID, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.Action)
		if e.Action.Type == ir.ActionAddToDo {
			ids = append(ids, e.ItemID)
		}
	}
	return actions, ids, nil
}

// Count returns the number of entries.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// LastHash returns the collection hash after the latest submit, or the hash
// of the empty collection when the journal is empty.
func (j *Journal) LastHash(ctx context.Context) (string, error) {
	var hash string
	err := j.db.QueryRowContext(ctx, "SELECT collection_hash FROM entries ORDER BY seq DESC LIMIT 1").Scan(&hash)
	if err == sql.ErrNoRows {
		return ir.MustCollectionHash(ir.Collection{}), nil
	}
	if err != nil {
		return "", fmt.Errorf("last hash: %w", err)
	}
	return hash, nil
}

func (j *Journal) queryEntries(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e          Entry
		actionType string
		valueJSON  string
		itemID     string
	)
	if err := rows.Scan(&e.Seq, &actionType, &valueJSON, &e.ActionHash, &itemID, &e.Outcome, &e.ItemCount, &e.CollectionHash, &e.EngineVersion); err != nil {
		return Entry{}, fmt.Errorf("scan entry: %w", err)
	}

	value, err := ir.ParseValue([]byte(valueJSON))
	if err != nil {
		return Entry{}, fmt.Errorf("scan entry %d: value: %w", e.Seq, err)
	}
	e.Action = ir.Action{Type: ir.ActionType(actionType), Value: value}
	e.ItemID = ir.ItemID(itemID)
	return e, nil
}
