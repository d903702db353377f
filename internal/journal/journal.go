package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/todoflux/internal/ir"
	"github.com/roach88/todoflux/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Empty database
// 1 - entries table
const currentSchemaVersion = 1

// MemoryPath opens a process-local database.
const MemoryPath = ":memory:"

// Journal records store submissions.
type Journal struct {
	db *sql.DB
}

var _ store.Recorder = (*Journal)(nil)

// Open creates or opens a journal database at the given path.
// Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times on a file path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One connection: a second connection to ":memory:" would see an
	// empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// OpenMemory opens a journal that lives only as long as the process.
func OpenMemory() (*Journal, error) {
	return Open(MemoryPath)
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("journal schema version %d is newer than supported %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// Record appends one submission. Implements store.Recorder.
//
// Recording the same seq twice is an error: the store never reuses seq.
func (j *Journal) Record(ctx context.Context, sub store.Submission) error {
	value, err := ir.MarshalValue(sub.Action.Value)
	if err != nil {
		return fmt.Errorf("record entry: marshal value: %w", err)
	}
	actionHash, err := ir.ActionHash(sub.Action)
	if err != nil {
		return fmt.Errorf("record entry: %w", err)
	}
	hash, err := ir.CollectionHash(sub.Collection)
	if err != nil {
		return fmt.Errorf("record entry: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO entries
		(seq, action_type, action_value, action_hash, item_id, outcome, item_count, collection_hash, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sub.Seq,
		string(sub.Action.Type),
		string(value),
		actionHash,
		string(sub.ItemID),
		sub.Outcome,
		len(sub.Collection),
		hash,
		ir.EngineVersion,
	)
	if err != nil {
		return fmt.Errorf("record entry: %w", err)
	}
	return nil
}
