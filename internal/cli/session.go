package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/todoflux/internal/engine"
	"github.com/roach88/todoflux/internal/journal"
	"github.com/roach88/todoflux/internal/metrics"
	"github.com/roach88/todoflux/internal/script"
	"github.com/roach88/todoflux/internal/store"
)

// sessionOptions selects how a command's store is built.
type sessionOptions struct {
	IDs      string // overrides the configured id strategy when set
	Database string // journal file; in-memory when empty
}

// session is the store stack a command works on: engine, store, journal
// and metrics.
type session struct {
	Store   *store.Store
	Journal *journal.Journal
	Metrics *metrics.Metrics
}

// openSession builds a fresh store recording into a journal.
// A journal file that already holds entries is refused: the store always
// starts empty, so its seq numbers would collide.
func openSession(ctx context.Context, opts *RootOptions, cmd *cobra.Command, so sessionOptions) (*session, error) {
	cfg := *opts.settings()
	if so.IDs != "" {
		cfg.IDs.Strategy = so.IDs
	}
	ids, err := cfg.Generator()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid id strategy", err)
	}

	path := so.Database
	if path == "" {
		path = journal.MemoryPath
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	n, err := j.Count(ctx)
	if err != nil {
		j.Close()
		return nil, WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	if n > 0 {
		j.Close()
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("journal %s already has %d entries", path, n))
	}

	m := metrics.New()
	st := store.New(
		engine.New(ids),
		store.WithRecorder(j),
		store.WithMetrics(m),
		store.WithLogger(opts.logger(cmd)),
	)
	return &session{Store: st, Journal: j, Metrics: m}, nil
}

// Close releases the journal.
func (s *session) Close() error {
	return s.Journal.Close()
}

// openExistingJournal opens a journal file that must already exist.
func openExistingJournal(path string) (*journal.Journal, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "journal not found", err)
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return j, nil
}

// readScript parses a script file, or stdin when path is "-".
func readScript(cmd *cobra.Command, path string) ([]script.Line, error) {
	var (
		lines []script.Line
		err   error
	)
	if path == "-" {
		lines, err = script.Parse(cmd.InOrStdin(), "<stdin>")
	} else {
		lines, err = script.ParseFile(path)
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read script", err)
	}
	return lines, nil
}
