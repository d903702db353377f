package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/todoflux/internal/ir"
	"github.com/roach88/todoflux/internal/journal"
	"github.com/roach88/todoflux/internal/render"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	IDs      string
	Database string
}

// ReplayResult holds the result of a replay verification.
type ReplayResult struct {
	Applied      int           `json:"applied"`
	Items        ir.Collection `json:"items"`
	ExpectedHash string        `json:"expected_hash"`
	ActualHash   string        `json:"actual_hash"`
	Match        bool          `json:"match"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [script|-]",
		Short: "Verify deterministic replay of a journal",
		Long: `Replay the applied actions of a journal and compare the result.

The applied actions are folded through a fresh engine that hands out the
journaled ids again. The final collection hash must equal the hash recorded
after the last submit.

With a script argument the script is applied first (into --db if given,
otherwise into memory). Without one, --db names an existing journal.

Exit codes:
  0 - Replay reproduced the journaled state
  1 - Replay mismatch
  2 - Command error (journal not found, invalid script)

Examples:
  todo replay actions.jsonl
  todo replay --db todo.db
  todo replay actions.jsonl --ids uuid7 --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			scriptPath := ""
			if len(args) == 1 {
				scriptPath = args[0]
			}
			return runReplay(opts, scriptPath, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.IDs, "ids", "", "id strategy when applying a script")
	cmd.Flags().StringVar(&opts.Database, "db", "", "journal file")

	return cmd
}

func runReplay(opts *ReplayOptions, scriptPath string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)

	var j *journal.Journal
	switch {
	case scriptPath != "":
		lines, err := readScript(cmd, scriptPath)
		if err != nil {
			return err
		}
		sess, err := openSession(ctx, opts.RootOptions, cmd, sessionOptions{IDs: opts.IDs, Database: opts.Database})
		if err != nil {
			return err
		}
		defer sess.Close()
		if _, err := submitLines(ctx, sess, lines); err != nil {
			return err
		}
		j = sess.Journal
	case opts.Database != "":
		existing, err := openExistingJournal(opts.Database)
		if err != nil {
			return err
		}
		defer existing.Close()
		j = existing
	default:
		return NewExitError(ExitCommandError, "replay needs a script argument or --db")
	}

	report, err := j.VerifyReplay(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "replay failed", err)
	}
	formatter.VerboseLog("Replayed %d applied action(s)", report.Applied)

	result := ReplayResult{
		Applied:      report.Applied,
		Items:        report.Collection,
		ExpectedHash: report.ExpectedHash,
		ActualHash:   report.ActualHash,
		Match:        report.Match(),
	}

	if formatter.JSON() {
		var failed *CLIError
		if !result.Match {
			failed = &CLIError{Code: ErrCodeReplay, Message: "replay does not reproduce the journaled state"}
		}
		if err := formatter.Result(result, failed); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		r := render.New(w)
		if err := r.WriteList(w, result.Items); err != nil {
			return err
		}
		fmt.Fprintf(w, "Replayed %d applied action(s)\n", result.Applied)
		fmt.Fprintf(w, "  journal: %s\n", result.ExpectedHash)
		fmt.Fprintf(w, "  replay:  %s\n", result.ActualHash)
		if result.Match {
			fmt.Fprintln(w, "✓ Replay is deterministic")
		} else {
			fmt.Fprintln(w, r.Error("✗ Replay mismatch"))
		}
	}

	if !result.Match {
		return NewExitError(ExitFailure, "replay mismatch")
	}
	return nil
}
