package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/todoflux/internal/journal"
	"github.com/roach88/todoflux/internal/render"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Outcome  string // optional - filter to one outcome
}

// TraceResult holds the trace output.
type TraceResult struct {
	Entries []journal.Entry `json:"entries"`
	Stats   TraceStats      `json:"stats"`
}

// TraceStats holds summary statistics for the journal.
type TraceStats struct {
	Total    int    `json:"total"`
	Applied  int    `json:"applied"`
	Rejected int    `json:"rejected"`
	LastHash string `json:"last_hash"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print a journal",
		Long: `Print the submissions recorded in a journal file, in seq order.

Each entry shows the action, its outcome ("applied" or an error code),
the id it assigned or targeted, and the collection size afterwards.

Examples:
  todo trace --db todo.db
  todo trace --db todo.db --outcome UNKNOWN_OPERATION
  todo trace --db todo.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to journal file (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Outcome, "outcome", "", "only show entries with this outcome")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)

	j, err := openExistingJournal(opts.Database)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Entries(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	lastHash, err := j.LastHash(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	result := TraceResult{Entries: []journal.Entry{}, Stats: TraceStats{Total: len(entries), LastHash: lastHash}}
	for _, e := range entries {
		if e.Applied() {
			result.Stats.Applied++
		} else {
			result.Stats.Rejected++
		}
		if opts.Outcome == "" || e.Outcome == opts.Outcome {
			result.Entries = append(result.Entries, e)
		}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	r := render.New(w)
	if len(result.Entries) == 0 {
		fmt.Fprintln(w, "No entries.")
	} else {
		writeTraceText(w, r, result.Entries)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Stats: %d total, %d applied, %d rejected\n",
		result.Stats.Total, result.Stats.Applied, result.Stats.Rejected)
	fmt.Fprintln(w, r.Muted("collection "+result.Stats.LastHash))
	return nil
}

// writeTraceText prints entries as an aligned table.
func writeTraceText(w io.Writer, r *render.Renderer, entries []journal.Entry) {
	fmt.Fprintln(w, r.Title("Trace"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tOUTCOME\tACTION\tITEM\tITEMS")
	for _, e := range entries {
		item := e.ItemID.String()
		if item == "" {
			item = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", e.Seq, e.Outcome, e.Action, item, e.ItemCount)
	}
	tw.Flush()
}
