package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/todoflux/internal/engine"
	"github.com/roach88/todoflux/internal/ir"
	"github.com/roach88/todoflux/internal/journal"
	"github.com/roach88/todoflux/internal/render"
	"github.com/roach88/todoflux/internal/script"
	"github.com/roach88/todoflux/internal/store"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	IDs      string
	Database string
	Trace    bool
	Metrics  bool
	Strict   bool
}

// Rejection is an action the engine refused.
type Rejection struct {
	Line    int       `json:"line"`
	Action  ir.Action `json:"action"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// ApplyResult is the outcome of applying a script.
type ApplyResult struct {
	Items     ir.Collection   `json:"items"`
	Submitted int             `json:"submitted"`
	Applied   int             `json:"applied"`
	Rejected  []Rejection     `json:"rejected"`
	Trace     []journal.Entry `json:"trace,omitempty"`
	Metrics   string          `json:"metrics,omitempty"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <script|->",
		Short: "Submit the actions of a script",
		Long: `Submit every action of a script to a fresh store and print the result.

A script holds one JSON action per line:

  {"type":"ADD_NEW_TO_DO","value":"Buy milk."}
  {"type":"REMOVE_TO_DO","value":"todo-1"}

Blank lines and lines starting with # are skipped. Use - to read stdin.
Rejected actions (unknown type, bad payload) are reported and skipped.

Exit codes:
  0 - Script applied
  1 - Actions were rejected and --strict is set
  2 - Command error (unreadable or invalid script, journal error)

Examples:
  todo apply actions.jsonl
  todo apply actions.jsonl --ids counter --trace
  todo apply - --metrics < actions.jsonl
  todo apply actions.jsonl --db todo.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.IDs, "ids", "", "id strategy: uuid4, uuid7 or counter (overrides config)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "write the journal to this SQLite file")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "print the journal after applying")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print action metrics (Prometheus text format)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 when any action is rejected")

	return cmd
}

func runApply(opts *ApplyOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)

	lines, err := readScript(cmd, path)
	if err != nil {
		return err
	}
	formatter.VerboseLog("Read %d action(s) from %s", len(lines), path)

	sess, err := openSession(ctx, opts.RootOptions, cmd, sessionOptions{IDs: opts.IDs, Database: opts.Database})
	if err != nil {
		return err
	}
	defer sess.Close()

	result, err := submitLines(ctx, sess, lines)
	if err != nil {
		return err
	}

	if opts.Trace {
		entries, err := sess.Journal.Entries(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		result.Trace = entries
	}

	if opts.Metrics {
		var buf strings.Builder
		if err := sess.Metrics.WriteText(&buf); err != nil {
			return WrapExitError(ExitCommandError, "failed to render metrics", err)
		}
		result.Metrics = buf.String()
	}

	if formatter.JSON() {
		var failed *CLIError
		if opts.Strict && len(result.Rejected) > 0 {
			failed = &CLIError{Code: ErrCodeRejected, Message: fmt.Sprintf("%d action(s) rejected", len(result.Rejected))}
		}
		if err := formatter.Result(result, failed); err != nil {
			return err
		}
	} else if err := writeApplyText(cmd.OutOrStdout(), result); err != nil {
		return err
	}

	if opts.Strict && len(result.Rejected) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d action(s) rejected", len(result.Rejected)))
	}
	return nil
}

// submitLines submits every line in order. Engine rejections are collected;
// any other error (journal write) aborts.
func submitLines(ctx context.Context, sess *session, lines []script.Line) (*ApplyResult, error) {
	result := &ApplyResult{Rejected: []Rejection{}}
	for _, line := range lines {
		result.Submitted++
		_, err := sess.Store.Submit(ctx, line.Action)
		if err == nil {
			result.Applied++
			continue
		}
		code := engine.ErrorCode(err)
		if code == "" || store.IsRecordError(err) {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("line %d", line.Number), err)
		}
		result.Rejected = append(result.Rejected, Rejection{
			Line:    line.Number,
			Action:  line.Action,
			Code:    string(code),
			Message: err.Error(),
		})
	}
	result.Items = sess.Store.Collection()
	return result, nil
}

func writeApplyText(w io.Writer, result *ApplyResult) error {
	r := render.New(w)

	for _, rej := range result.Rejected {
		fmt.Fprintln(w, r.Error(fmt.Sprintf("line %d: rejected: %s", rej.Line, rej.Message)))
	}
	if err := r.WriteList(w, result.Items); err != nil {
		return err
	}
	fmt.Fprintln(w, r.Muted(fmt.Sprintf("%d submitted, %d applied, %d rejected",
		result.Submitted, result.Applied, len(result.Rejected))))

	if len(result.Trace) > 0 {
		fmt.Fprintln(w)
		writeTraceText(w, r, result.Trace)
	}
	if result.Metrics != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, result.Metrics)
	}
	return nil
}
