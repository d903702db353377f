package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/todoflux/internal/ui"
)

// NewTUICommand creates the interactive tui command.
func NewTUICommand(rootOpts *RootOptions) *cobra.Command {
	var (
		ids string
		db  string
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive to-do list",
		Long: `Open the interactive list: type text and press Enter to add,
up/down to select, Delete or ctrl+d to remove, Esc or ctrl+c to quit.

Requires a terminal. With --db the session is journaled to a file that
trace and replay can read afterwards.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			formatter := rootOpts.formatter(cmd)

			if !ui.IsTTY(cmd.OutOrStdout()) {
				formatter.Error(ErrCodeNotTerminal, ui.ErrNotTTY.Error(), nil)
				return WrapExitError(ExitCommandError, "cannot start tui", ui.ErrNotTTY)
			}

			sess, err := openSession(ctx, rootOpts, cmd, sessionOptions{IDs: ids, Database: db})
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := ui.Run(ctx, sess.Store, cmd.OutOrStdout()); err != nil {
				if errors.Is(err, ui.ErrNotTTY) {
					return WrapExitError(ExitCommandError, "cannot start tui", err)
				}
				return WrapExitError(ExitFailure, "tui exited with error", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ids, "ids", "", "id strategy: uuid4, uuid7 or counter (overrides config)")
	cmd.Flags().StringVar(&db, "db", "", "journal the session to this SQLite file")

	return cmd
}
