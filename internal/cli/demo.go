package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/todoflux/internal/ir"
	"github.com/roach88/todoflux/internal/render"
)

// DemoTexts are the items the demo adds, in order.
var DemoTexts = []string{"Buy milk.", "Practice React.", "Practice Redux."}

// DemoResult is the JSON output of the demo command.
type DemoResult struct {
	Items         ir.Collection `json:"items"`
	Notifications []int         `json:"notifications"` // collection size seen by each notification
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	var ids string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Add three sample items and print each change",
		Long: `Subscribe a printing observer, add three sample items, and print the list.

Shows the store loop end to end: every accepted action notifies the
observer, which reads the new collection from the store.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(rootOpts, ids, cmd)
		},
	}

	cmd.Flags().StringVar(&ids, "ids", "", "id strategy: uuid4, uuid7 or counter (overrides config)")

	return cmd
}

func runDemo(opts *RootOptions, ids string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)
	w := cmd.OutOrStdout()
	r := render.New(w)

	sess, err := openSession(ctx, opts, cmd, sessionOptions{IDs: ids})
	if err != nil {
		return err
	}
	defer sess.Close()

	result := DemoResult{Notifications: []int{}}
	unsubscribe := sess.Store.Subscribe(func() {
		items := sess.Store.Collection()
		result.Notifications = append(result.Notifications, len(items))
		if !formatter.JSON() {
			fmt.Fprintln(w, r.Muted(fmt.Sprintf("changed: [%s]", strings.Join(items.Texts(), ", "))))
		}
	})
	defer unsubscribe()

	for _, text := range DemoTexts {
		if _, err := sess.Store.Submit(ctx, ir.AddToDo(text)); err != nil {
			return WrapExitError(ExitCommandError, "demo add failed", err)
		}
	}
	result.Items = sess.Store.Collection()

	if formatter.JSON() {
		return formatter.Success(result)
	}
	fmt.Fprintln(w)
	return r.WriteList(w, result.Items)
}
