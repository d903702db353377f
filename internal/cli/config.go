package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/roach88/todoflux/internal/config"
)

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	var example bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file and flags
have been merged.

With --example, print a commented config file to start from:

  todo config --example > todo.toml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if example {
				_, err := fmt.Fprint(w, config.ExampleTOML)
				return err
			}

			cfg := rootOpts.settings()
			formatter := rootOpts.formatter(cmd)
			if formatter.JSON() {
				return formatter.Success(cfg)
			}
			if err := toml.NewEncoder(w).Encode(cfg); err != nil {
				return WrapExitError(ExitCommandError, "failed to encode config", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&example, "example", false, "print a commented example config file")

	return cmd
}
