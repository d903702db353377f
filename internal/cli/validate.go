package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/todoflux/internal/harness"
)

// FileValidation is the validation outcome of one scenario file.
type FileValidation struct {
	File  string `json:"file"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenarios-dir>",
		Short: "Validate scenario files without running them",
		Long: `Check scenario files against the scenario schema and strict decoding.

Faster than test for development feedback: nothing is executed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	files, err := harness.FindScenarioFiles(dir, "")
	if err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}
	if len(files) == 0 {
		formatter.Error(ErrCodeNotFound, fmt.Sprintf("no scenario files found in %s", dir), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("no scenario files found in %s", dir))
	}

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, file := range files {
		formatter.VerboseLog("Validating %s", file)
		fv := FileValidation{File: filepath.Base(file), Valid: true}
		if err := validateScenarioFile(file); err != nil {
			fv.Valid = false
			fv.Error = err.Error()
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if formatter.JSON() {
		var failed *CLIError
		if !result.Valid {
			failed = &CLIError{Code: ErrCodeInvalid, Message: "one or more scenario files are invalid"}
		}
		if err := formatter.Result(result, failed); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, fv := range result.Files {
			if fv.Valid {
				fmt.Fprintf(w, "✓ %s\n", fv.File)
			} else {
				fmt.Fprintf(w, "✗ %s\n  %s\n", fv.File, fv.Error)
			}
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

// validateScenarioFile runs the schema check and the strict decode.
func validateScenarioFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := harness.ValidateScenario(filepath.Base(path), data); err != nil {
		return err
	}
	_, err = harness.ParseScenario(data)
	return err
}
