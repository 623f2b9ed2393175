package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/typewriter/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool         `json:"valid"`
	Path    string       `json:"path"`
	Strings int          `json:"strings"`
	Config  *config.File `json:"config"` // effective settings, defaults filled in
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a typewriter config file",
		Long: `Load a YAML or CUE typewriter config and check it the way play and
simulate would, without running anything.

Exit codes:
  0 - Config is valid
  1 - Config parsed but has invalid values
  2 - Config could not be read or parsed`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	file, err := config.Load(path)
	if err != nil {
		code := config.ErrCodeGeneric
		var le *config.LoadError
		if errors.As(err, &le) {
			code = le.Code
		}
		if outErr := formatter.Error(code, err.Error(), nil); outErr != nil {
			return outErr
		}
		if config.IsInvalid(err) {
			return WrapExitError(ExitFailure, "config invalid", err)
		}
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	cfg, err := file.EngineConfig()
	if err != nil {
		if outErr := formatter.Error(config.ErrCodeInvalid, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "config invalid", err)
	}

	formatter.VerboseLog("Loaded %s", path)

	result := ValidationResult{
		Valid:   true,
		Path:    path,
		Strings: len(file.Strings),
		Config:  config.FromEngineConfig(file.Strings, cfg),
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("✓ %s is valid (%d string(s))", path, result.Strings))
}
