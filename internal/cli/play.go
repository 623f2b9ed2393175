package cli

import (
	"math/rand/v2"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/roach88/typewriter/internal/cli/player"
	"github.com/roach88/typewriter/internal/typewriter"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Strings []string
	Seed    uint64 // shuffle seed, 0 picks one at random
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play [config]",
		Short: "Play a typewriter live in the terminal",
		Long: `Play a typewriter live in the terminal on real timers.

Keys:
  p  pause
  r  resume (restarts once complete)
  e  pause when the current string is fully typed
  q  quit

Examples:
  typewriter play ./hello.yaml
  typewriter play --string "Hello" --string "World"
  typewriter play ./hello.cue --log-file play.log`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runPlay(opts, path, cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Strings, "string", "s", nil, "string to type (repeatable, replaces the config's strings)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "shuffle seed when the config enables shuffle (0 = random)")

	return cmd
}

func runPlay(opts *PlayOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	file, err := loadInput(path, opts.Strings)
	if err != nil {
		return inputError(formatter, err)
	}
	cfg, err := file.EngineConfig()
	if err != nil {
		return inputError(formatter, err)
	}

	strs := file.Strings
	if file.ShuffleEnabled() {
		seed := opts.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		strs = typewriter.Shuffle(strs, rand.New(rand.NewPCG(seed, seed)))
	}

	log := opts.logger()
	eng, err := typewriter.New(strs, cfg, typewriter.WithLogger(log))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create engine", err)
	}

	title := "typewriter"
	if path != "" {
		title = filepath.Base(path)
	}
	log.Debug("playing", "strings", len(strs), "title", title)

	if err := player.Run(eng, title,
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	); err != nil {
		return WrapExitError(ExitCommandError, "player failed", err)
	}
	return nil
}
