package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/tiebreak/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	DB         string
	StorageKey string
	// Seed makes pairing shuffles reproducible. Nil uses the global source.
	Seed *uint64

	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the tiebreak CLI.
// A nil cfg uses the built-in defaults.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	cmd, _ := newRootCommand(cfg)
	return cmd
}

// Run executes the CLI with args and returns the process exit code.
// Errors are written through the output formatter, so --format json gets
// a JSON error envelope on stdout.
func Run(cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	cmd, opts := newRootCommand(cfg)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	if !reported(err) {
		f := opts.formatter(cmd)
		if !isValidFormat(f.Format) {
			f.Format = "text"
		}
		f.Error(errorCode(err), err.Error(), nil)
	}
	return GetExitCode(err)
}

func newRootCommand(cfg *config.Config) (*cobra.Command, *RootOptions) {
	if cfg == nil {
		cfg, _ = config.FromEnv(func(string) string { return "" })
	}
	opts := &RootOptions{Config: cfg, Seed: cfg.Seed}
	var seed uint64

	cmd := &cobra.Command{
		Use:   "tiebreak",
		Short: "Swiss tournament pairing and tiebreak scoring",
		Long: `tiebreak runs Swiss-system tournaments: it pairs rounds, records results
and ranks players by match points, opponents' match-win percentage,
opponents' opponents' match-win percentage and a late-loss tiebreaker.

Tournaments are kept in a SQLite database (--db, or TIEBREAK_DB).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if cmd.Flags().Changed("seed") {
				opts.Seed = &seed
			}
			level := cfg.LogLevel
			if opts.Verbose {
				level = slog.LevelDebug
			}
			opts.Logger = config.NewLogger(cmd.ErrOrStderr(), level, cfg.LogFormat)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", cfg.DBPath, "path to the SQLite database")
	cmd.PersistentFlags().StringVar(&opts.StorageKey, "storage-key", cfg.StorageKey, "document key tournaments are saved under")
	cmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "seed for reproducible pairing shuffles")

	// Tournament lifecycle
	cmd.AddCommand(NewNewCommand(opts))
	cmd.AddCommand(NewDraftCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewPlayerCommand(opts))
	cmd.AddCommand(NewStartCommand(opts))
	cmd.AddCommand(NewResultCommand(opts))
	cmd.AddCommand(NewNextCommand(opts))
	cmd.AddCommand(NewViewCommand(opts))
	cmd.AddCommand(NewTopCutCommand(opts))
	cmd.AddCommand(NewFinishCommand(opts))

	// Reporting
	cmd.AddCommand(NewStandingsCommand(opts))
	cmd.AddCommand(NewScoreCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	// Tooling
	cmd.AddCommand(NewScenarioCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd, opts
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
