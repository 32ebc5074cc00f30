package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tiebreak/internal/config"
	"github.com/roach88/tiebreak/internal/engine"
	"github.com/roach88/tiebreak/internal/ir"
)

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// withSession opens a session, runs fn, saves any applied operations and
// prints what fn returned.
func withSession(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, s *session) (any, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	data, err := fn(ctx, s)
	if err != nil {
		return err
	}
	if err := s.save(ctx); err != nil {
		return err
	}
	return opts.formatter(cmd).Success(data)
}

// mutate applies op to the referenced tournament and prints the result.
// A declined operation exits with ExitFailure.
func mutate(cmd *cobra.Command, opts *RootOptions, ref, name string, op func(ctx context.Context, s *session, t ir.Tournament) bool) error {
	return withSession(cmd, opts, func(ctx context.Context, s *session) (any, error) {
		t, err := s.tournament(ref)
		if err != nil {
			return nil, err
		}
		if !op(ctx, s, t) {
			return nil, rejected(name, t)
		}
		t, _ = s.container.Tournament(t.ID)
		return tournamentView{t}, nil
	})
}

// loadScoring reads --scoring, or returns the default 3/1/0 scoring.
func loadScoring(path string) (ir.Config, error) {
	if path == "" {
		return ir.DefaultConfig(), nil
	}
	cfg, err := config.LoadScoring(path)
	if err != nil {
		return ir.Config{}, WrapExitError(ExitCommandError, "failed to load scoring", err)
	}
	return cfg, nil
}

// createError maps engine validation errors to command errors.
func createError(err error) error {
	switch {
	case errors.Is(err, engine.ErrNoPlayers),
		errors.Is(err, engine.ErrInvalidName),
		errors.Is(err, engine.ErrInvalidPlayerName),
		errors.Is(err, engine.ErrInvalidConfig):
		return WrapExitError(ExitCommandError, "invalid tournament", err)
	default:
		return err
	}
}

// NewNewCommand creates the new command.
func NewNewCommand(opts *RootOptions) *cobra.Command {
	var scoring string

	cmd := &cobra.Command{
		Use:   "new <name> <player>...",
		Short: "Create a tournament and pair round 1",
		Long: `Create a tournament with the given players and immediately pair the
first round. Scoring defaults to 3/1/0 with every round shuffled; pass
--scoring to load a YAML or JSON scoring file.

Examples:
  tiebreak new "Friday Modern" Alice Bob Carol Dave
  tiebreak new League Alice Bob Carol --scoring league.yaml`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadScoring(scoring)
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *session) (any, error) {
				t, err := s.container.CreateTournament(ctx, args[0], args[1:], cfg)
				if err != nil {
					return nil, createError(err)
				}
				return tournamentView{t}, nil
			})
		},
	}

	cmd.Flags().StringVar(&scoring, "scoring", "", "scoring configuration file (YAML or JSON)")
	return cmd
}

// NewDraftCommand creates the draft command.
func NewDraftCommand(opts *RootOptions) *cobra.Command {
	var scoring string

	cmd := &cobra.Command{
		Use:   "draft <name>",
		Short: "Create an empty tournament in setup",
		Long: `Create a tournament with no players. Add players with "tiebreak player add"
and pair round 1 with "tiebreak start".`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadScoring(scoring)
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *session) (any, error) {
				t, err := s.container.DraftTournament(ctx, args[0], cfg)
				if err != nil {
					return nil, createError(err)
				}
				return tournamentView{t}, nil
			})
		},
	}

	cmd.Flags().StringVar(&scoring, "scoring", "", "scoring configuration file (YAML or JSON)")
	return cmd
}

// NewListCommand creates the list command.
func NewListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List tournaments",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) (any, error) {
				ts := s.container.Tournaments()
				out := make(listView, len(ts))
				for i, t := range ts {
					out[i] = summary{ID: t.ID, Name: t.Name, Status: t.Status, Players: len(t.Players), Rounds: len(t.Rounds)}
				}
				return out, nil
			})
		},
	}
}

// NewShowCommand creates the show command.
func NewShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <tournament>",
		Short:         "Show players, rounds and results",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) (any, error) {
				t, err := s.tournament(args[0])
				if err != nil {
					return nil, err
				}
				return tournamentView{t}, nil
			})
		},
	}
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <tournament>",
		Short:         "Delete a tournament",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) (any, error) {
				t, err := s.tournament(args[0])
				if err != nil {
					return nil, err
				}
				if !s.container.RemoveTournament(ctx, t.ID) {
					return nil, notFoundError(fmt.Sprintf("no tournament %q", args[0]))
				}
				return message{Message: fmt.Sprintf("Removed %s", t.Name), ID: t.ID}, nil
			})
		},
	}
}
