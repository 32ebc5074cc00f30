package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/tiebreak/internal/engine"
	"github.com/roach88/tiebreak/internal/ir"
)

// NewStartCommand creates the start command.
func NewStartCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "start <tournament>",
		Short:         "Pair round 1 of a drafted tournament",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd, opts, args[0], "start", func(ctx context.Context, s *session, t ir.Tournament) bool {
				return s.container.StartTournament(ctx, t.ID)
			})
		},
	}
}

// parseResultArg accepts a result name or "clear".
func parseResultArg(s string) (*ir.Result, error) {
	if s == "clear" {
		return nil, nil
	}
	r, err := ir.ParseResult(s)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid result", err)
	}
	return &r, nil
}

// NewResultCommand creates the result command.
func NewResultCommand(opts *RootOptions) *cobra.Command {
	var round int

	cmd := &cobra.Command{
		Use:   "result <tournament> <match> <A|B|draw|loss|clear>",
		Short: "Record or clear a match result",
		Long: `Record the result of a match. <match> is a match ID or a table number
(1-based) in the viewed round; use --round to pick another round.

Results:
  A      player A wins
  B      player B wins
  draw   the players draw
  loss   double loss, or a forfeited bye
  clear  mark the match pending again

Earlier rounds may be corrected; standings are recomputed from every
recorded result.

Examples:
  tiebreak result "Friday Modern" 1 A
  tiebreak result "Friday Modern" 3 draw --round 2`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := parseResultArg(args[2])
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *session) (any, error) {
				t, err := s.tournament(args[0])
				if err != nil {
					return nil, err
				}
				r, m, err := findMatch(t, round, args[1])
				if err != nil {
					return nil, err
				}
				if !s.container.RecordResult(ctx, t.ID, r.ID, m.ID, result) {
					return nil, rejected("result "+args[2]+" for "+t.MatchLabel(m), t)
				}
				t, _ = s.container.Tournament(t.ID)
				return tournamentView{t}, nil
			})
		},
	}

	cmd.Flags().IntVar(&round, "round", 0, "round number (default: the viewed round)")
	return cmd
}

// NewNextCommand creates the next command.
func NewNextCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "next <tournament>",
		Short: "Pair the next round",
		Long: `Pair the next Swiss round. Every match of the last round must be decided
and the tournament must be in progress.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd, opts, args[0], "next round", func(ctx context.Context, s *session, t ir.Tournament) bool {
				return s.container.AdvanceToNextRound(ctx, t.ID)
			})
		},
	}
}

// NewViewCommand creates the view command.
func NewViewCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "view <tournament> <first|last|prev|next>",
		Short:         "Move the viewed round",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := engine.ParseDirection(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid direction", err)
			}
			return mutate(cmd, opts, args[0], "view "+args[1], func(ctx context.Context, s *session, t ir.Tournament) bool {
				return s.container.Navigate(ctx, t.ID, dir)
			})
		},
	}
}

// NewTopCutCommand creates the topcut command.
func NewTopCutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "topcut <tournament> <n>",
		Short: "Keep the top n players and end Swiss rounds",
		Long: `Keep the n highest-ranked players and move the tournament to top cut.
Rounds are cleared; the cut players keep their standings order.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid cut size %q", args[1]), err)
			}
			return mutate(cmd, opts, args[0], "top cut", func(ctx context.Context, s *session, t ir.Tournament) bool {
				return s.container.TopCut(ctx, t.ID, n)
			})
		},
	}
}

// NewFinishCommand creates the finish command.
func NewFinishCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "finish <tournament>",
		Short:         "Mark a tournament finished",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd, opts, args[0], "finish", func(ctx context.Context, s *session, t ir.Tournament) bool {
				return s.container.Finish(ctx, t.ID)
			})
		},
	}
}
