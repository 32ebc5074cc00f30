package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/tiebreak/internal/engine"
)

// NewStandingsCommand creates the standings command.
func NewStandingsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "standings <tournament>",
		Short: "Rank players by score",
		Long: `Print the standings: match points, then opponents' match-win percentage
(omw), opponents' opponents' match-win percentage (oomw) and the late-loss
tiebreaker (pen). Players with equal scores share a rank.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) (any, error) {
				t, err := s.tournament(args[0])
				if err != nil {
					return nil, err
				}
				rows, _ := s.container.Standings(t.ID)
				return standingsView{TournamentID: t.ID, Standings: rows}, nil
			})
		},
	}
}

// NewScoreCommand creates the score command.
func NewScoreCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "score <tournament> <player>",
		Short:         "Show one player's packed score and its components",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) (any, error) {
				t, err := s.tournament(args[0])
				if err != nil {
					return nil, err
				}
				p, err := findPlayer(t, args[1])
				if err != nil {
					return nil, err
				}
				score, _ := s.container.CalculateScore(t.ID, p.ID)
				record, _ := s.container.WinsLossesDraws(t.ID, p.ID)
				return scoreView{
					PlayerID:  p.ID,
					Name:      p.Name,
					Score:     score,
					Breakdown: engine.ScoreBreakdown(t, p.ID),
					Record:    record,
				}, nil
			})
		},
	}
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "history <tournament>",
		Short:         "List the journaled operations of a tournament",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) (any, error) {
				id := args[0]
				if t, err := s.tournament(args[0]); err == nil {
					id = t.ID
				}
				ops, err := s.store.ReadOperations(ctx, id)
				if err != nil {
					return nil, storageError("failed to read journal", err)
				}
				if len(ops) == 0 {
					if _, err := s.tournament(args[0]); err != nil {
						return nil, err
					}
				}
				return historyView{TournamentID: id, Operations: ops}, nil
			})
		},
	}
}
