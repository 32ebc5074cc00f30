package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewPlayerCommand creates the player command group.
func NewPlayerCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Add, rename or remove players",
		Long: `Manage the players of a tournament. Players may be added or removed only
while the tournament is in setup; renaming is allowed at any time.`,
	}

	cmd.AddCommand(newPlayerAddCommand(opts))
	cmd.AddCommand(newPlayerRenameCommand(opts))
	cmd.AddCommand(newPlayerRemoveCommand(opts))
	return cmd
}

func newPlayerAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "add <tournament> <name>",
		Short:         "Add a player to a tournament in setup",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) (any, error) {
				t, err := s.tournament(args[0])
				if err != nil {
					return nil, err
				}
				id, ok := s.container.AddPlayer(ctx, t.ID, args[1])
				if !ok {
					return nil, rejected("add player", t)
				}
				t, _ = s.container.Tournament(t.ID)
				p, _ := t.Player(id)
				return message{Message: fmt.Sprintf("Added %s to %s", p.Name, t.Name), ID: id}, nil
			})
		},
	}
}

func newPlayerRenameCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rename <tournament> <player> <name>",
		Short:         "Rename a player",
		Args:          cobra.ExactArgs(3),
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
				if !s.container.RenamePlayer(ctx, t.ID, p.ID, args[2]) {
					return nil, rejected("rename player", t)
				}
				t, _ = s.container.Tournament(t.ID)
				return tournamentView{t}, nil
			})
		},
	}
}

func newPlayerRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <tournament> <player>",
		Short:         "Remove a player from a tournament in setup",
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
				if !s.container.RemovePlayer(ctx, t.ID, p.ID) {
					return nil, rejected("remove player", t)
				}
				t, _ = s.container.Tournament(t.ID)
				return tournamentView{t}, nil
			})
		},
	}
}
