package state

import (
	"context"
	"slices"

	"github.com/roach88/tiebreak/internal/engine"
	"github.com/roach88/tiebreak/internal/ir"
)

// CreateTournament creates an in-progress tournament with round 1 paired
// and appends it to the list.
func (c *Container) CreateTournament(ctx context.Context, name string, players []string, cfg ir.Config) (ir.Tournament, error) {
	return c.insert(ctx, ir.OpCreate, func() (ir.Tournament, error) {
		return c.engine.Create(name, players, cfg)
	}, func(t ir.Tournament) map[string]any {
		return map[string]any{
			"name":    t.Name,
			"players": playerNames(t),
			"config":  configArgs(t.Config),
		}
	})
}

// DraftTournament creates a tournament in setup, with no players yet.
func (c *Container) DraftTournament(ctx context.Context, name string, cfg ir.Config) (ir.Tournament, error) {
	return c.insert(ctx, ir.OpDraft, func() (ir.Tournament, error) {
		return c.engine.Draft(name, cfg)
	}, func(t ir.Tournament) map[string]any {
		return map[string]any{
			"name":   t.Name,
			"config": configArgs(t.Config),
		}
	})
}

// insert builds a tournament under the write lock and appends it.
func (c *Container) insert(ctx context.Context, op string, build func() (ir.Tournament, error), args func(ir.Tournament) map[string]any) (ir.Tournament, error) {
	c.mu.Lock()
	t, err := build()
	if err != nil {
		c.mu.Unlock()
		return ir.Tournament{}, err
	}
	list := append(slices.Clone(c.tournaments), t)
	c.commit(ctx, op, t.ID, args(t), list, Event{TournamentID: t.ID, Tournament: t.Clone()})
	return t.Clone(), nil
}

// RemoveTournament deletes a tournament.
func (c *Container) RemoveTournament(ctx context.Context, id string) bool {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	list := slices.Delete(slices.Clone(c.tournaments), i, i+1)
	c.commit(ctx, ir.OpRemoveTournament, id, nil, list, Event{TournamentID: id, Removed: true})
	return true
}

// AddPlayer adds a player to a tournament in setup and returns its ID.
func (c *Container) AddPlayer(ctx context.Context, tournamentID, name string) (string, bool) {
	var playerID string
	applied := c.update(ctx, ir.OpAddPlayer, tournamentID, map[string]any{"name": engine.NormalizeName(name)},
		func(t ir.Tournament) (ir.Tournament, bool) {
			next, id, ok := c.engine.AddPlayer(t, name)
			playerID = id
			return next, ok
		})
	return playerID, applied
}

// RenamePlayer changes a player's display name.
func (c *Container) RenamePlayer(ctx context.Context, tournamentID, playerID, name string) bool {
	return c.update(ctx, ir.OpRenamePlayer, tournamentID,
		map[string]any{"player_id": playerID, "name": engine.NormalizeName(name)},
		func(t ir.Tournament) (ir.Tournament, bool) {
			return engine.RenamePlayer(t, playerID, name)
		})
}

// RemovePlayer removes a player from a tournament in setup.
func (c *Container) RemovePlayer(ctx context.Context, tournamentID, playerID string) bool {
	return c.update(ctx, ir.OpRemovePlayer, tournamentID, map[string]any{"player_id": playerID},
		func(t ir.Tournament) (ir.Tournament, bool) {
			return engine.RemovePlayer(t, playerID)
		})
}

// StartTournament leaves setup and pairs round 1.
func (c *Container) StartTournament(ctx context.Context, tournamentID string) bool {
	return c.update(ctx, ir.OpStart, tournamentID, nil, c.engine.Start)
}

// RecordResult sets a match result, or clears it when result is nil.
func (c *Container) RecordResult(ctx context.Context, tournamentID, roundID, matchID string, result *ir.Result) bool {
	var res any
	if result != nil {
		res = string(*result)
	}
	return c.update(ctx, ir.OpRecordResult, tournamentID,
		map[string]any{"round_id": roundID, "match_id": matchID, "result": res},
		func(t ir.Tournament) (ir.Tournament, bool) {
			return engine.RecordResult(t, roundID, matchID, result)
		})
}

// AdvanceToNextRound pairs and appends the next round once the last one
// is decided and viewed.
func (c *Container) AdvanceToNextRound(ctx context.Context, tournamentID string) bool {
	return c.update(ctx, ir.OpAdvance, tournamentID, nil, c.engine.AdvanceRound)
}

// Navigate moves the round view.
func (c *Container) Navigate(ctx context.Context, tournamentID string, dir engine.Direction) bool {
	return c.update(ctx, ir.OpNavigate, tournamentID, map[string]any{"direction": string(dir)},
		func(t ir.Tournament) (ir.Tournament, bool) {
			return engine.Navigate(t, dir)
		})
}

// TopCut keeps the n best players and clears the rounds.
func (c *Container) TopCut(ctx context.Context, tournamentID string, n int) bool {
	return c.update(ctx, ir.OpTopCut, tournamentID, map[string]any{"n": n},
		func(t ir.Tournament) (ir.Tournament, bool) {
			return engine.TopCut(t, n)
		})
}

// Finish closes a tournament.
func (c *Container) Finish(ctx context.Context, tournamentID string) bool {
	return c.update(ctx, ir.OpFinish, tournamentID, nil, engine.Finish)
}

// IsViewingFirstRound reports whether the view is on round 1.
func (c *Container) IsViewingFirstRound(tournamentID string) bool {
	t, ok := c.Tournament(tournamentID)
	return ok && engine.IsViewingFirstRound(t)
}

// IsViewingLastRound reports whether the view is on the newest round.
func (c *Container) IsViewingLastRound(tournamentID string) bool {
	t, ok := c.Tournament(tournamentID)
	return ok && engine.IsViewingLastRound(t)
}

// CalculateScore returns a player's packed score.
func (c *Container) CalculateScore(tournamentID, playerID string) (int64, bool) {
	t, ok := c.Tournament(tournamentID)
	if !ok {
		return 0, false
	}
	if _, ok := t.Player(playerID); !ok {
		return 0, false
	}
	return engine.Score(t, playerID), true
}

// WinsLossesDraws returns a player's record.
func (c *Container) WinsLossesDraws(tournamentID, playerID string) (ir.Record, bool) {
	t, ok := c.Tournament(tournamentID)
	if !ok {
		return ir.Record{}, false
	}
	if _, ok := t.Player(playerID); !ok {
		return ir.Record{}, false
	}
	return engine.WinsLossesDraws(t, playerID), true
}

// Standings ranks a tournament's players.
func (c *Container) Standings(tournamentID string) ([]engine.Standing, bool) {
	t, ok := c.Tournament(tournamentID)
	if !ok {
		return nil, false
	}
	return engine.Standings(t), true
}

func playerNames(t ir.Tournament) []any {
	names := make([]any, len(t.Players))
	for i, p := range t.Players {
		names[i] = p.Name
	}
	return names
}

func configArgs(cfg ir.Config) map[string]any {
	return map[string]any{
		"win_points":     cfg.WinPoints,
		"draw_points":    cfg.DrawPoints,
		"loss_points":    cfg.LossPoints,
		"shuffle_policy": string(cfg.ShufflePolicy),
	}
}
