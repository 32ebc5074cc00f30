package engine

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/tiebreak/internal/ir"
)

// Direction selects a round to view.
type Direction string

const (
	First Direction = "first"
	Last  Direction = "last"
	Prev  Direction = "prev"
	Next  Direction = "next"
)

// ParseDirection converts the wire form of a navigation direction.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case First, Last, Prev, Next:
		return d, nil
	}
	return "", fmt.Errorf("invalid direction %q: must be one of first, last, prev, next", s)
}

// NormalizeName trims surrounding space and applies NFC so visually
// identical names compare equal.
func NormalizeName(name string) string {
	return strings.TrimSpace(norm.NFC.String(name))
}

// ValidateConfig checks point values and fills a missing shuffle policy
// with the default.
func ValidateConfig(cfg ir.Config) (ir.Config, error) {
	if cfg.WinPoints <= 0 {
		return cfg, fmt.Errorf("%w: win points must be positive, got %d", ErrInvalidConfig, cfg.WinPoints)
	}
	if cfg.DrawPoints < 0 || cfg.LossPoints < 0 {
		return cfg, fmt.Errorf("%w: draw and loss points must not be negative", ErrInvalidConfig)
	}
	if cfg.ShufflePolicy == "" {
		cfg.ShufflePolicy = ir.ShuffleAllRounds
	}
	if _, err := ir.ParseShufflePolicy(string(cfg.ShufflePolicy)); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Draft creates a tournament in setup with no players or rounds.
func (e *Engine) Draft(name string, cfg ir.Config) (ir.Tournament, error) {
	name = NormalizeName(name)
	if name == "" {
		return ir.Tournament{}, ErrInvalidName
	}
	cfg, err := ValidateConfig(cfg)
	if err != nil {
		return ir.Tournament{}, err
	}
	return ir.Tournament{
		ID:        e.NewID(),
		Name:      name,
		Players:   []ir.Player{},
		Rounds:    []ir.Round{},
		Status:    ir.StatusSetup,
		Config:    cfg,
		CreatedAt: e.Now(),
	}, nil
}

// Create builds an in-progress tournament with round 1 already paired.
func (e *Engine) Create(name string, playerNames []string, cfg ir.Config) (ir.Tournament, error) {
	if len(playerNames) == 0 {
		return ir.Tournament{}, ErrNoPlayers
	}
	t, err := e.Draft(name, cfg)
	if err != nil {
		return ir.Tournament{}, err
	}
	for _, pn := range playerNames {
		pn = NormalizeName(pn)
		if pn == "" {
			return ir.Tournament{}, ErrInvalidPlayerName
		}
		t.Players = append(t.Players, ir.Player{ID: e.NewID(), Name: pn})
	}
	t, _ = e.Start(t)
	return t, nil
}

// AddPlayer appends a player while the tournament is in setup.
// Returns the new player's ID.
func (e *Engine) AddPlayer(t ir.Tournament, name string) (ir.Tournament, string, bool) {
	name = NormalizeName(name)
	if t.Status != ir.StatusSetup || name == "" {
		return t, "", false
	}
	next := t.Clone()
	id := e.NewID()
	next.Players = append(next.Players, ir.Player{ID: id, Name: name})
	return next, id, true
}

// RenamePlayer changes a player's display name in any status.
func RenamePlayer(t ir.Tournament, playerID, name string) (ir.Tournament, bool) {
	name = NormalizeName(name)
	if name == "" {
		return t, false
	}
	for i, p := range t.Players {
		if p.ID != playerID {
			continue
		}
		if p.Name == name {
			return t, false
		}
		next := t.Clone()
		next.Players[i].Name = name
		return next, true
	}
	return t, false
}

// RemovePlayer drops a player while the tournament is in setup.
func RemovePlayer(t ir.Tournament, playerID string) (ir.Tournament, bool) {
	if t.Status != ir.StatusSetup {
		return t, false
	}
	for i, p := range t.Players {
		if p.ID == playerID {
			next := t.Clone()
			next.Players = append(next.Players[:i], next.Players[i+1:]...)
			return next, true
		}
	}
	return t, false
}

// Start moves a tournament out of setup and pairs round 1.
func (e *Engine) Start(t ir.Tournament) (ir.Tournament, bool) {
	if t.Status != ir.StatusSetup || len(t.Players) == 0 {
		return t, false
	}
	next := t.Clone()
	next.Status = ir.StatusInProgress
	next.Rounds = []ir.Round{e.newRound(next, 1)}
	first := 0
	next.CurrentRound = &first
	return next, true
}

func (e *Engine) newRound(t ir.Tournament, number int) ir.Round {
	return ir.Round{
		ID:      e.NewID(),
		Number:  number,
		Matches: e.GeneratePairings(t.Players, t.Rounds, t.Config, t.Config.ShufflePolicy.ShuffleRound(number)),
	}
}

// RecordResult sets or, with a nil result, clears a match result.
// Results a bye cannot take are ignored.
func RecordResult(t ir.Tournament, roundID, matchID string, result *ir.Result) (ir.Tournament, bool) {
	for ri, r := range t.Rounds {
		if r.ID != roundID {
			continue
		}
		for mi, m := range r.Matches {
			if m.ID != matchID {
				continue
			}
			if result != nil && !result.AllowedFor(m) {
				return t, false
			}
			if sameResult(m.Result, result) {
				return t, false
			}
			next := t.Clone()
			if result == nil {
				next.Rounds[ri].Matches[mi].Result = nil
			} else {
				res := *result
				next.Rounds[ri].Matches[mi].Result = &res
			}
			return next, true
		}
		return t, false
	}
	return t, false
}

func sameResult(a, b *ir.Result) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// CanAdvance reports whether the next round can be generated: the
// tournament is in progress, the last round is viewed and fully decided.
func CanAdvance(t ir.Tournament) bool {
	if t.Status != ir.StatusInProgress {
		return false
	}
	last, ok := t.LastRound()
	if !ok || !last.Completed() {
		return false
	}
	return IsViewingLastRound(t)
}

// AdvanceRound appends the next round and moves the view to it.
func (e *Engine) AdvanceRound(t ir.Tournament) (ir.Tournament, bool) {
	if !CanAdvance(t) {
		return t, false
	}
	next := t.Clone()
	next.Rounds = append(next.Rounds, e.newRound(next, len(next.Rounds)+1))
	idx := len(next.Rounds) - 1
	next.CurrentRound = &idx
	return next, true
}

// Navigate moves the view pointer. Moving past either end is a no-op.
func Navigate(t ir.Tournament, dir Direction) (ir.Tournament, bool) {
	cur, ok := t.ViewedRoundIndex()
	if !ok {
		return t, false
	}
	target := cur
	switch dir {
	case First:
		target = 0
	case Last:
		target = len(t.Rounds) - 1
	case Prev:
		if cur > 0 {
			target = cur - 1
		}
	case Next:
		if cur < len(t.Rounds)-1 {
			target = cur + 1
		}
	default:
		return t, false
	}
	if t.CurrentRound != nil && *t.CurrentRound == target {
		return t, false
	}
	next := t.Clone()
	next.CurrentRound = &target
	return next, true
}

// IsViewingFirstRound reports whether the view is on round 1.
func IsViewingFirstRound(t ir.Tournament) bool {
	idx, ok := t.ViewedRoundIndex()
	return ok && idx == 0
}

// IsViewingLastRound reports whether the view is on the newest round.
func IsViewingLastRound(t ir.Tournament) bool {
	idx, ok := t.ViewedRoundIndex()
	return ok && idx == len(t.Rounds)-1
}

// TopCut keeps the n highest-scoring players, in ranked order, and
// discards the round history. n larger than the field keeps everyone.
func TopCut(t ir.Tournament, n int) (ir.Tournament, bool) {
	if t.Status != ir.StatusInProgress || n <= 0 {
		return t, false
	}
	standings := Standings(t)
	n = min(n, len(standings))
	next := t.Clone()
	next.Players = make([]ir.Player, n)
	for i := range n {
		next.Players[i] = standings[i].Player
	}
	next.Rounds = []ir.Round{}
	next.CurrentRound = nil
	next.Status = ir.StatusTopCut
	return next, true
}

// Finish closes an in-progress or top-cut tournament.
func Finish(t ir.Tournament) (ir.Tournament, bool) {
	if t.Status != ir.StatusInProgress && t.Status != ir.StatusTopCut {
		return t, false
	}
	next := t.Clone()
	next.Status = ir.StatusFinished
	return next, true
}
