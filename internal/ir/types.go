package ir

import (
	"slices"
	"time"
)

// Player is a tournament participant. Only Name may change after creation.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Match pairs PlayerA with PlayerB for one round.
// An empty PlayerB marks a bye. A nil Result means the match is pending.
type Match struct {
	ID      string  `json:"id"`
	PlayerA string  `json:"player_a"`
	PlayerB string  `json:"player_b,omitempty"`
	Result  *Result `json:"result,omitempty"`
}

// IsBye reports whether the match has no second player.
func (m Match) IsBye() bool {
	return m.PlayerB == ""
}

// Involves reports whether playerID plays in this match.
func (m Match) Involves(playerID string) bool {
	return m.PlayerA == playerID || (m.PlayerB != "" && m.PlayerB == playerID)
}

// Decided reports whether the match needs no further result.
// Byes are decided without a recorded result.
func (m Match) Decided() bool {
	return m.Result != nil || m.IsBye()
}

// Opponent returns the other player of the match, or "" for a bye or
// when playerID does not play in it.
func (m Match) Opponent(playerID string) string {
	switch playerID {
	case m.PlayerA:
		return m.PlayerB
	case m.PlayerB:
		return m.PlayerA
	default:
		return ""
	}
}

// Round is one generated set of matches. Number starts at 1.
type Round struct {
	ID      string  `json:"id"`
	Number  int     `json:"number"`
	Matches []Match `json:"matches"`
}

// Completed reports whether every match in the round is decided.
func (r Round) Completed() bool {
	for _, m := range r.Matches {
		if !m.Decided() {
			return false
		}
	}
	return true
}

// Config holds the scoring configuration of a tournament.
type Config struct {
	WinPoints     int           `json:"win_points" yaml:"win_points"`
	DrawPoints    int           `json:"draw_points" yaml:"draw_points"`
	LossPoints    int           `json:"loss_points" yaml:"loss_points"`
	ShufflePolicy ShufflePolicy `json:"shuffle_policy" yaml:"shuffle_policy"`
}

// Default point values, matching the usual 3/1/0 Swiss scoring.
const (
	DefaultWinPoints  = 3
	DefaultDrawPoints = 1
	DefaultLossPoints = 0
)

// DefaultConfig returns 3/1/0 scoring with every round shuffled.
func DefaultConfig() Config {
	return Config{
		WinPoints:     DefaultWinPoints,
		DrawPoints:    DefaultDrawPoints,
		LossPoints:    DefaultLossPoints,
		ShufflePolicy: ShuffleAllRounds,
	}
}

// Tournament is the root aggregate. It owns its players, rounds and
// matches; nothing is shared across tournaments.
//
// CurrentRound is the index of the round being viewed. It only moves the
// view: new rounds are always appended after the last round.
type Tournament struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Players      []Player  `json:"players"`
	Rounds       []Round   `json:"rounds"`
	CurrentRound *int      `json:"current_round,omitempty"`
	Status       Status    `json:"status"`
	Config       Config    `json:"config"`
	CreatedAt    time.Time `json:"created_at"`
}

// Player looks up a player by ID.
func (t Tournament) Player(id string) (Player, bool) {
	for _, p := range t.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// PlayerName returns the display name for id, or id itself when the
// player is not in the tournament.
func (t Tournament) PlayerName(id string) string {
	if p, ok := t.Player(id); ok {
		return p.Name
	}
	return id
}

// MatchLabel renders a match as "Alice v Bob", or "Alice bye".
func (t Tournament) MatchLabel(m Match) string {
	if m.IsBye() {
		return t.PlayerName(m.PlayerA) + " bye"
	}
	return t.PlayerName(m.PlayerA) + " v " + t.PlayerName(m.PlayerB)
}

// LastRound returns the most recently generated round.
func (t Tournament) LastRound() (Round, bool) {
	if len(t.Rounds) == 0 {
		return Round{}, false
	}
	return t.Rounds[len(t.Rounds)-1], true
}

// ViewedRoundIndex returns the index of the round being viewed.
// An unset pointer views the last round. ok is false when there are no rounds.
func (t Tournament) ViewedRoundIndex() (idx int, ok bool) {
	if len(t.Rounds) == 0 {
		return 0, false
	}
	if t.CurrentRound != nil && *t.CurrentRound >= 0 && *t.CurrentRound < len(t.Rounds) {
		return *t.CurrentRound, true
	}
	return len(t.Rounds) - 1, true
}

// Clone returns a deep copy, so reducers can modify it without touching
// the snapshot it came from.
func (t Tournament) Clone() Tournament {
	c := t
	c.Players = slices.Clone(t.Players)
	if t.Rounds != nil {
		c.Rounds = make([]Round, len(t.Rounds))
		for i, r := range t.Rounds {
			c.Rounds[i] = r
			c.Rounds[i].Matches = make([]Match, len(r.Matches))
			for j, m := range r.Matches {
				if m.Result != nil {
					res := *m.Result
					m.Result = &res
				}
				c.Rounds[i].Matches[j] = m
			}
		}
	}
	if t.CurrentRound != nil {
		cur := *t.CurrentRound
		c.CurrentRound = &cur
	}
	return c
}

// Record is a player's win/loss/draw tally.
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
}
