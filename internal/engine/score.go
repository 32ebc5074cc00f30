package engine

import (
	"math"
	"sort"

	"github.com/roach88/tiebreak/internal/ir"
)

// Scaling applied to the packed score components.
const (
	percentScale = 1000
	componentCap = 999

	pointsWeight = 1_000_000_000
	omwWeight    = 1_000_000
	oomwWeight   = 1_000
)

// Breakdown holds the four tiebreak components of a player's score,
// most significant first.
type Breakdown struct {
	// MatchPoints is wins×win + draws×draw + losses×loss.
	MatchPoints int `json:"match_points"`
	// OMW is the opponents' average match-win percentage ×1000, capped at 999.
	OMW int `json:"omw"`
	// OOMW is the opponents' average OMW ×1000, capped at 999.
	OOMW int `json:"oomw"`
	// LossPenalty is the sum of squared round numbers lost, capped at 999.
	LossPenalty int `json:"loss_penalty"`
}

// Pack encodes the breakdown as a single integer whose ordering matches
// comparing the components in order of significance.
func (b Breakdown) Pack() int64 {
	return int64(b.MatchPoints)*pointsWeight +
		int64(b.OMW)*omwWeight +
		int64(b.OOMW)*oomwWeight +
		int64(b.LossPenalty)
}

// outcome is one side's view of a match.
type outcome int

const (
	outcomeNone outcome = iota
	outcomeWin
	outcomeLoss
	outcomeDraw
)

// sides returns the outcome for player A and player B of m.
// A bye is a win for A unless a loss was recorded.
func sides(m ir.Match) (a, b outcome) {
	if m.IsBye() {
		if m.Result != nil && *m.Result == ir.ResultLoss {
			return outcomeLoss, outcomeNone
		}
		return outcomeWin, outcomeNone
	}
	if m.Result == nil {
		return outcomeNone, outcomeNone
	}
	switch *m.Result {
	case ir.ResultA:
		return outcomeWin, outcomeLoss
	case ir.ResultB:
		return outcomeLoss, outcomeWin
	case ir.ResultDraw:
		return outcomeDraw, outcomeDraw
	case ir.ResultLoss:
		return outcomeLoss, outcomeLoss
	default:
		return outcomeNone, outcomeNone
	}
}

// scorer derives every player's tallies from the match history in one
// pass and memoizes the opponent-strength terms.
type scorer struct {
	cfg          ir.Config
	roundsPlayed int
	known        map[string]bool
	records      map[string]ir.Record
	opponents    map[string][]string
	lossRounds   map[string][]int
	byes         map[string]int
	mwp          map[string]float64
	omw          map[string]float64
}

func newScorer(players []ir.Player, rounds []ir.Round, cfg ir.Config) *scorer {
	s := &scorer{
		cfg:          cfg,
		roundsPlayed: len(rounds),
		known:        make(map[string]bool, len(players)),
		records:      make(map[string]ir.Record, len(players)),
		opponents:    make(map[string][]string, len(players)),
		lossRounds:   make(map[string][]int),
		byes:         make(map[string]int),
		mwp:          make(map[string]float64, len(players)),
		omw:          make(map[string]float64, len(players)),
	}
	for _, p := range players {
		s.known[p.ID] = true
	}
	for _, r := range rounds {
		for _, m := range r.Matches {
			a, b := sides(m)
			s.tally(m.PlayerA, a, r.Number)
			if m.IsBye() {
				s.byes[m.PlayerA]++
				continue
			}
			s.tally(m.PlayerB, b, r.Number)
			if s.known[m.PlayerB] {
				s.opponents[m.PlayerA] = append(s.opponents[m.PlayerA], m.PlayerB)
			}
			if s.known[m.PlayerA] {
				s.opponents[m.PlayerB] = append(s.opponents[m.PlayerB], m.PlayerA)
			}
		}
	}
	return s
}

func (s *scorer) tally(playerID string, o outcome, round int) {
	rec := s.records[playerID]
	switch o {
	case outcomeWin:
		rec.Wins++
	case outcomeLoss:
		rec.Losses++
		s.lossRounds[playerID] = append(s.lossRounds[playerID], round)
	case outcomeDraw:
		rec.Draws++
	case outcomeNone:
		return
	}
	s.records[playerID] = rec
}

func (s *scorer) matchPoints(playerID string) int {
	rec := s.records[playerID]
	return rec.Wins*s.cfg.WinPoints + rec.Draws*s.cfg.DrawPoints + rec.Losses*s.cfg.LossPoints
}

// matchWinPercentage is match points over the points available so far.
func (s *scorer) matchWinPercentage(playerID string) float64 {
	if v, ok := s.mwp[playerID]; ok {
		return v
	}
	var v float64
	if possible := s.roundsPlayed * s.cfg.WinPoints; possible > 0 {
		v = float64(s.matchPoints(playerID)) / float64(possible)
	}
	s.mwp[playerID] = v
	return v
}

func (s *scorer) opponentsMatchWinPercentage(playerID string) float64 {
	if v, ok := s.omw[playerID]; ok {
		return v
	}
	var v float64
	if opps := s.opponents[playerID]; len(opps) > 0 {
		var sum float64
		for _, o := range opps {
			sum += s.matchWinPercentage(o)
		}
		v = sum / float64(len(opps))
	}
	s.omw[playerID] = v
	return v
}

func (s *scorer) opponentsOpponentsMatchWinPercentage(playerID string) float64 {
	opps := s.opponents[playerID]
	if len(opps) == 0 {
		return 0
	}
	var sum float64
	for _, o := range opps {
		sum += s.opponentsMatchWinPercentage(o)
	}
	return sum / float64(len(opps))
}

func (s *scorer) breakdown(playerID string) Breakdown {
	penalty := 0
	for _, r := range s.lossRounds[playerID] {
		penalty += r * r
	}
	return Breakdown{
		MatchPoints: s.matchPoints(playerID),
		OMW:         scalePercent(s.opponentsMatchWinPercentage(playerID)),
		OOMW:        scalePercent(s.opponentsOpponentsMatchWinPercentage(playerID)),
		LossPenalty: min(penalty, componentCap),
	}
}

// scalePercent maps a fraction to ×1000, rounding halves up, capped at 999.
func scalePercent(f float64) int {
	return min(int(math.Floor(f*percentScale+0.5)), componentCap)
}

// CalculateScore computes a player's packed ranking score from the full
// match history. Higher is better.
func CalculateScore(player ir.Player, rounds []ir.Round, players []ir.Player, cfg ir.Config) int64 {
	return newScorer(players, rounds, cfg).breakdown(player.ID).Pack()
}

// Score computes a player's packed ranking score within t.
func Score(t ir.Tournament, playerID string) int64 {
	return ScoreBreakdown(t, playerID).Pack()
}

// ScoreBreakdown returns the tiebreak components of a player's score.
func ScoreBreakdown(t ir.Tournament, playerID string) Breakdown {
	return newScorer(t.Players, t.Rounds, t.Config).breakdown(playerID)
}

// WinsLossesDraws tallies a player's results across every round.
// A bye counts as a win.
func WinsLossesDraws(t ir.Tournament, playerID string) ir.Record {
	return newScorer(t.Players, t.Rounds, t.Config).records[playerID]
}

// Standing is one row of the standings table.
type Standing struct {
	Rank      int       `json:"rank"`
	Player    ir.Player `json:"player"`
	Record    ir.Record `json:"record"`
	Breakdown Breakdown `json:"breakdown"`
	Score     int64     `json:"score"`
}

// Standings ranks every player by score, descending. Equal scores share a
// rank and keep player-list order.
func Standings(t ir.Tournament) []Standing {
	s := newScorer(t.Players, t.Rounds, t.Config)
	rows := make([]Standing, len(t.Players))
	for i, p := range t.Players {
		b := s.breakdown(p.ID)
		rows[i] = Standing{Player: p, Record: s.records[p.ID], Breakdown: b, Score: b.Pack()}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})
	for i := range rows {
		if i > 0 && rows[i].Score == rows[i-1].Score {
			rows[i].Rank = rows[i-1].Rank
		} else {
			rows[i].Rank = i + 1
		}
	}
	return rows
}
