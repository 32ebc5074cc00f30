package engine

import (
	"slices"
	"sort"

	"github.com/roach88/tiebreak/internal/ir"
)

// pairKey identifies an unordered pair of players.
type pairKey struct{ lo, hi string }

func keyOf(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// GeneratePairings builds the matches for the round after prior.
//
// Players are shuffled when shuffle is set, then stably sorted by score
// descending. With an odd count, the bye goes to the player with the fewest
// prior byes, ties broken toward the lowest score and then the lowest rank.
// The remaining players are paired top-down, each with the first unpaired
// player below them they have not yet faced, or the first unpaired player
// if everyone remaining is a rematch. The bye match, if any, comes last.
//
// Panics with *PairingError if player IDs are not unique.
func (e *Engine) GeneratePairings(players []ir.Player, prior []ir.Round, cfg ir.Config, shuffle bool) []ir.Match {
	round := len(prior) + 1

	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if seen[p.ID] {
			panic(&PairingError{Code: ErrCodeDuplicatePlayer, PlayerID: p.ID, Round: round})
		}
		seen[p.ID] = true
	}

	s := newScorer(players, prior, cfg)
	scores := make(map[string]int64, len(players))
	for _, p := range players {
		scores[p.ID] = s.breakdown(p.ID).Pack()
	}

	var ranked []ir.Player
	if shuffle {
		ranked = shufflePlayers(players, e.rand)
	} else {
		ranked = slices.Clone(players)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].ID] > scores[ranked[j].ID]
	})

	var byePlayer *ir.Player
	if len(ranked)%2 == 1 {
		idx := pickBye(ranked, s.byes, scores)
		p := ranked[idx]
		byePlayer = &p
		ranked = slices.Delete(ranked, idx, idx+1)
	}

	played := make(map[pairKey]bool)
	for _, r := range prior {
		for _, m := range r.Matches {
			if !m.IsBye() {
				played[keyOf(m.PlayerA, m.PlayerB)] = true
			}
		}
	}

	matches := make([]ir.Match, 0, len(players)/2+1)
	paired := make([]bool, len(ranked))
	for i, a := range ranked {
		if paired[i] {
			continue
		}
		paired[i] = true

		partner, fallback := -1, -1
		for k := i + 1; k < len(ranked); k++ {
			if paired[k] || ranked[k].ID == a.ID {
				continue
			}
			if fallback < 0 {
				fallback = k
			}
			if !played[keyOf(a.ID, ranked[k].ID)] {
				partner = k
				break
			}
		}
		if partner < 0 {
			partner = fallback
		}
		if partner < 0 {
			panic(&PairingError{Code: ErrCodeNoCandidate, PlayerID: a.ID, Round: round})
		}
		paired[partner] = true

		matches = append(matches, ir.Match{
			ID:      e.NewID(),
			PlayerA: a.ID,
			PlayerB: ranked[partner].ID,
		})
	}

	if byePlayer != nil {
		matches = append(matches, ir.Match{ID: e.NewID(), PlayerA: byePlayer.ID})
	}
	return matches
}

// pickBye returns the index in ranked of the player who sits out.
func pickBye(ranked []ir.Player, byes map[string]int, scores map[string]int64) int {
	best := 0
	for i := 1; i < len(ranked); i++ {
		id, bestID := ranked[i].ID, ranked[best].ID
		switch {
		case byes[id] < byes[bestID]:
			best = i
		case byes[id] == byes[bestID] && scores[id] <= scores[bestID]:
			best = i
		}
	}
	return best
}
