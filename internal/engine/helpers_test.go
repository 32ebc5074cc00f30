package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tiebreak/internal/ir"
	"github.com/roach88/tiebreak/internal/testutil"
)

func newTestEngine() *Engine {
	return New(
		WithIDs(testutil.NewSequenceGenerator("id")),
		WithSeed(42),
		WithNow(testutil.Fixed(testutil.Epoch)),
	)
}

// unshuffled returns 3/1/0 scoring with shuffling off, so pairings follow
// player-list order among equal scores.
func unshuffled() ir.Config {
	cfg := ir.DefaultConfig()
	cfg.ShufflePolicy = ir.NeverShuffle
	return cfg
}

func res(r ir.Result) *ir.Result {
	return &r
}

func mustCreate(t *testing.T, e *Engine, players int) ir.Tournament {
	t.Helper()
	tour, err := e.Create("Locals", testutil.PlayerNames(players), unshuffled())
	require.NoError(t, err)
	return tour
}

// decide records results for the paired matches of the last round, in
// match order. Byes are skipped.
func decide(t *testing.T, tour ir.Tournament, results ...ir.Result) ir.Tournament {
	t.Helper()
	last, ok := tour.LastRound()
	require.True(t, ok)
	i := 0
	for _, m := range last.Matches {
		if m.IsBye() {
			continue
		}
		require.Less(t, i, len(results), "not enough results for round %d", last.Number)
		var applied bool
		tour, applied = RecordResult(tour, last.ID, m.ID, res(results[i]))
		require.True(t, applied)
		i++
	}
	require.Equal(t, len(results), i, "too many results for round %d", last.Number)
	return tour
}

// pairings renders a round as "P1 v P2" / "P5 bye" using player names.
func pairings(tour ir.Tournament, r ir.Round) []string {
	name := func(id string) string {
		p, ok := tour.Player(id)
		if !ok {
			return id
		}
		return p.Name
	}
	out := make([]string, len(r.Matches))
	for i, m := range r.Matches {
		if m.IsBye() {
			out[i] = name(m.PlayerA) + " bye"
		} else {
			out[i] = fmt.Sprintf("%s v %s", name(m.PlayerA), name(m.PlayerB))
		}
	}
	return out
}

func playerID(t *testing.T, tour ir.Tournament, name string) string {
	t.Helper()
	for _, p := range tour.Players {
		if p.Name == name {
			return p.ID
		}
	}
	require.FailNow(t, "no player named "+name)
	return ""
}

func advance(t *testing.T, e *Engine, tour ir.Tournament) ir.Tournament {
	t.Helper()
	next, ok := e.AdvanceRound(tour)
	require.True(t, ok, "advance must apply")
	return next
}
