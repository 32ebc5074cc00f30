package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tiebreak/internal/ir"
	"github.com/roach88/tiebreak/internal/testutil"
)

func capturePanic(fn func()) (v any) {
	defer func() { v = recover() }()
	fn()
	return nil
}

func TestGeneratePairings_WinnersMeetInRoundTwo(t *testing.T) {
	e := newTestEngine()
	tour := mustCreate(t, e, 4)
	assert.Equal(t, []string{"P1 v P2", "P3 v P4"}, pairings(tour, tour.Rounds[0]))

	tour = decide(t, tour, ir.ResultA, ir.ResultA)
	tour = advance(t, e, tour)

	require.Len(t, tour.Rounds, 2)
	assert.Equal(t, 2, tour.Rounds[1].Number)
	assert.Equal(t, []string{"P1 v P3", "P2 v P4"}, pairings(tour, tour.Rounds[1]))
}

func TestGeneratePairings_AvoidsRematch(t *testing.T) {
	e := newTestEngine()
	tour := mustCreate(t, e, 4)
	tour = decide(t, tour, ir.ResultA, ir.ResultA)
	tour = advance(t, e, tour)
	tour = decide(t, tour, ir.ResultA, ir.ResultA)
	tour = advance(t, e, tour)

	// Ranked P1, P3, P2, P4. P1 has met P2 and P3, so skips to P4.
	assert.Equal(t, []string{"P1 v P4", "P3 v P2"}, pairings(tour, tour.Rounds[2]))
}

func TestGeneratePairings_FallsBackToRematch(t *testing.T) {
	e := newTestEngine()
	tour := mustCreate(t, e, 2)
	tour = decide(t, tour, ir.ResultB)
	tour = advance(t, e, tour)

	assert.Equal(t, []string{"P2 v P1"}, pairings(tour, tour.Rounds[1]))
}

func TestGeneratePairings_ByeGoesLastToLowestRanked(t *testing.T) {
	tour := mustCreate(t, newTestEngine(), 5)

	r := tour.Rounds[0]
	require.Len(t, r.Matches, 3)
	assert.Equal(t, []string{"P1 v P2", "P3 v P4", "P5 bye"}, pairings(tour, r))
	assert.True(t, r.Matches[2].IsBye())
	assert.Empty(t, r.Matches[2].PlayerB)
	assert.Nil(t, r.Matches[2].Result)
}

func TestGeneratePairings_ByeRotates(t *testing.T) {
	e := newTestEngine()
	tour := mustCreate(t, e, 3)
	assert.Equal(t, []string{"P1 v P2", "P3 bye"}, pairings(tour, tour.Rounds[0]))

	tour = decide(t, tour, ir.ResultA)
	tour = advance(t, e, tour)

	// P3 already had a bye, so it passes to P2, the lowest scorer without one.
	assert.Equal(t, []string{"P1 v P3", "P2 bye"}, pairings(tour, tour.Rounds[1]))
}

func TestGeneratePairings_Coverage(t *testing.T) {
	for n := 0; n <= 9; n++ {
		e := New(WithIDs(testutil.NewSequenceGenerator("m")), WithSeed(uint64(n)))
		players := make([]ir.Player, n)
		for i, name := range testutil.PlayerNames(n) {
			players[i] = ir.Player{ID: name, Name: name}
		}

		matches := e.GeneratePairings(players, nil, ir.DefaultConfig(), true)

		assert.Len(t, matches, (n+1)/2, "n=%d", n)
		count := make(map[string]int)
		byes := 0
		for _, m := range matches {
			count[m.PlayerA]++
			if m.IsBye() {
				byes++
				continue
			}
			count[m.PlayerB]++
			assert.NotEqual(t, m.PlayerA, m.PlayerB)
		}
		assert.Equal(t, n%2, byes, "n=%d", n)
		for _, p := range players {
			assert.Equal(t, 1, count[p.ID], "n=%d player %s", n, p.ID)
		}
	}
}

func TestGeneratePairings_DeterministicForSeed(t *testing.T) {
	players := make([]ir.Player, 8)
	for i, name := range testutil.PlayerNames(8) {
		players[i] = ir.Player{ID: name, Name: name}
	}
	run := func(seed uint64) []ir.Match {
		e := New(WithIDs(testutil.NewSequenceGenerator("m")), WithSeed(seed))
		return e.GeneratePairings(players, nil, ir.DefaultConfig(), true)
	}

	assert.Equal(t, run(7), run(7))

	differs := false
	for seed := uint64(1); seed <= 5; seed++ {
		if !assert.ObjectsAreEqual(run(0), run(seed)) {
			differs = true
		}
	}
	assert.True(t, differs, "different seeds should shuffle differently")
}

func TestGeneratePairings_NoShuffleKeepsInputOrder(t *testing.T) {
	players := []ir.Player{{ID: "d"}, {ID: "c"}, {ID: "b"}, {ID: "a"}}
	e := New(WithIDs(testutil.NewSequenceGenerator("m")))

	matches := e.GeneratePairings(players, nil, ir.DefaultConfig(), false)

	require.Len(t, matches, 2)
	assert.Equal(t, "d", matches[0].PlayerA)
	assert.Equal(t, "c", matches[0].PlayerB)
	assert.Equal(t, "b", matches[1].PlayerA)
	assert.Equal(t, "a", matches[1].PlayerB)
	assert.Equal(t, "m-1", matches[0].ID)
	assert.Equal(t, "m-2", matches[1].ID)
}

func TestGeneratePairings_DuplicatePlayerPanics(t *testing.T) {
	e := newTestEngine()
	players := []ir.Player{{ID: "a"}, {ID: "b"}, {ID: "a"}}

	v := capturePanic(func() {
		e.GeneratePairings(players, nil, ir.DefaultConfig(), false)
	})

	pe, ok := v.(*PairingError)
	require.True(t, ok, "expected *PairingError, got %T", v)
	assert.Equal(t, ErrCodeDuplicatePlayer, pe.Code)
	assert.Equal(t, "a", pe.PlayerID)
	assert.Equal(t, 1, pe.Round)
	assert.True(t, IsPairingError(pe))
}

func TestGeneratePairings_SinglePlayerGetsBye(t *testing.T) {
	e := newTestEngine()
	matches := e.GeneratePairings([]ir.Player{{ID: "solo"}}, nil, ir.DefaultConfig(), true)

	require.Len(t, matches, 1)
	assert.True(t, matches[0].IsBye())
	assert.Equal(t, "solo", matches[0].PlayerA)
}
