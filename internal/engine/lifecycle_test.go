package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tiebreak/internal/ir"
	"github.com/roach88/tiebreak/internal/testutil"
)

func TestCreate(t *testing.T) {
	e := newTestEngine()
	tour, err := e.Create("  Locals ", []string{" Alice", "Bob ", "Cara", "Dan"}, unshuffled())
	require.NoError(t, err)

	assert.Equal(t, "id-1", tour.ID)
	assert.Equal(t, "Locals", tour.Name)
	assert.Equal(t, ir.StatusInProgress, tour.Status)
	assert.Equal(t, testutil.Epoch, tour.CreatedAt)
	require.Len(t, tour.Players, 4)
	assert.Equal(t, ir.Player{ID: "id-2", Name: "Alice"}, tour.Players[0])
	assert.Equal(t, "Bob", tour.Players[1].Name)

	require.Len(t, tour.Rounds, 1)
	assert.Equal(t, "id-6", tour.Rounds[0].ID)
	assert.Equal(t, 1, tour.Rounds[0].Number)
	require.NotNil(t, tour.CurrentRound)
	assert.Equal(t, 0, *tour.CurrentRound)
	assert.Equal(t, "id-7", tour.Rounds[0].Matches[0].ID)
}

func TestCreate_Errors(t *testing.T) {
	e := newTestEngine()

	_, err := e.Create("Locals", nil, unshuffled())
	assert.ErrorIs(t, err, ErrNoPlayers)

	_, err = e.Create("  ", []string{"a"}, unshuffled())
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = e.Create("Locals", []string{"a", " "}, unshuffled())
	assert.ErrorIs(t, err, ErrInvalidPlayerName)

	_, err = e.Create("Locals", []string{"a"}, ir.Config{WinPoints: 0})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = e.Create("Locals", []string{"a"}, ir.Config{WinPoints: 3, LossPoints: -1})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = e.Create("Locals", []string{"a"}, ir.Config{WinPoints: 3, ShufflePolicy: "sometimes"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidateConfig_DefaultsShufflePolicy(t *testing.T) {
	cfg, err := ValidateConfig(ir.Config{WinPoints: 2, DrawPoints: 1})
	require.NoError(t, err)
	assert.Equal(t, ir.ShuffleAllRounds, cfg.ShufflePolicy)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "\u00e9mile", NormalizeName(" e\u0301mile\t"))
}

func TestSetupPhase(t *testing.T) {
	e := newTestEngine()
	tour, err := e.Draft("League", unshuffled())
	require.NoError(t, err)
	assert.Equal(t, ir.StatusSetup, tour.Status)
	assert.Empty(t, tour.Players)
	assert.NotNil(t, tour.Rounds)

	_, applied := e.Start(tour)
	assert.False(t, applied, "cannot start without players")

	tour, aliceID, applied := e.AddPlayer(tour, "Alice")
	require.True(t, applied)
	tour, bobID, applied := e.AddPlayer(tour, "Bob")
	require.True(t, applied)
	tour, carlID, applied := e.AddPlayer(tour, "Carl")
	require.True(t, applied)
	_, _, applied = e.AddPlayer(tour, "   ")
	assert.False(t, applied)

	tour, applied = RemovePlayer(tour, carlID)
	require.True(t, applied)
	_, applied = RemovePlayer(tour, "missing")
	assert.False(t, applied)
	assert.Len(t, tour.Players, 2)

	tour, applied = e.Start(tour)
	require.True(t, applied)
	assert.Equal(t, ir.StatusInProgress, tour.Status)
	require.Len(t, tour.Rounds, 1)
	assert.Equal(t, aliceID, tour.Rounds[0].Matches[0].PlayerA)
	assert.Equal(t, bobID, tour.Rounds[0].Matches[0].PlayerB)

	_, _, applied = e.AddPlayer(tour, "Late")
	assert.False(t, applied, "players are fixed once started")
	_, applied = RemovePlayer(tour, aliceID)
	assert.False(t, applied)
	_, applied = e.Start(tour)
	assert.False(t, applied)
}

func TestRenamePlayer(t *testing.T) {
	tour := mustCreate(t, newTestEngine(), 2)
	p1 := playerID(t, tour, "P1")

	renamed, applied := RenamePlayer(tour, p1, "Alice")
	require.True(t, applied)
	assert.Equal(t, "Alice", renamed.Players[0].Name)
	assert.Equal(t, "P1", tour.Players[0].Name, "input snapshot must not change")

	_, applied = RenamePlayer(renamed, p1, "Alice")
	assert.False(t, applied)
	_, applied = RenamePlayer(tour, "missing", "X")
	assert.False(t, applied)
	_, applied = RenamePlayer(tour, p1, "")
	assert.False(t, applied)
}

func TestRecordResult_IdempotentAndClearable(t *testing.T) {
	tour := mustCreate(t, newTestEngine(), 4)
	r := tour.Rounds[0]
	m := r.Matches[0]

	once, applied := RecordResult(tour, r.ID, m.ID, res(ir.ResultA))
	require.True(t, applied)
	twice, applied := RecordResult(once, r.ID, m.ID, res(ir.ResultA))
	assert.False(t, applied)
	assert.Equal(t, once, twice)

	assert.Nil(t, tour.Rounds[0].Matches[0].Result, "input snapshot must not change")

	cleared, applied := RecordResult(once, r.ID, m.ID, nil)
	require.True(t, applied)
	assert.Equal(t, tour, cleared)

	changed, applied := RecordResult(once, r.ID, m.ID, res(ir.ResultB))
	require.True(t, applied)
	assert.Equal(t, ir.ResultB, *changed.Rounds[0].Matches[0].Result)
}

func TestRecordResult_UnknownIDsAreNoOps(t *testing.T) {
	tour := mustCreate(t, newTestEngine(), 2)
	r := tour.Rounds[0]

	got, applied := RecordResult(tour, "missing", r.Matches[0].ID, res(ir.ResultA))
	assert.False(t, applied)
	assert.Equal(t, tour, got)

	got, applied = RecordResult(tour, r.ID, "missing", res(ir.ResultA))
	assert.False(t, applied)
	assert.Equal(t, tour, got)
}

func TestAdvanceRound_Preconditions(t *testing.T) {
	e := newTestEngine()
	tour := mustCreate(t, e, 4)

	_, applied := e.AdvanceRound(tour)
	assert.False(t, applied, "round 1 is not complete")

	tour = decide(t, tour, ir.ResultA, ir.ResultA)
	assert.True(t, CanAdvance(tour))

	tour = advance(t, e, tour)
	require.NotNil(t, tour.CurrentRound)
	assert.Equal(t, 1, *tour.CurrentRound)

	tour = decide(t, tour, ir.ResultA, ir.ResultA)
	back, _ := Navigate(tour, Prev)
	_, applied = e.AdvanceRound(back)
	assert.False(t, applied, "must be viewing the last round")

	finished, _ := Finish(tour)
	_, applied = e.AdvanceRound(finished)
	assert.False(t, applied)
}

func TestNavigate(t *testing.T) {
	e := newTestEngine()
	tour := mustCreate(t, e, 2)
	for i := 0; i < 2; i++ {
		tour = decide(t, tour, ir.ResultA)
		tour = advance(t, e, tour)
	}
	require.Len(t, tour.Rounds, 3)
	assert.True(t, IsViewingLastRound(tour))
	assert.False(t, IsViewingFirstRound(tour))

	steps := []struct {
		dir     Direction
		applied bool
		want    int
	}{
		{Prev, true, 1},
		{First, true, 0},
		{Prev, false, 0},
		{Next, true, 1},
		{Last, true, 2},
		{Next, false, 2},
	}
	for _, s := range steps {
		var applied bool
		tour, applied = Navigate(tour, s.dir)
		assert.Equal(t, s.applied, applied, "navigate %s", s.dir)
		idx, ok := tour.ViewedRoundIndex()
		require.True(t, ok)
		assert.Equal(t, s.want, idx, "navigate %s", s.dir)
	}

	tour.CurrentRound = nil
	assert.True(t, IsViewingLastRound(tour), "unset pointer views the last round")
	prev, applied := Navigate(tour, Prev)
	require.True(t, applied)
	assert.Equal(t, 1, *prev.CurrentRound)

	_, applied = Navigate(tour, Direction("sideways"))
	assert.False(t, applied)
}

func TestNavigate_NoRounds(t *testing.T) {
	tour, err := newTestEngine().Draft("League", unshuffled())
	require.NoError(t, err)

	_, applied := Navigate(tour, First)
	assert.False(t, applied)
	assert.False(t, IsViewingFirstRound(tour))
	assert.False(t, IsViewingLastRound(tour))
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("prev")
	require.NoError(t, err)
	assert.Equal(t, Prev, d)

	_, err = ParseDirection("up")
	assert.Error(t, err)
}

func TestTopCut(t *testing.T) {
	tour := mustCreate(t, newTestEngine(), 4)
	tour = decide(t, tour, ir.ResultA, ir.ResultA)

	cut, applied := TopCut(tour, 2)
	require.True(t, applied)
	assert.Equal(t, ir.StatusTopCut, cut.Status)
	assert.Equal(t, []string{"P1", "P3"}, []string{cut.Players[0].Name, cut.Players[1].Name})
	assert.Empty(t, cut.Rounds)
	assert.NotNil(t, cut.Rounds)
	assert.Nil(t, cut.CurrentRound)

	_, applied = TopCut(cut, 1)
	assert.False(t, applied, "top cut is only allowed once")

	_, applied = TopCut(tour, 0)
	assert.False(t, applied)

	all, applied := TopCut(tour, 10)
	require.True(t, applied)
	assert.Len(t, all.Players, 4)
	assert.Equal(t, "P2", all.Players[2].Name)
}

func TestFinish(t *testing.T) {
	e := newTestEngine()
	tour := mustCreate(t, e, 2)

	done, applied := Finish(tour)
	require.True(t, applied)
	assert.Equal(t, ir.StatusFinished, done.Status)

	_, applied = Finish(done)
	assert.False(t, applied)

	draft, err := e.Draft("League", unshuffled())
	require.NoError(t, err)
	_, applied = Finish(draft)
	assert.False(t, applied)

	cut, _ := TopCut(tour, 2)
	done, applied = Finish(cut)
	require.True(t, applied)
	assert.Equal(t, ir.StatusFinished, done.Status)
}
