package state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tiebreak/internal/engine"
	"github.com/roach88/tiebreak/internal/ir"
	"github.com/roach88/tiebreak/internal/testutil"
)

type fakePersister struct {
	mu    sync.Mutex
	saves [][]ir.Tournament
	err   error
}

func (p *fakePersister) Save(_ context.Context, ts []ir.Tournament) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves = append(p.saves, ts)
	return p.err
}

func (p *fakePersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.saves)
}

type fakeJournal struct {
	mu  sync.Mutex
	ops []ir.Operation
}

func (j *fakeJournal) AppendOperation(_ context.Context, op ir.Operation) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ops = append(j.ops, op)
	return int64(len(j.ops)), nil
}

func (j *fakeJournal) all() []ir.Operation {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]ir.Operation(nil), j.ops...)
}

func unshuffled() ir.Config {
	cfg := ir.DefaultConfig()
	cfg.ShufflePolicy = ir.NeverShuffle
	return cfg
}

func newTestContainer(opts ...Option) *Container {
	eng := engine.New(
		engine.WithIDs(testutil.NewSequenceGenerator("id")),
		engine.WithSeed(1),
		engine.WithNow(testutil.Fixed(testutil.Epoch)),
	)
	base := []Option{
		WithEngine(eng),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
	}
	return New(append(base, opts...)...)
}

func TestCreateTournament(t *testing.T) {
	p := &fakePersister{}
	j := &fakeJournal{}
	c := newTestContainer(WithPersister(p), WithJournal(j))
	ctx := context.Background()

	tour, err := c.CreateTournament(ctx, "Locals", testutil.PlayerNames(4), unshuffled())
	require.NoError(t, err)

	assert.Equal(t, ir.StatusInProgress, tour.Status)
	assert.Equal(t, int64(1), c.Revision())
	require.Len(t, c.Tournaments(), 1)

	assert.Equal(t, 1, p.count())
	ops := j.all()
	require.Len(t, ops, 1)
	assert.Equal(t, ir.OpCreate, ops[0].Op)
	assert.Equal(t, tour.ID, ops[0].TournamentID)
	assert.Equal(t, int64(1), ops[0].Revision)
	assert.Equal(t, ir.MustTournamentDigest(tour), ops[0].StateDigest)
	assert.Len(t, ops[0].Digest, 64)
	assert.Equal(t, testutil.Epoch, ops[0].AppliedAt)
}

func TestCreateTournament_ErrorLeavesStateUntouched(t *testing.T) {
	j := &fakeJournal{}
	c := newTestContainer(WithJournal(j))

	_, err := c.CreateTournament(context.Background(), "Locals", nil, unshuffled())
	assert.ErrorIs(t, err, engine.ErrNoPlayers)
	assert.Empty(t, c.Tournaments())
	assert.Equal(t, int64(0), c.Revision())
	assert.Empty(t, j.all())
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	p := &fakePersister{}
	c := newTestContainer(WithPersister(p))
	ctx := context.Background()
	tour, err := c.CreateTournament(ctx, "Locals", testutil.PlayerNames(2), unshuffled())
	require.NoError(t, err)
	round := tour.Rounds[0]
	before := c.Tournaments()

	assert.False(t, c.RecordResult(ctx, "missing", round.ID, round.Matches[0].ID, nil))
	assert.False(t, c.RecordResult(ctx, tour.ID, "missing", round.Matches[0].ID, nil))
	assert.False(t, c.AdvanceToNextRound(ctx, "missing"))
	assert.False(t, c.TopCut(ctx, "missing", 2))
	assert.False(t, c.Navigate(ctx, "missing", engine.First))
	assert.False(t, c.RemoveTournament(ctx, "missing"))
	assert.False(t, c.RenamePlayer(ctx, tour.ID, "missing", "X"))
	_, ok := c.CalculateScore(tour.ID, "missing")
	assert.False(t, ok)
	_, ok = c.WinsLossesDraws("missing", "x")
	assert.False(t, ok)
	_, ok = c.Standings("missing")
	assert.False(t, ok)

	assert.Equal(t, before, c.Tournaments())
	assert.Equal(t, int64(1), c.Revision())
	assert.Equal(t, 1, p.count())
}

func TestSnapshotsAreIsolated(t *testing.T) {
	c := newTestContainer()
	tour, err := c.CreateTournament(context.Background(), "Locals", testutil.PlayerNames(2), unshuffled())
	require.NoError(t, err)

	tour.Players[0].Name = "mutated"
	list := c.Tournaments()
	list[0].Rounds[0].Matches[0].PlayerA = "mutated"

	got, ok := c.Tournament(tour.ID)
	require.True(t, ok)
	assert.Equal(t, "P1", got.Players[0].Name)
	assert.NotEqual(t, "mutated", got.Rounds[0].Matches[0].PlayerA)
}

func TestFullTournamentFlow(t *testing.T) {
	c := newTestContainer()
	ctx := context.Background()
	tour, err := c.CreateTournament(ctx, "Locals", testutil.PlayerNames(4), unshuffled())
	require.NoError(t, err)

	r1 := tour.Rounds[0]
	a := ir.ResultA
	for _, m := range r1.Matches {
		require.True(t, c.RecordResult(ctx, tour.ID, r1.ID, m.ID, &a))
	}

	p1 := tour.Players[0].ID
	score, ok := c.CalculateScore(tour.ID, p1)
	require.True(t, ok)
	assert.Equal(t, int64(3_000_999_000), score)

	rec, ok := c.WinsLossesDraws(tour.ID, p1)
	require.True(t, ok)
	assert.Equal(t, ir.Record{Wins: 1}, rec)

	rows, ok := c.Standings(tour.ID)
	require.True(t, ok)
	assert.Equal(t, p1, rows[0].Player.ID)

	require.True(t, c.AdvanceToNextRound(ctx, tour.ID))
	assert.True(t, c.IsViewingLastRound(tour.ID))
	assert.False(t, c.IsViewingFirstRound(tour.ID))

	require.True(t, c.Navigate(ctx, tour.ID, engine.First))
	assert.True(t, c.IsViewingFirstRound(tour.ID))
	assert.False(t, c.AdvanceToNextRound(ctx, tour.ID), "round 2 is undecided")

	require.True(t, c.TopCut(ctx, tour.ID, 2))
	got, _ := c.Tournament(tour.ID)
	assert.Equal(t, ir.StatusTopCut, got.Status)
	assert.Len(t, got.Players, 2)
	assert.Empty(t, got.Rounds)

	require.True(t, c.Finish(ctx, tour.ID))
	got, _ = c.Tournament(tour.ID)
	assert.Equal(t, ir.StatusFinished, got.Status)
}

func TestSetupOperations(t *testing.T) {
	j := &fakeJournal{}
	c := newTestContainer(WithJournal(j))
	ctx := context.Background()

	tour, err := c.DraftTournament(ctx, "League", unshuffled())
	require.NoError(t, err)

	aliceID, ok := c.AddPlayer(ctx, tour.ID, "Alice")
	require.True(t, ok)
	bobID, ok := c.AddPlayer(ctx, tour.ID, "Bob")
	require.True(t, ok)
	require.True(t, c.RenamePlayer(ctx, tour.ID, bobID, "Robert"))
	carlID, ok := c.AddPlayer(ctx, tour.ID, "Carl")
	require.True(t, ok)
	require.True(t, c.RemovePlayer(ctx, tour.ID, carlID))
	require.True(t, c.StartTournament(ctx, tour.ID))

	got, _ := c.Tournament(tour.ID)
	assert.Equal(t, []ir.Player{{ID: aliceID, Name: "Alice"}, {ID: bobID, Name: "Robert"}}, got.Players)
	assert.Equal(t, ir.StatusInProgress, got.Status)

	var names []string
	for _, op := range j.all() {
		names = append(names, op.Op)
	}
	assert.Equal(t, []string{
		ir.OpDraft, ir.OpAddPlayer, ir.OpAddPlayer, ir.OpRenamePlayer,
		ir.OpAddPlayer, ir.OpRemovePlayer, ir.OpStart,
	}, names)
}

func TestRemoveTournament(t *testing.T) {
	j := &fakeJournal{}
	c := newTestContainer(WithJournal(j))
	ctx := context.Background()

	var events []Event
	c.Subscribe(func(ev Event) { events = append(events, ev) })

	tour, err := c.CreateTournament(ctx, "Locals", testutil.PlayerNames(2), unshuffled())
	require.NoError(t, err)
	require.True(t, c.RemoveTournament(ctx, tour.ID))

	assert.Empty(t, c.Tournaments())
	require.Len(t, events, 2)
	assert.True(t, events[1].Removed)
	assert.Equal(t, tour.ID, events[1].TournamentID)

	ops := j.all()
	require.Len(t, ops, 2)
	assert.Equal(t, ir.OpRemoveTournament, ops[1].Op)
	assert.Empty(t, ops[1].StateDigest)
}

func TestSubscribe(t *testing.T) {
	c := newTestContainer()
	ctx := context.Background()

	var events []Event
	unsubscribe := c.Subscribe(func(ev Event) {
		// Reading back from inside a subscriber must not deadlock.
		_, ok := c.Tournament(ev.TournamentID)
		assert.True(t, ok)
		events = append(events, ev)
	})

	tour, err := c.CreateTournament(ctx, "Locals", testutil.PlayerNames(2), unshuffled())
	require.NoError(t, err)
	assert.False(t, c.Navigate(ctx, tour.ID, engine.First), "already on the first round")
	r := tour.Rounds[0]
	draw := ir.ResultDraw
	require.True(t, c.RecordResult(ctx, tour.ID, r.ID, r.Matches[0].ID, &draw))

	require.Len(t, events, 2)
	assert.Equal(t, ir.OpCreate, events[0].Op)
	assert.Equal(t, int64(1), events[0].Revision)
	assert.Equal(t, ir.OpRecordResult, events[1].Op)
	assert.Equal(t, int64(2), events[1].Revision)
	assert.Equal(t, ir.ResultDraw, *events[1].Tournament.Rounds[0].Matches[0].Result)

	unsubscribe()
	require.True(t, c.Finish(ctx, tour.ID))
	assert.Len(t, events, 2)
}

func TestPersistFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	p := &fakePersister{err: errors.New("disk full")}
	c := newTestContainer(
		WithPersister(p),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)

	_, err := c.CreateTournament(context.Background(), "Locals", testutil.PlayerNames(2), unshuffled())
	require.NoError(t, err, "persistence errors never reach the caller")
	assert.Len(t, c.Tournaments(), 1)
	assert.Contains(t, logs.String(), "persist failed")
	assert.Contains(t, logs.String(), "disk full")
}

func TestWithRevisionResumes(t *testing.T) {
	seed := []ir.Tournament{{ID: "t0", Name: "Old", Players: []ir.Player{}, Rounds: []ir.Round{}, Status: ir.StatusSetup, Config: ir.DefaultConfig()}}
	c := newTestContainer(WithRevision(41), WithTournaments(seed))

	require.True(t, c.RemoveTournament(context.Background(), "t0"))
	assert.Equal(t, int64(42), c.Revision())
}

func TestConcurrentCreates(t *testing.T) {
	j := &fakeJournal{}
	c := newTestContainer(WithJournal(j))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.CreateTournament(context.Background(), fmt.Sprintf("T%d", i), testutil.PlayerNames(3), ir.DefaultConfig())
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, c.Tournaments(), 10)
	assert.Equal(t, int64(10), c.Revision())

	seen := make(map[int64]bool)
	for _, op := range j.all() {
		seen[op.Revision] = true
	}
	assert.Len(t, seen, 10)
}
