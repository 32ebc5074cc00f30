package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/tiebreak/internal/ir"
)

var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// createTestStore opens a fresh database in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func resultPtr(r ir.Result) *ir.Result {
	return &r
}

// createTestTournament returns a two-round tournament with one recorded
// result and one bye.
func createTestTournament(id string) ir.Tournament {
	cur := 1
	return ir.Tournament{
		ID:   id,
		Name: "Locals",
		Players: []ir.Player{
			{ID: "a", Name: "Alice"},
			{ID: "b", Name: "Bob"},
			{ID: "c", Name: "Cara"},
		},
		Rounds: []ir.Round{
			{ID: "r1", Number: 1, Matches: []ir.Match{
				{ID: "m1", PlayerA: "a", PlayerB: "b", Result: resultPtr(ir.ResultA)},
				{ID: "m2", PlayerA: "c"},
			}},
			{ID: "r2", Number: 2, Matches: []ir.Match{
				{ID: "m3", PlayerA: "a", PlayerB: "c"},
				{ID: "m4", PlayerA: "b"},
			}},
		},
		CurrentRound: &cur,
		Status:       ir.StatusInProgress,
		Config:       ir.DefaultConfig(),
		CreatedAt:    testNow.Add(-time.Hour),
	}
}
