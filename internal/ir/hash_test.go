package ir

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTournament() Tournament {
	return Tournament{
		ID:      "t1",
		Name:    "Locals",
		Players: []Player{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}},
		Rounds: []Round{{ID: "r1", Number: 1, Matches: []Match{
			{ID: "m1", PlayerA: "a", PlayerB: "b"},
		}}},
		Status:    StatusInProgress,
		Config:    DefaultConfig(),
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestTournamentDigestDeterminism(t *testing.T) {
	d1, err := TournamentDigest(sampleTournament())
	require.NoError(t, err)
	d2, err := TournamentDigest(sampleTournament())
	require.NoError(t, err)

	assert.Equal(t, d1, d2, "TournamentDigest must be deterministic")
	assert.Len(t, d1, 64, "SHA-256 hex is 64 characters")
}

func TestTournamentDigestChangesWithResult(t *testing.T) {
	base := sampleTournament()
	changed := base.Clone()
	changed.Rounds[0].Matches[0].Result = resultPtr(ResultA)

	assert.NotEqual(t, MustTournamentDigest(base), MustTournamentDigest(changed))
}

func TestOperationDigestDomainSeparated(t *testing.T) {
	args := map[string]any{"tournament_id": "t1"}
	d1, err := OperationDigest("advance", args)
	require.NoError(t, err)
	d2, err := OperationDigest("top_cut", args)
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2)

	canonical, err := MarshalCanonical(map[string]any{"op": "advance", "args": args})
	require.NoError(t, err)
	assert.NotEqual(t, hashWithDomain(DomainTournament, canonical), d1, "domains must not collide")
}
