package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tiebreak/internal/ir"
)

func TestLoadDocument_Missing(t *testing.T) {
	s := createTestStore(t)

	doc, found, err := s.LoadDocument(context.Background(), DefaultKey, testNow)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, ir.DocumentVersion, doc.Version)
	assert.NotNil(t, doc.Tournaments)
	assert.Empty(t, doc.Tournaments)
}

func TestSaveLoadDocument_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	orig := createTestTournament("t1")

	require.NoError(t, s.SaveDocument(ctx, DefaultKey, ir.NewDocument([]ir.Tournament{orig}, testNow)))

	doc, found, err := s.LoadDocument(ctx, DefaultKey, testNow.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, ir.DocumentVersion, doc.Version)
	assert.True(t, doc.SavedAt.Equal(testNow))
	require.Len(t, doc.Tournaments, 1)

	got := doc.Tournaments[0]
	assert.Equal(t, ir.MustTournamentDigest(orig), ir.MustTournamentDigest(got))
	assert.True(t, got.CreatedAt.Equal(orig.CreatedAt), "created_at must survive unchanged")
	require.NotNil(t, got.CurrentRound)
	assert.Equal(t, 1, *got.CurrentRound)
	assert.Equal(t, ir.ResultA, *got.Rounds[0].Matches[0].Result)
	assert.True(t, got.Rounds[0].Matches[1].IsBye())
}

func TestSaveDocument_Replaces(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDocument(ctx, DefaultKey, ir.NewDocument([]ir.Tournament{createTestTournament("t1")}, testNow)))
	require.NoError(t, s.SaveDocument(ctx, DefaultKey, ir.NewDocument(nil, testNow)))

	doc, found, err := s.LoadDocument(ctx, DefaultKey, testNow)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, doc.Tournaments)

	var rows int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestSaveDocument_KeysAreIndependent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDocument(ctx, "league", ir.NewDocument([]ir.Tournament{createTestTournament("t1")}, testNow)))

	_, found, err := s.LoadDocument(ctx, DefaultKey, testNow)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLoadDocument_Corrupt(t *testing.T) {
	s := createTestStore(t)
	_, err := s.db.Exec(
		"INSERT INTO documents (key, version, document, saved_at) VALUES (?, 2, '{not json', '')",
		DefaultKey,
	)
	require.NoError(t, err)

	_, found, err := s.LoadDocument(context.Background(), DefaultKey, testNow)
	assert.True(t, found)
	assert.Error(t, err)
}

func TestSnapshots_SaveLoad(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	snaps := s.Snapshots("", func() time.Time { return testNow })

	loaded, err := snaps.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	require.NoError(t, snaps.Save(ctx, []ir.Tournament{createTestTournament("t1"), createTestTournament("t2")}))

	loaded, err = snaps.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "t1", loaded[0].ID)
	assert.Equal(t, "t2", loaded[1].ID)

	_, found, err := s.LoadDocument(ctx, DefaultKey, testNow)
	require.NoError(t, err)
	assert.True(t, found, "empty key uses the default key")
}
