package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chupii37/AutoTweet-Bot/internal/models"
)

func sampleCategories() []models.Category {
	return []models.Category{{
		ID:        "crypto",
		Weight:    1,
		Topics:    []string{"staking"},
		Templates: []string{"On {topic}."},
		Hashtags:  []string{"Crypto"},
	}}
}

func TestSQLiteStore_AppendAndRecentEntries(t *testing.T) {
	dbpath := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSQLite(dbpath, sampleCategories())
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	base := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.AppendEntry(ctx, &models.HistoryEntry{
		ID: "a", Text: "older tweet", Category: "crypto", Topic: "staking",
		Outcome: models.OutcomePosted, PostID: "1", CreatedAt: base,
	}))
	require.NoError(t, s.AppendEntry(ctx, &models.HistoryEntry{
		ID: "b", Text: "newer tweet", Category: "crypto", Topic: "staking",
		Outcome: models.OutcomeDryRun, CreatedAt: base.Add(time.Hour),
	}))

	entries, err := s.RecentEntries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].ID, "most recent entry first")
	assert.Equal(t, models.OutcomeDryRun, entries[0].Outcome)
	assert.Equal(t, "a", entries[1].ID)
	assert.Equal(t, "1", entries[1].PostID)

	one, err := s.RecentEntries(ctx, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "b", one[0].ID)
}

func TestSQLiteStore_LoadCategories(t *testing.T) {
	dbpath := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSQLite(dbpath, sampleCategories())
	require.NoError(t, err)
	defer s.Close()

	cats, err := s.LoadCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "crypto", cats[0].ID)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	dbpath := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSQLite(dbpath, sampleCategories())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.AppendEntry(ctx, &models.HistoryEntry{
		ID: "a", Text: "persisted tweet", Category: "crypto",
		Outcome: models.OutcomePosted, CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, s.Close())

	s2, err := OpenSQLite(dbpath, sampleCategories())
	require.NoError(t, err)
	defer s2.Close()

	entries, err := s2.RecentEntries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "persisted tweet", entries[0].Text)
}
