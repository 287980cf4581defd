package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/participant-map/internal/atlas"
)

func snapshotAt(id string, ts time.Time) atlas.Snapshot {
	return atlas.Snapshot{ID: id, LoadedAt: ts}
}

func TestGetLatestEmpty(t *testing.T) {
	s := NewMemoryStore(10, time.Hour)
	_, err := s.GetLatest()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	s.SaveSnapshot(snapshotAt("a", base))
	s.SaveSnapshot(snapshotAt("b", base.Add(time.Minute)))
	s.SaveSnapshot(snapshotAt("c", base.Add(2*time.Minute)))

	assert.Equal(t, 2, s.Len())
	latest, err := s.GetLatest()
	require.NoError(t, err)
	assert.Equal(t, "c", latest.ID)
}

func TestRetentionByAgeKeepsNewest(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return now }

	s.SaveSnapshot(snapshotAt("old", now.Add(-3*time.Hour)))
	s.SaveSnapshot(snapshotAt("older-but-newest", now.Add(-2*time.Hour)))
	assert.Equal(t, 1, s.Len())

	s.SaveSnapshot(snapshotAt("fresh", now.Add(-time.Minute)))
	latest, err := s.GetLatest()
	require.NoError(t, err)
	assert.Equal(t, "fresh", latest.ID)
	assert.Equal(t, 1, s.Len())
}

func TestGetRange(t *testing.T) {
	s := NewMemoryStore(0, 0)
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		s.SaveSnapshot(snapshotAt(id, base.Add(time.Duration(i)*time.Hour)))
	}

	got, err := s.GetRange(base.Add(time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)

	_, err = s.GetRange(base.Add(-2*time.Hour), base.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)
}
