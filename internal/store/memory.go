package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/participant-map/internal/atlas"
)

var (
	// ErrNotFound is returned when no snapshot is available.
	ErrNotFound = errors.New("no snapshot loaded")
)

// MemoryStore is a concurrency-safe in-memory history of dataset snapshots.
type MemoryStore struct {
	mu sync.RWMutex

	// ordered by LoadedAt ascending
	snapshots []atlas.Snapshot

	// retention configuration
	maxHistory int           // max number of snapshots kept
	maxAge     time.Duration // optional max age for snapshots

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveSnapshot appends a new snapshot and enforces retention.
// The newest snapshot is never evicted.
func (s *MemoryStore) SaveSnapshot(snapshot atlas.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots = append(s.snapshots, snapshot)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.snapshots) > s.maxHistory {
		over := len(s.snapshots) - s.maxHistory
		s.snapshots = s.snapshots[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.snapshots)-1; i++ {
			if !s.snapshots[i].LoadedAt.Before(cutoff) {
				break
			}
		}
		s.snapshots = s.snapshots[i:]
	}
}

// GetLatest returns the most recent snapshot.
func (s *MemoryStore) GetLatest() (atlas.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshots) == 0 {
		return atlas.Snapshot{}, ErrNotFound
	}
	return s.snapshots[len(s.snapshots)-1], nil
}

// GetRange returns all snapshots loaded between from and to (inclusive).
func (s *MemoryStore) GetRange(from, to time.Time) ([]atlas.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []atlas.Snapshot
	for _, snap := range s.snapshots {
		if !snap.LoadedAt.Before(from) && !snap.LoadedAt.After(to) {
			result = append(result, snap)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// Len returns the number of retained snapshots.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}
