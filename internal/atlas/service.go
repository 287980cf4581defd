package atlas

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service loads the dataset, aggregates it and keeps the resulting snapshots.
type Service struct {
	store  Store
	source Source

	// serializes reloads triggered by the scheduler and the API
	mu sync.Mutex

	now   func() time.Time
	newID func() string
}

// NewService creates a new Service.
func NewService(store Store, source Source) *Service {
	return &Service{
		store:  store,
		source: source,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Reload reads the dataset and stores a fresh snapshot. When the dataset cannot
// be read the failure is logged and an empty snapshot is stored instead, so the
// map and the table still render; the load error is returned to the caller.
func (s *Service) Reload(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:       s.newID(),
		LoadedAt: s.now(),
		Source:   s.source.Name(),
	}

	d, err := s.source.Load(ctx)
	if err != nil {
		log.Printf("ERROR: dataset load from %s failed, serving empty data: %v", s.source.Name(), err)
		snap.LoadError = err.Error()
		snap.Aggregation = Aggregate(nil, nil)
		s.store.SaveSnapshot(snap)
		return snap, fmt.Errorf("failed to load dataset: %w", err)
	}

	snap.Cities = d.Cities
	snap.Aggregation = Aggregate(d.Participants, d.Cities)
	for _, sk := range snap.Aggregation.Skipped {
		log.Printf("participant #%d %q skipped: %s", sk.Index, sk.Name, sk.Reason)
	}

	log.Printf("INFO: loaded %d participants in %d cities from %s (%d skipped)",
		snap.Aggregation.Total(), len(snap.Aggregation.Counts), s.source.Name(), len(snap.Aggregation.Skipped))

	s.store.SaveSnapshot(snap)
	return snap, nil
}

// Current returns the latest snapshot, or an empty one if nothing was loaded yet.
func (s *Service) Current() Snapshot {
	snap, err := s.store.GetLatest()
	if err != nil {
		return Snapshot{
			LoadedAt:    s.now(),
			Source:      s.source.Name(),
			Aggregation: Aggregate(nil, nil),
		}
	}
	return snap
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest() (Snapshot, error) {
	return s.store.GetLatest()
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(from, to time.Time) ([]Snapshot, error) {
	return s.store.GetRange(from, to)
}
