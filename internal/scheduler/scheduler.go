package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/i474232898/participant-map/internal/atlas"
)

const (
	defaultInterval = 5 * time.Minute
	reloadTimeout   = 30 * time.Second
)

// Reloader is satisfied by atlas.Service.
type Reloader interface {
	Reload(ctx context.Context) (atlas.Snapshot, error)
}

// Scheduler periodically re-reads the dataset so edits made by the append
// command show up without restarting the server.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Reloader
	interval  time.Duration
}

// New creates a new Scheduler.
func New(service Reloader, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		interval:  interval,
	}
}

// Start schedules the periodic reload and starts the underlying scheduler.
// A negative interval disables reloading and zero falls back to the default.
func (s *Scheduler) Start() error {
	if s.interval < 0 {
		log.Println("scheduler: reload disabled")
		return nil
	}

	interval := s.interval
	if interval == 0 {
		interval = defaultInterval
	}

	_, err := s.scheduler.Every(interval).WaitForSchedule().SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Printf("scheduler: reloading dataset every %s", interval)
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	snap, err := s.service.Reload(ctx)
	if err != nil {
		log.Printf("scheduler: reload failed: %v", err)
		return
	}
	log.Printf("scheduler: snapshot %s ready", snap.ID)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
