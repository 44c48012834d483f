package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const defaultSweepTimeout = 10 * time.Minute

// Sweeper is the part of the alert sweep the scheduler drives
type Sweeper interface {
	Run(ctx context.Context) (service.SweepResult, error)
}

// Scheduler runs the daily inventory alert sweep in the business timezone.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	timeout time.Duration

	mu      sync.Mutex
	running bool
}

func NewScheduler(sweeper Sweeper, spec string, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		sweeper: sweeper,
		timeout: defaultSweepTimeout,
	}
	if _, err := s.cron.AddFunc(spec, s.runSweep); err != nil {
		return nil, fmt.Errorf("schedule alert sweep %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("jobs: scheduler started")
	s.cron.Start()
}

// Stop waits for a sweep that is already running
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Warn().Msg("jobs: scheduler stop timed out")
	}
}

// Next reports when the sweep fires next
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) runSweep() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Warn().Msg("jobs: previous alert sweep still running, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	result, err := s.sweeper.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("jobs: alert sweep failed")
		return
	}
	log.Info().
		Int("pharmacists", result.Pharmacists).
		Int("notifications", result.Notifications).
		Int("failures", result.Failures).
		Dur("took", time.Since(start)).
		Msg("jobs: alert sweep done")
}
