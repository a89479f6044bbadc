// Package ingest runs the periodic metric ingestion cycle: fetch through the
// fallback chain, upsert the batch, sweep expired samples.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yieldscope/apy-tracker/internal/store"
)

// Cycle states as surfaced by Status.
const (
	StatePending  = "pending"
	StateRunning  = "running"
	StateSuccess  = "success"
	StateRetrying = "retrying"
	StateFailed   = "failed"
)

// Fetcher supplies one cycle's worth of samples plus the name of the source
// that produced them.
type Fetcher interface {
	Fetch(ctx context.Context) ([]store.PoolMetricSample, string, error)
}

// SampleStore is the slice of the metric store the scheduler writes to.
type SampleStore interface {
	UpsertSamples(ctx context.Context, samples []store.PoolMetricSample) (inserted, updated int, err error)
	SweepExpired(ctx context.Context, retentionDays int) (int64, error)
}

// Reporter receives cycle outcomes for observability.
type Reporter interface {
	CycleSucceeded(source string, inserted, updated int)
	CycleFailed()
	SamplesSwept(n int64)
}

type Config struct {
	Interval      time.Duration // period between firings
	RetentionDays int           // <= 0 disables the sweep
	MaxAttempts   int           // whole-cycle retry budget
	Backoff       time.Duration // base backoff between attempts
}

// Status describes the most recent cycle.
type Status struct {
	State         string    `json:"state"`
	Source        string    `json:"source,omitempty"`
	Inserted      int       `json:"inserted"`
	Updated       int       `json:"updated"`
	LastStartedAt time.Time `json:"last_started_at,omitzero"`
	LastSuccessAt time.Time `json:"last_success_at,omitzero"`
	LastError     string    `json:"last_error,omitempty"`
}

type Scheduler struct {
	fetcher  Fetcher
	store    SampleStore
	cfg      Config
	logger   *slog.Logger
	reporter Reporter

	mu      sync.Mutex
	running bool
	status  Status
}

func New(fetcher Fetcher, st SampleStore, cfg Config, logger *slog.Logger, reporter Reporter) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 8 * time.Hour
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 5 * time.Second
	}
	return &Scheduler{
		fetcher:  fetcher,
		store:    st,
		cfg:      cfg,
		logger:   logger,
		reporter: reporter,
		status:   Status{State: StatePending},
	}
}

// Run fires the ingestion cycle immediately and then on every tick until the
// context is cancelled. Cycle failures never stop the loop.
func (s *Scheduler) Run(ctx context.Context) {
	s.Trigger(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Trigger(ctx)
		}
	}
}

// Trigger runs one cycle now. A trigger that would overlap a cycle still in
// flight is skipped, not queued.
func (s *Scheduler) Trigger(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("ingestion cycle still running, skipping firing")
		return
	}
	s.running = true
	s.status.State = StateRunning
	s.status.LastStartedAt = time.Now().UTC()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	attempt := 0
	err := withRetry(ctx, s.cfg.MaxAttempts, s.cfg.Backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			s.setState(StateRetrying)
			s.logger.Info("retrying ingestion cycle", "attempt", attempt)
		}
		return s.cycle(ctx)
	})
	if err != nil {
		s.logger.Error("ingestion cycle failed", "attempts", attempt, "error", err)
		s.mu.Lock()
		s.status.State = StateFailed
		s.status.LastError = err.Error()
		s.mu.Unlock()
		if s.reporter != nil {
			s.reporter.CycleFailed()
		}
	}
}

// Status returns a copy of the latest cycle status.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Scheduler) setState(state string) {
	s.mu.Lock()
	s.status.State = state
	s.mu.Unlock()
}

func (s *Scheduler) cycle(ctx context.Context) error {
	samples, sourceName, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch samples: %w", err)
	}

	inserted, updated, err := s.store.UpsertSamples(ctx, samples)
	if err != nil {
		return fmt.Errorf("store samples: %w", err)
	}

	// The sweep runs after the upsert so this cycle's rows are already
	// committed, and its failure never fails the cycle.
	if swept, err := s.store.SweepExpired(ctx, s.cfg.RetentionDays); err != nil {
		s.logger.Warn("retention sweep failed", "error", err)
	} else if swept > 0 {
		s.logger.Info("retention sweep", "deleted", swept, "retention_days", s.cfg.RetentionDays)
		if s.reporter != nil {
			s.reporter.SamplesSwept(swept)
		}
	}

	s.logger.Info("ingestion cycle complete",
		"source", sourceName,
		"samples", len(samples),
		"inserted", inserted,
		"updated", updated,
	)

	s.mu.Lock()
	s.status = Status{
		State:         StateSuccess,
		Source:        sourceName,
		Inserted:      inserted,
		Updated:       updated,
		LastStartedAt: s.status.LastStartedAt,
		LastSuccessAt: time.Now().UTC(),
	}
	s.mu.Unlock()

	if s.reporter != nil {
		s.reporter.CycleSucceeded(sourceName, inserted, updated)
	}
	return nil
}
