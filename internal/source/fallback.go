package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yieldscope/apy-tracker/internal/store"
)

// Chain tries the primary source and falls back to the secondary when the
// primary fails or comes back empty. Exactly one source supplies a cycle's
// data; the chain never mixes providers and never synthesizes samples.
type Chain struct {
	primary   Source
	secondary Source
	logger    *slog.Logger
	reporter  StatusReporter
}

func NewChain(primary, secondary Source, logger *slog.Logger, reporter StatusReporter) *Chain {
	return &Chain{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
		reporter:  reporter,
	}
}

// Fetch returns the cycle's samples and the name of the source that supplied
// them. Every sample is stamped with one shared second-precision timestamp,
// so a retried cycle that refetches lands on the same identity keys.
func (c *Chain) Fetch(ctx context.Context) ([]store.PoolMetricSample, string, error) {
	samples, err := c.primary.Fetch(ctx)
	if err != nil || len(samples) == 0 {
		if err != nil {
			c.logger.Warn("primary source failed", "source", c.primary.Name(), "error", err)
		} else {
			c.logger.Warn("primary source returned no pools", "source", c.primary.Name())
		}
		c.reportFailure(c.primary.Name())

		samples, err = c.secondary.Fetch(ctx)
		if err != nil {
			c.reportFailure(c.secondary.Name())
			return nil, "", fmt.Errorf("all sources failed, last (%s): %w", c.secondary.Name(), err)
		}
		c.stamp(samples)
		c.reportSuccess(c.secondary.Name(), len(samples))
		return samples, c.secondary.Name(), nil
	}

	c.stamp(samples)
	c.reportSuccess(c.primary.Name(), len(samples))
	return samples, c.primary.Name(), nil
}

func (c *Chain) stamp(samples []store.PoolMetricSample) {
	now := time.Now().UTC().Truncate(time.Second)
	for i := range samples {
		samples[i].RecordedAt = now
	}
}

func (c *Chain) reportFailure(name string) {
	if c.reporter != nil {
		c.reporter.SourceFailed(name)
	}
}

func (c *Chain) reportSuccess(name string, n int) {
	if c.reporter != nil {
		c.reporter.SourceSucceeded(name, n)
	}
}
