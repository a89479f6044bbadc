// Package position tracks per-user pool deposits and projects earnings from
// the stored APY series.
package position

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yieldscope/apy-tracker/internal/apy"
	"github.com/yieldscope/apy-tracker/internal/store"
)

// ErrInvalidAmount rejects non-positive deposit amounts.
var ErrInvalidAmount = errors.New("deposit amount must be positive")

// MetricsReader is the read-only slice of the metric store the aggregator
// consumes.
type MetricsReader interface {
	History(ctx context.Context, poolID string, start, end *time.Time) ([]store.PoolMetricSample, error)
	LatestSample(ctx context.Context, poolID string) (*store.PoolMetricSample, error)
}

// PositionStore persists user positions.
type PositionStore interface {
	AddToPosition(ctx context.Context, userID, poolID string, amount float64) (*store.UserPosition, error)
	PositionsByUser(ctx context.Context, userID string) ([]store.UserPosition, error)
}

// EarningsProjection is the result of recording one deposit.
type EarningsProjection struct {
	UserID           string  `json:"user_id"`
	PoolID           string  `json:"pool_id"`
	TotalAmount      float64 `json:"total_amount"`
	ProjectedEarning float64 `json:"projected_earning"`
	CurrentAPR       float64 `json:"current_apr"`
}

// PoolProjection is one pool's share of a user summary.
type PoolProjection struct {
	PoolID           string    `json:"pool_id"`
	Amount           float64   `json:"amount"`
	ProjectedEarning float64   `json:"projected_earning"`
	CurrentAPR       float64   `json:"current_apr"`
	LastUpdated      time.Time `json:"last_updated"`
}

// PositionsSummary aggregates every position a user holds.
type PositionsSummary struct {
	UserID                string           `json:"user_id"`
	Positions             []PoolProjection `json:"positions"`
	TotalAmount           float64          `json:"total_amount"`
	TotalProjectedEarning float64          `json:"total_projected_earning"`
}

type Aggregator struct {
	metrics   MetricsReader
	positions PositionStore
	logger    *slog.Logger
}

func NewAggregator(metrics MetricsReader, positions PositionStore, logger *slog.Logger) *Aggregator {
	return &Aggregator{metrics: metrics, positions: positions, logger: logger}
}

// RecordDeposit adds amount to the user's position in one pool and projects
// earnings by compounding the pool's full APY history. The position update is
// a single atomic upsert, so concurrent deposits for the same key never lose
// an increment. A pool with no samples yet projects zero earnings.
func (a *Aggregator) RecordDeposit(ctx context.Context, userID, poolID string, amount float64) (*EarningsProjection, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidAmount, amount)
	}

	pos, err := a.positions.AddToPosition(ctx, userID, poolID, amount)
	if err != nil {
		return nil, fmt.Errorf("update position: %w", err)
	}

	earning, apr, err := a.project(ctx, poolID, pos.Amount)
	if err != nil {
		return nil, err
	}

	a.logger.Info("deposit recorded",
		"user", userID,
		"pool", poolID,
		"amount", amount,
		"total", pos.Amount,
	)

	return &EarningsProjection{
		UserID:           userID,
		PoolID:           poolID,
		TotalAmount:      pos.Amount,
		ProjectedEarning: earning,
		CurrentAPR:       apr,
	}, nil
}

// Aggregate projects earnings for every pool the user holds a position in and
// sums the totals. Pools with no samples contribute zero instead of failing
// the whole summary.
func (a *Aggregator) Aggregate(ctx context.Context, userID string) (*PositionsSummary, error) {
	positions, err := a.positions.PositionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}

	summary := &PositionsSummary{UserID: userID, Positions: []PoolProjection{}}
	for _, pos := range positions {
		earning, apr, err := a.project(ctx, pos.PoolID, pos.Amount)
		if err != nil {
			return nil, err
		}
		summary.Positions = append(summary.Positions, PoolProjection{
			PoolID:           pos.PoolID,
			Amount:           pos.Amount,
			ProjectedEarning: earning,
			CurrentAPR:       apr,
			LastUpdated:      pos.LastUpdated,
		})
		summary.TotalAmount += pos.Amount
		summary.TotalProjectedEarning += earning
	}
	return summary, nil
}

// project compounds the pool's ascending APY history into projected earnings
// for the given principal and looks up the latest APY as the current APR.
func (a *Aggregator) project(ctx context.Context, poolID string, amount float64) (earning, currentAPR float64, err error) {
	history, err := a.metrics.History(ctx, poolID, nil, nil)
	if err != nil {
		if errors.Is(err, store.ErrNoSamples) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("load history: %w", err)
	}

	returns := make([]*float64, len(history))
	for i, sample := range history {
		returns[i] = sample.APY
	}
	earning = amount * apy.Compound(returns) / 100

	latest, err := a.metrics.LatestSample(ctx, poolID)
	if err != nil {
		if errors.Is(err, store.ErrNoSamples) {
			return earning, 0, nil
		}
		return 0, 0, fmt.Errorf("load latest sample: %w", err)
	}
	if latest.APY != nil {
		currentAPR = *latest.APY
	}
	return earning, currentAPR, nil
}
