package store

import (
	"context"
	"fmt"
	"time"
)

// PoolMetricSample is one observation of a pool's yield composition.
// The yield fields are nullable: a provider may omit any of them, and a
// missing value is not the same thing as a zero return.
type PoolMetricSample struct {
	PoolID     string    `json:"pool_id"`
	APY        *float64  `json:"apy"`
	Bribe      *float64  `json:"bribe"`
	TradingFee *float64  `json:"trading_fee"`
	CRVReward  *float64  `json:"crv_reward"`
	RecordedAt time.Time `json:"recorded_at"`
}

// UpsertSamples applies a batch of samples in a single transaction. A sample
// whose (pool_id, recorded_at) key already exists overwrites the stored yield
// fields in place; everything else is inserted. The whole batch commits or
// rolls back together so readers never see a half-applied cycle.
func (s *Store) UpsertSamples(ctx context.Context, samples []PoolMetricSample) (inserted, updated int, err error) {
	if len(samples) == 0 {
		return 0, 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, m := range samples {
		// xmax = 0 only holds for freshly inserted rows, which lets one
		// round trip report insert vs update.
		var wasInsert bool
		err := tx.QueryRow(ctx, `
			INSERT INTO pool_metrics (pool_id, apy, bribe, trading_fee, crv_reward, recorded_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (pool_id, recorded_at)
			DO UPDATE SET
				apy = EXCLUDED.apy,
				bribe = EXCLUDED.bribe,
				trading_fee = EXCLUDED.trading_fee,
				crv_reward = EXCLUDED.crv_reward
			RETURNING (xmax = 0)`,
			m.PoolID, m.APY, m.Bribe, m.TradingFee, m.CRVReward, m.RecordedAt).
			Scan(&wasInsert)
		if err != nil {
			return 0, 0, fmt.Errorf("upsert sample pool=%s: %w", m.PoolID, err)
		}
		if wasInsert {
			inserted++
		} else {
			updated++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("commit upsert: %w", err)
	}
	return inserted, updated, nil
}

// SweepExpired deletes samples recorded more than retentionDays ago and
// returns the number of rows removed. retentionDays <= 0 disables the sweep.
func (s *Store) SweepExpired(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	tag, err := s.pool.Exec(ctx, `DELETE FROM pool_metrics WHERE recorded_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// History returns a pool's samples ascending by recorded_at, optionally
// bounded by [start, end]. ErrNoSamples when nothing matches, ErrInvalidRange
// when start is after end.
func (s *Store) History(ctx context.Context, poolID string, start, end *time.Time) ([]PoolMetricSample, error) {
	if start != nil && end != nil && start.After(*end) {
		return nil, ErrInvalidRange
	}

	query := `SELECT pool_id, apy, bribe, trading_fee, crv_reward, recorded_at
		FROM pool_metrics WHERE pool_id = $1`
	args := []any{poolID}
	if start != nil {
		args = append(args, *start)
		query += fmt.Sprintf(" AND recorded_at >= $%d", len(args))
	}
	if end != nil {
		args = append(args, *end)
		query += fmt.Sprintf(" AND recorded_at <= $%d", len(args))
	}
	query += " ORDER BY recorded_at ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []PoolMetricSample
	for rows.Next() {
		var m PoolMetricSample
		if err := rows.Scan(&m.PoolID, &m.APY, &m.Bribe, &m.TradingFee, &m.CRVReward, &m.RecordedAt); err != nil {
			return nil, err
		}
		samples = append(samples, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("pool %s: %w", poolID, ErrNoSamples)
	}
	return samples, nil
}

// LatestSample returns the most recent sample for a pool, or ErrNoSamples.
func (s *Store) LatestSample(ctx context.Context, poolID string) (*PoolMetricSample, error) {
	var m PoolMetricSample
	err := s.pool.QueryRow(ctx, `
		SELECT pool_id, apy, bribe, trading_fee, crv_reward, recorded_at
		FROM pool_metrics
		WHERE pool_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1`, poolID).
		Scan(&m.PoolID, &m.APY, &m.Bribe, &m.TradingFee, &m.CRVReward, &m.RecordedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("pool %s: %w", poolID, ErrNoSamples)
		}
		return nil, err
	}
	return &m, nil
}

// ListPoolIDs returns the distinct pool ids that have at least one sample.
func (s *Store) ListPoolIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT pool_id FROM pool_metrics ORDER BY pool_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
