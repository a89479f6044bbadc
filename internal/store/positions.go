package store

import (
	"context"
	"time"
)

// UserPosition is a user's cumulative deposit into one pool.
type UserPosition struct {
	UserID      string    `json:"user_id"`
	PoolID      string    `json:"pool_id"`
	Amount      float64   `json:"amount"`
	LastUpdated time.Time `json:"last_updated"`
}

// AddToPosition adds amount to the (user, pool) position, creating it on
// first deposit, and returns the resulting row. The increment is a single
// upsert statement so concurrent deposits serialize on the row lock and no
// update is lost.
func (s *Store) AddToPosition(ctx context.Context, userID, poolID string, amount float64) (*UserPosition, error) {
	var p UserPosition
	err := s.pool.QueryRow(ctx, `
		INSERT INTO user_positions (user_id, pool_id, amount, last_updated)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, pool_id) DO UPDATE
			SET amount = user_positions.amount + EXCLUDED.amount,
			    last_updated = now()
		RETURNING user_id, pool_id, amount, last_updated`,
		userID, poolID, amount).
		Scan(&p.UserID, &p.PoolID, &p.Amount, &p.LastUpdated)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PositionsByUser returns all of a user's positions ordered by pool id.
func (s *Store) PositionsByUser(ctx context.Context, userID string) ([]UserPosition, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, pool_id, amount, last_updated
		FROM user_positions
		WHERE user_id = $1
		ORDER BY pool_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []UserPosition
	for rows.Next() {
		var p UserPosition
		if err := rows.Scan(&p.UserID, &p.PoolID, &p.Amount, &p.LastUpdated); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}
