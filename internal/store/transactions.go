package store

import (
	"context"
	"time"
)

// DepositTransaction records an on-chain deposit made by a user.
type DepositTransaction struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Amount      float64   `json:"amount"`
	Asset       string    `json:"asset"`
	FromAddress string    `json:"from_address"`
	Network     string    `json:"network"`
	GasFee      float64   `json:"gas_fee"`
	NetReceived float64   `json:"net_received"`
	Status      string    `json:"status"`
	TxHash      string    `json:"tx_hash"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// WithdrawalTransaction records an on-chain withdrawal made by a user.
// Withdrawals never decrement user_positions.amount; they live in their own
// ledger.
type WithdrawalTransaction struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Amount      float64   `json:"amount"`
	Asset       string    `json:"asset"`
	ToAddress   string    `json:"to_address"`
	Network     string    `json:"network"`
	GasFee      float64   `json:"gas_fee"`
	NetReceived float64   `json:"net_received"`
	Status      string    `json:"status"`
	TxHash      string    `json:"tx_hash"`
	RecordedAt  time.Time `json:"recorded_at"`
}

func (s *Store) InsertDepositTransaction(ctx context.Context, tx *DepositTransaction) (*DepositTransaction, error) {
	out := *tx
	err := s.pool.QueryRow(ctx, `
		INSERT INTO deposit_transactions (user_id, amount, asset, from_address, network, gas_fee, net_received, status, tx_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, recorded_at`,
		tx.UserID, tx.Amount, tx.Asset, tx.FromAddress, tx.Network, tx.GasFee, tx.NetReceived, tx.Status, tx.TxHash).
		Scan(&out.ID, &out.RecordedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) ListDepositTransactions(ctx context.Context, userID string, skip, limit int) ([]DepositTransaction, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM deposit_transactions WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, amount, asset, from_address, network, gas_fee, net_received, status, tx_hash, recorded_at
		FROM deposit_transactions
		WHERE user_id = $1
		ORDER BY recorded_at DESC
		OFFSET $2 LIMIT $3`, userID, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []DepositTransaction
	for rows.Next() {
		var t DepositTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Asset, &t.FromAddress, &t.Network,
			&t.GasFee, &t.NetReceived, &t.Status, &t.TxHash, &t.RecordedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

func (s *Store) InsertWithdrawalTransaction(ctx context.Context, tx *WithdrawalTransaction) (*WithdrawalTransaction, error) {
	out := *tx
	err := s.pool.QueryRow(ctx, `
		INSERT INTO withdrawal_transactions (user_id, amount, asset, to_address, network, gas_fee, net_received, status, tx_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, recorded_at`,
		tx.UserID, tx.Amount, tx.Asset, tx.ToAddress, tx.Network, tx.GasFee, tx.NetReceived, tx.Status, tx.TxHash).
		Scan(&out.ID, &out.RecordedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) ListWithdrawalTransactions(ctx context.Context, userID string, skip, limit int) ([]WithdrawalTransaction, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM withdrawal_transactions WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, amount, asset, to_address, network, gas_fee, net_received, status, tx_hash, recorded_at
		FROM withdrawal_transactions
		WHERE user_id = $1
		ORDER BY recorded_at DESC
		OFFSET $2 LIMIT $3`, userID, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []WithdrawalTransaction
	for rows.Next() {
		var t WithdrawalTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Asset, &t.ToAddress, &t.Network,
			&t.GasFee, &t.NetReceived, &t.Status, &t.TxHash, &t.RecordedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

// TrainingRows returns fully-populated (bribe, trading_fee, crv_reward, apy)
// tuples for fitting the APY regression helper.
func (s *Store) TrainingRows(ctx context.Context) (features [][]float64, targets []float64, err error) {
	rows, err := s.pool.Query(ctx, `
		SELECT bribe, trading_fee, crv_reward, apy
		FROM pool_metrics
		WHERE bribe IS NOT NULL AND trading_fee IS NOT NULL
		  AND crv_reward IS NOT NULL AND apy IS NOT NULL`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var bribe, fee, crv, apy float64
		if err := rows.Scan(&bribe, &fee, &crv, &apy); err != nil {
			return nil, nil, err
		}
		features = append(features, []float64{bribe, fee, crv})
		targets = append(targets, apy)
	}
	return features, targets, rows.Err()
}
