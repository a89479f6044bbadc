package store

import "context"

const migrationSQL = `
CREATE TABLE IF NOT EXISTS pool_metrics (
    id BIGSERIAL PRIMARY KEY,
    pool_id TEXT NOT NULL,
    apy DOUBLE PRECISION,
    bribe DOUBLE PRECISION,
    trading_fee DOUBLE PRECISION,
    crv_reward DOUBLE PRECISION,
    recorded_at TIMESTAMPTZ NOT NULL,
    UNIQUE (pool_id, recorded_at)
);

CREATE INDEX IF NOT EXISTS idx_pool_metrics_pool_time
    ON pool_metrics (pool_id, recorded_at);

CREATE TABLE IF NOT EXISTS user_positions (
    user_id TEXT NOT NULL,
    pool_id TEXT NOT NULL,
    amount DOUBLE PRECISION NOT NULL DEFAULT 0,
    last_updated TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (user_id, pool_id)
);

CREATE TABLE IF NOT EXISTS deposit_transactions (
    id BIGSERIAL PRIMARY KEY,
    user_id TEXT NOT NULL,
    amount DOUBLE PRECISION NOT NULL,
    asset TEXT NOT NULL,
    from_address TEXT NOT NULL DEFAULT '',
    network TEXT NOT NULL DEFAULT 'ethereum',
    gas_fee DOUBLE PRECISION NOT NULL DEFAULT 0,
    net_received DOUBLE PRECISION NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    tx_hash TEXT NOT NULL UNIQUE,
    recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_deposit_tx_user ON deposit_transactions (user_id);

CREATE TABLE IF NOT EXISTS withdrawal_transactions (
    id BIGSERIAL PRIMARY KEY,
    user_id TEXT NOT NULL,
    amount DOUBLE PRECISION NOT NULL,
    asset TEXT NOT NULL,
    to_address TEXT NOT NULL DEFAULT '',
    network TEXT NOT NULL DEFAULT 'ethereum',
    gas_fee DOUBLE PRECISION NOT NULL DEFAULT 0,
    net_received DOUBLE PRECISION NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    tx_hash TEXT NOT NULL UNIQUE,
    recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_withdrawal_tx_user ON withdrawal_transactions (user_id);
`

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, migrationSQL)
	return err
}
