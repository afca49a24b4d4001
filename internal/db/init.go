package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS presales (
    id TEXT PRIMARY KEY,
    mint TEXT NOT NULL,
    creator TEXT NOT NULL,
    hard_cap BIGINT NOT NULL,
    tokens_for_sale BIGINT NOT NULL,
    start_time BIGINT NOT NULL,
    end_time BIGINT NOT NULL,
    total_committed BIGINT NOT NULL DEFAULT 0,
    final_total BIGINT NOT NULL DEFAULT 0,
    commitment_count INTEGER NOT NULL DEFAULT 0,
    finalized BOOLEAN NOT NULL DEFAULT FALSE,
    UNIQUE (mint, creator)
);

CREATE TABLE IF NOT EXISTS commitments (
    presale_id TEXT REFERENCES presales(id),
    hash BYTEA NOT NULL,
    amount BIGINT NOT NULL,
    claimed BOOLEAN NOT NULL DEFAULT FALSE,
    PRIMARY KEY (presale_id, hash)
);

CREATE TABLE IF NOT EXISTS dark_pools (
    id TEXT PRIMARY KEY,
    mint TEXT NOT NULL UNIQUE,
    authority TEXT NOT NULL,
    order_count BIGINT NOT NULL DEFAULT 0,
    total_volume BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS dark_orders (
    pool_id TEXT REFERENCES dark_pools(id),
    maker TEXT NOT NULL,
    hash BYTEA NOT NULL,
    escrow_funds BIGINT NOT NULL,
    escrow_tokens BIGINT NOT NULL,
    filled BOOLEAN NOT NULL DEFAULT FALSE,
    cancelled BOOLEAN NOT NULL DEFAULT FALSE,
    order_id BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    PRIMARY KEY (pool_id, hash)
);

CREATE TABLE IF NOT EXISTS transfers (
    id TEXT PRIMARY KEY,
    ref_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    asset TEXT NOT NULL,
    from_id TEXT NOT NULL,
    to_id TEXT NOT NULL,
    amount BIGINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// InitPostgres opens the ledger database, verifies connectivity, and
// bootstraps the schema.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
