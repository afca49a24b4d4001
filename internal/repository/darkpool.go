package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/daralabs/dara/internal/models"
	"github.com/lib/pq"
)

// PostgresDarkPoolRepository implements dark pool operations against a
// PostgreSQL database.
type PostgresDarkPoolRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresDarkPoolRepository creates a new PostgresDarkPoolRepository
// using the provided *sql.DB.
func NewPostgresDarkPoolRepository(db *sql.DB) *PostgresDarkPoolRepository {
	return &PostgresDarkPoolRepository{DB: db}
}

// CreatePool inserts a new dark pool for a mint. Returns
// models.ErrPoolExists if the mint already has one.
func (r *PostgresDarkPoolRepository) CreatePool(ctx context.Context, pool *models.DarkPool) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO dark_pools (id, mint, authority) VALUES ($1, $2, $3)
	`, pool.ID, pool.Mint, pool.Authority)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return models.ErrPoolExists
		}
		return fmt.Errorf("insert dark pool: %w", err)
	}
	return nil
}

// lockPool reads the pool row FOR UPDATE inside tx.
func lockPool(ctx context.Context, tx *sql.Tx, mint string) (*models.DarkPool, error) {
	var pool models.DarkPool
	var orderCount, totalVolume int64
	err := tx.QueryRowContext(ctx, `
		SELECT id, mint, authority, order_count, total_volume FROM dark_pools WHERE mint = $1 FOR UPDATE
	`, mint).Scan(&pool.ID, &pool.Mint, &pool.Authority, &orderCount, &totalVolume)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrPoolNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock dark pool: %w", err)
	}
	pool.OrderCount = uint64(orderCount)
	pool.TotalVolume = uint64(totalVolume)
	return &pool, nil
}

// PlaceOrder escrows the maker's funds and/or tokens and records the hidden
// order under its hash.
func (r *PostgresDarkPoolRepository) PlaceOrder(ctx context.Context, mint, maker string, hash [32]byte, escrowFunds, escrowTokens uint64, now int64) (*models.DarkOrder, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	pool, err := lockPool(ctx, tx, mint)
	if err != nil {
		return nil, err
	}

	orderID := pool.OrderCount + 1
	_, err = tx.ExecContext(ctx, `
		INSERT INTO dark_orders (pool_id, maker, hash, escrow_funds, escrow_tokens, order_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, pool.ID, maker, hash[:], int64(escrowFunds), int64(escrowTokens), int64(orderID), now)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, models.ErrDuplicateOrder
		}
		return nil, fmt.Errorf("insert order: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE dark_pools SET order_count = order_count + 1 WHERE id = $1
	`, pool.ID)
	if err != nil {
		return nil, fmt.Errorf("update pool: %w", err)
	}

	if escrowFunds > 0 {
		err = recordTransfer(ctx, tx, models.Transfer{
			RefID: pool.ID, Kind: models.TransferOrderEscrow, Asset: models.AssetFunds,
			From: maker, To: models.CustodyAccount, Amount: escrowFunds,
		})
		if err != nil {
			return nil, err
		}
	}
	if escrowTokens > 0 {
		err = recordTransfer(ctx, tx, models.Transfer{
			RefID: pool.ID, Kind: models.TransferOrderEscrow, Asset: pool.Mint,
			From: maker, To: models.CustodyAccount, Amount: escrowTokens,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &models.DarkOrder{
		PoolID: pool.ID, Maker: maker, Hash: hash,
		EscrowFunds: escrowFunds, EscrowTokens: escrowTokens,
		OrderID: orderID, CreatedAt: now,
	}, nil
}

// lockOrder reads an order row FOR UPDATE inside tx.
func lockOrder(ctx context.Context, tx *sql.Tx, poolID string, hash [32]byte) (*models.DarkOrder, error) {
	var o models.DarkOrder
	var escrowFunds, escrowTokens, orderID int64
	err := tx.QueryRowContext(ctx, `
		SELECT pool_id, maker, escrow_funds, escrow_tokens, filled, cancelled, order_id, created_at
		FROM dark_orders WHERE pool_id = $1 AND hash = $2 FOR UPDATE
	`, poolID, hash[:]).Scan(&o.PoolID, &o.Maker, &escrowFunds, &escrowTokens, &o.Filled, &o.Cancelled, &orderID, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock order: %w", err)
	}
	o.Hash = hash
	o.EscrowFunds = uint64(escrowFunds)
	o.EscrowTokens = uint64(escrowTokens)
	o.OrderID = uint64(orderID)
	return &o, nil
}

// FillOrder settles a revealed order. verify receives the stored order and
// maker identity and reports whether the taker's opening matches; the check
// runs inside the transaction against the locked row.
func (r *PostgresDarkPoolRepository) FillOrder(ctx context.Context, mint string, hash [32]byte, taker string, side uint8, tokenAmount, fundAmount uint64, verify func(o *models.DarkOrder) bool) (*models.DarkOrder, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	pool, err := lockPool(ctx, tx, mint)
	if err != nil {
		return nil, err
	}
	order, err := lockOrder(ctx, tx, pool.ID, hash)
	if err != nil {
		return nil, err
	}

	if order.Filled {
		return nil, models.ErrOrderFilled
	}
	if order.Cancelled {
		return nil, models.ErrOrderCancelled
	}
	if !verify(order) {
		return nil, models.ErrInvalidOrderProof
	}

	switch side {
	case models.SideSellTokens:
		// Tokens leave escrow to the taker; funds pass taker → maker.
		if order.EscrowTokens < tokenAmount {
			return nil, models.ErrInsufficientEscrow
		}
		err = recordTransfer(ctx, tx, models.Transfer{
			RefID: pool.ID, Kind: models.TransferOrderRelease, Asset: pool.Mint,
			From: models.CustodyAccount, To: taker, Amount: tokenAmount,
		})
		if err == nil {
			err = recordTransfer(ctx, tx, models.Transfer{
				RefID: pool.ID, Kind: models.TransferOrderRelease, Asset: models.AssetFunds,
				From: taker, To: order.Maker, Amount: fundAmount,
			})
		}
	case models.SideBuyTokens:
		// Escrowed funds go to the taker; tokens pass taker → maker.
		if order.EscrowFunds < fundAmount {
			return nil, models.ErrInsufficientEscrow
		}
		err = recordTransfer(ctx, tx, models.Transfer{
			RefID: pool.ID, Kind: models.TransferOrderRelease, Asset: models.AssetFunds,
			From: models.CustodyAccount, To: taker, Amount: fundAmount,
		})
		if err == nil {
			err = recordTransfer(ctx, tx, models.Transfer{
				RefID: pool.ID, Kind: models.TransferOrderRelease, Asset: pool.Mint,
				From: taker, To: order.Maker, Amount: tokenAmount,
			})
		}
	default:
		return nil, models.ErrInvalidSide
	}
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE dark_orders SET filled = TRUE WHERE pool_id = $1 AND hash = $2
	`, pool.ID, hash[:])
	if err != nil {
		return nil, fmt.Errorf("mark filled: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE dark_pools SET total_volume = total_volume + $1 WHERE id = $2
	`, int64(fundAmount), pool.ID)
	if err != nil {
		return nil, fmt.Errorf("update volume: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	order.Filled = true
	return order, nil
}

// CancelOrder returns escrow to the maker and marks the order cancelled.
// Only the maker may cancel.
func (r *PostgresDarkPoolRepository) CancelOrder(ctx context.Context, mint string, hash [32]byte, caller string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	pool, err := lockPool(ctx, tx, mint)
	if err != nil {
		return err
	}
	order, err := lockOrder(ctx, tx, pool.ID, hash)
	if err != nil {
		return err
	}

	if caller != order.Maker {
		return models.ErrUnauthorized
	}
	if order.Filled {
		return models.ErrOrderFilled
	}
	if order.Cancelled {
		return models.ErrOrderCancelled
	}

	if order.EscrowFunds > 0 {
		err = recordTransfer(ctx, tx, models.Transfer{
			RefID: pool.ID, Kind: models.TransferOrderRelease, Asset: models.AssetFunds,
			From: models.CustodyAccount, To: order.Maker, Amount: order.EscrowFunds,
		})
		if err != nil {
			return err
		}
	}
	if order.EscrowTokens > 0 {
		err = recordTransfer(ctx, tx, models.Transfer{
			RefID: pool.ID, Kind: models.TransferOrderRelease, Asset: pool.Mint,
			From: models.CustodyAccount, To: order.Maker, Amount: order.EscrowTokens,
		})
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE dark_orders SET cancelled = TRUE WHERE pool_id = $1 AND hash = $2
	`, pool.ID, hash[:])
	if err != nil {
		return fmt.Errorf("mark cancelled: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
