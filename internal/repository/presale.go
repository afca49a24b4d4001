// Package repository provides the postgres persistence layer for the
// presale ledger. Every state transition runs as one transaction with the
// presale row locked, so each operation is accepted or rejected as a whole
// against the state at invocation.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/daralabs/dara/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresPresaleRepository implements presale ledger operations against a
// PostgreSQL database.
type PostgresPresaleRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresPresaleRepository creates a new PostgresPresaleRepository using
// the provided *sql.DB. db must be a valid connection to a PostgreSQL instance.
func NewPostgresPresaleRepository(db *sql.DB) *PostgresPresaleRepository {
	return &PostgresPresaleRepository{DB: db}
}

// recordTransfer appends one custody movement to the audit trail inside the
// caller's transaction.
func recordTransfer(ctx context.Context, tx *sql.Tx, t models.Transfer) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transfers (id, ref_id, kind, asset, from_id, to_id, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.NewString(), t.RefID, t.Kind, t.Asset, t.From, t.To, int64(t.Amount))
	if err != nil {
		return fmt.Errorf("record transfer: %w", err)
	}
	return nil
}

// Create inserts a new presale and moves tokens_for_sale into ledger
// custody. Returns models.ErrPresaleExists if a presale for the same
// (mint, creator) pair already exists.
func (r *PostgresPresaleRepository) Create(ctx context.Context, p *models.Presale) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO presales (id, mint, creator, hard_cap, tokens_for_sale, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.Mint, p.Creator, int64(p.HardCap), int64(p.TokensForSale), p.StartTime, p.EndTime)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return models.ErrPresaleExists
		}
		return fmt.Errorf("insert presale: %w", err)
	}

	// Token custody: creator → vault, guaranteeing claims are fulfillable.
	err = recordTransfer(ctx, tx, models.Transfer{
		RefID:  p.ID,
		Kind:   models.TransferTokenCustody,
		Asset:  p.Mint,
		From:   p.Creator,
		To:     models.CustodyAccount,
		Amount: p.TokensForSale,
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const presaleColumns = `id, mint, creator, hard_cap, tokens_for_sale, start_time, end_time, total_committed, final_total, commitment_count, finalized`

func scanPresale(row interface{ Scan(...any) error }) (*models.Presale, error) {
	var p models.Presale
	var hardCap, tokensForSale, totalCommitted, finalTotal int64
	var count int32
	err := row.Scan(&p.ID, &p.Mint, &p.Creator, &hardCap, &tokensForSale,
		&p.StartTime, &p.EndTime, &totalCommitted, &finalTotal, &count, &p.Finalized)
	if err != nil {
		return nil, err
	}
	p.HardCap = uint64(hardCap)
	p.TokensForSale = uint64(tokensForSale)
	p.TotalCommitted = uint64(totalCommitted)
	p.FinalTotal = uint64(finalTotal)
	p.CommitmentCount = uint32(count)
	return &p, nil
}

// Get fetches one presale by its (mint, creator) composite key.
func (r *PostgresPresaleRepository) Get(ctx context.Context, mint, creator string) (*models.Presale, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+presaleColumns+` FROM presales WHERE mint = $1 AND creator = $2
	`, mint, creator)
	p, err := scanPresale(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrPresaleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get presale: %w", err)
	}
	return p, nil
}

// List returns all presales, newest window first.
func (r *PostgresPresaleRepository) List(ctx context.Context) ([]models.Presale, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+presaleColumns+` FROM presales ORDER BY start_time DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list presales: %w", err)
	}
	defer rows.Close()

	var presales []models.Presale
	for rows.Next() {
		p, err := scanPresale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		presales = append(presales, *p)
	}
	return presales, rows.Err()
}

// lockPresale reads the presale row FOR UPDATE inside tx, serializing all
// state transitions against it.
func lockPresale(ctx context.Context, tx *sql.Tx, mint, creator string) (*models.Presale, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+presaleColumns+` FROM presales WHERE mint = $1 AND creator = $2 FOR UPDATE
	`, mint, creator)
	p, err := scanPresale(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrPresaleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock presale: %w", err)
	}
	return p, nil
}

// Commit records one deposit against the presale. The hard-cap and window
// checks run against the locked row, so no interleaving can push the total
// past the cap.
func (r *PostgresPresaleRepository) Commit(ctx context.Context, mint, creator string, hash [32]byte, amount uint64, participant string, now int64) (*models.Commitment, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	p, err := lockPresale(ctx, tx, mint, creator)
	if err != nil {
		return nil, err
	}

	switch {
	case p.Finalized:
		return nil, models.ErrAlreadyFinalized
	case now < p.StartTime:
		return nil, models.ErrPresaleNotStarted
	case now > p.EndTime:
		return nil, models.ErrPresaleEnded
	case p.TotalCommitted+amount > p.HardCap:
		return nil, models.ErrHardCapExceeded
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO commitments (presale_id, hash, amount) VALUES ($1, $2, $3)
	`, p.ID, hash[:], int64(amount))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, models.ErrDuplicateCommitment
		}
		return nil, fmt.Errorf("insert commitment: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE presales SET total_committed = total_committed + $1, commitment_count = commitment_count + 1 WHERE id = $2
	`, int64(amount), p.ID)
	if err != nil {
		return nil, fmt.Errorf("update presale totals: %w", err)
	}

	// Deposit custody: participant → vault.
	err = recordTransfer(ctx, tx, models.Transfer{
		RefID:  p.ID,
		Kind:   models.TransferCommitDeposit,
		Asset:  models.AssetFunds,
		From:   participant,
		To:     models.CustodyAccount,
		Amount: amount,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &models.Commitment{PresaleID: p.ID, Hash: hash, Amount: amount}, nil
}

// Finalize flips the presale to its terminal state: freezes the committed
// total, pays raised funds to the creator, and returns the unsold token
// remainder. The remainder is hard_cap-deterministic: tokens_for_sale minus
// the sum of every commitment's floor share.
func (r *PostgresPresaleRepository) Finalize(ctx context.Context, mint, creator, caller string, now int64) (*models.Presale, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	p, err := lockPresale(ctx, tx, mint, creator)
	if err != nil {
		return nil, err
	}

	if caller != p.Creator {
		return nil, models.ErrUnauthorized
	}
	if p.Finalized {
		return nil, models.ErrAlreadyFinalized
	}
	if now <= p.EndTime && p.TotalCommitted < p.HardCap {
		return nil, models.ErrPresaleStillActive
	}

	// The commitment set is complete and immutable once the presale can be
	// finalized, so the distributable total is a plain scan.
	var distributable uint64
	rows, err := tx.QueryContext(ctx, `
		SELECT amount FROM commitments WHERE presale_id = $1
	`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("scan commitments: %w", err)
	}
	for rows.Next() {
		var amount int64
		if err := rows.Scan(&amount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan: %w", err)
		}
		distributable += models.ProRataShare(uint64(amount), p.TokensForSale, p.TotalCommitted)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("scan commitments: %w", err)
	}
	rows.Close()

	_, err = tx.ExecContext(ctx, `
		UPDATE presales SET finalized = TRUE, final_total = total_committed WHERE id = $1
	`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("finalize presale: %w", err)
	}

	if p.TotalCommitted > 0 {
		err = recordTransfer(ctx, tx, models.Transfer{
			RefID:  p.ID,
			Kind:   models.TransferFundsPayout,
			Asset:  models.AssetFunds,
			From:   models.CustodyAccount,
			To:     p.Creator,
			Amount: p.TotalCommitted,
		})
		if err != nil {
			return nil, err
		}
	}
	if unsold := p.TokensForSale - distributable; unsold > 0 {
		err = recordTransfer(ctx, tx, models.Transfer{
			RefID:  p.ID,
			Kind:   models.TransferUnsoldReturn,
			Asset:  p.Mint,
			From:   models.CustodyAccount,
			To:     p.Creator,
			Amount: unsold,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	p.Finalized = true
	p.FinalTotal = p.TotalCommitted
	return p, nil
}

// Claim pays out one commitment's pro-rata share to destination. The
// commitment row is locked before the claimed check, so two concurrent
// claims cannot both succeed. The share divides by the total frozen at
// finalize. Returns the token amount paid.
func (r *PostgresPresaleRepository) Claim(ctx context.Context, mint, creator string, hash [32]byte, destination string) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	p, err := lockPresale(ctx, tx, mint, creator)
	if err != nil {
		return 0, err
	}
	if !p.Finalized {
		return 0, models.ErrNotFinalized
	}

	var amount int64
	var claimed bool
	err = tx.QueryRowContext(ctx, `
		SELECT amount, claimed FROM commitments WHERE presale_id = $1 AND hash = $2 FOR UPDATE
	`, p.ID, hash[:]).Scan(&amount, &claimed)
	if errors.Is(err, sql.ErrNoRows) {
		// No commitment matches the recomputed hash: the opening is wrong.
		return 0, models.ErrInvalidProof
	}
	if err != nil {
		return 0, fmt.Errorf("lock commitment: %w", err)
	}
	if claimed {
		return 0, models.ErrAlreadyClaimed
	}

	tokens := models.ProRataShare(uint64(amount), p.TokensForSale, p.FinalTotal)
	if tokens == 0 {
		return 0, models.ErrInvalidAmount
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE commitments SET claimed = TRUE WHERE presale_id = $1 AND hash = $2
	`, p.ID, hash[:])
	if err != nil {
		return 0, fmt.Errorf("mark claimed: %w", err)
	}

	err = recordTransfer(ctx, tx, models.Transfer{
		RefID:  p.ID,
		Kind:   models.TransferClaimPayout,
		Asset:  p.Mint,
		From:   models.CustodyAccount,
		To:     destination,
		Amount: tokens,
	})
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return tokens, nil
}
