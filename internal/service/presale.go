// Package service implements the presale and dark pool state machines over
// repository interfaces, keeping validation and proof verification out of
// the persistence layer.
package service

import (
	"context"
	"fmt"

	"github.com/daralabs/dara/internal/commitment"
	"github.com/daralabs/dara/internal/models"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// PresaleRepository defines the persistence operations needed by the
// PresaleService. Implementations must make each mutating call atomic
// against the presale row.
type PresaleRepository interface {
	// Create inserts a presale and takes tokens_for_sale into custody.
	Create(ctx context.Context, p *models.Presale) error
	// Get fetches one presale by (mint, creator).
	Get(ctx context.Context, mint, creator string) (*models.Presale, error)
	// List returns all presales.
	List(ctx context.Context) ([]models.Presale, error)
	// Commit records one deposit under its commitment hash.
	Commit(ctx context.Context, mint, creator string, hash [32]byte, amount uint64, participant string, now int64) (*models.Commitment, error)
	// Finalize freezes the presale and releases custody to the creator.
	Finalize(ctx context.Context, mint, creator, caller string, now int64) (*models.Presale, error)
	// Claim pays a commitment's pro-rata share to destination.
	Claim(ctx context.Context, mint, creator string, hash [32]byte, destination string) (uint64, error)
}

// PresaleService implements the presale ledger state machine.
type PresaleService struct {
	// repo is the underlying persistence repository.
	repo PresaleRepository
	// now supplies the current unix time; injectable for tests.
	now func() int64
}

// NewPresaleService constructs a PresaleService with the provided
// repository and clock. now may be nil to use the wall clock.
func NewPresaleService(repo PresaleRepository, now func() int64) *PresaleService {
	if now == nil {
		now = unixNow
	}
	return &PresaleService{repo: repo, now: now}
}

// Initialize creates a presale and moves tokens_for_sale into ledger
// custody. Fails on a non-positive cap or token amount, or an inverted
// time range.
func (s *PresaleService) Initialize(ctx context.Context, creator, mint string, hardCap, tokensForSale uint64, startTime, endTime int64) (*models.Presale, error) {
	if creator == "" || mint == "" {
		return nil, fmt.Errorf("creator and mint are required")
	}
	if hardCap == 0 || tokensForSale == 0 {
		return nil, models.ErrInvalidAmount
	}
	if endTime <= startTime {
		return nil, models.ErrInvalidTimeRange
	}

	p := &models.Presale{
		ID:            uuid.NewString(),
		Creator:       creator,
		Mint:          mint,
		HardCap:       hardCap,
		TokensForSale: tokensForSale,
		StartTime:     startTime,
		EndTime:       endTime,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns one presale by its composite key.
func (s *PresaleService) Get(ctx context.Context, mint, creator string) (*models.Presale, error) {
	return s.repo.Get(ctx, mint, creator)
}

// PresaleView is a listing entry with the derived lifecycle status.
type PresaleView struct {
	models.Presale
	StatusText string `json:"status"`
}

// List returns all presales with their status at the current time.
func (s *PresaleService) List(ctx context.Context) ([]PresaleView, error) {
	presales, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	views := make([]PresaleView, 0, len(presales))
	for _, p := range presales {
		views = append(views, PresaleView{Presale: p, StatusText: p.Status(now)})
	}
	return views, nil
}

// Commit accepts a deposit against an open presale. The caller is
// typically a disposable burner identity; the commitment hash is the only
// link to the eventual claim destination.
func (s *PresaleService) Commit(ctx context.Context, mint, creator string, hash [32]byte, amount uint64, participant string) (*models.Commitment, error) {
	if amount == 0 {
		return nil, models.ErrInvalidAmount
	}
	if participant == "" {
		return nil, fmt.Errorf("participant is required")
	}
	return s.repo.Commit(ctx, mint, creator, hash, amount, participant, s.now())
}

// Finalize ends the presale. Only the creator may call it, and only after
// the window closed or the cap was reached.
func (s *PresaleService) Finalize(ctx context.Context, mint, creator, caller string) (*models.Presale, error) {
	return s.repo.Finalize(ctx, mint, creator, caller, s.now())
}

// Claim verifies the depositor's secret against the recorded commitment
// hash and pays the pro-rata token share to destination. The hash is
// recomputed here from (secret, destination); the pre-image is never stored.
func (s *PresaleService) Claim(ctx context.Context, mint, creator string, secret [commitment.SecretSize]byte, destination string) (uint64, error) {
	destBytes, err := base58.Decode(destination)
	if err != nil {
		return 0, fmt.Errorf("decode destination: %w", err)
	}
	hash := commitment.Hash(secret, destBytes)
	return s.repo.Claim(ctx, mint, creator, hash, destination)
}
