package service

import (
	"context"
	"fmt"

	"github.com/daralabs/dara/internal/commitment"
	"github.com/daralabs/dara/internal/models"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// DarkPoolRepository defines the persistence operations needed by the
// DarkPoolService.
type DarkPoolRepository interface {
	// CreatePool inserts a pool for a mint.
	CreatePool(ctx context.Context, pool *models.DarkPool) error
	// PlaceOrder escrows balances and records the hidden order.
	PlaceOrder(ctx context.Context, mint, maker string, hash [32]byte, escrowFunds, escrowTokens uint64, now int64) (*models.DarkOrder, error)
	// FillOrder settles a revealed order; verify runs against the locked row.
	FillOrder(ctx context.Context, mint string, hash [32]byte, taker string, side uint8, tokenAmount, fundAmount uint64, verify func(o *models.DarkOrder) bool) (*models.DarkOrder, error)
	// CancelOrder returns escrow to the maker.
	CancelOrder(ctx context.Context, mint string, hash [32]byte, caller string) error
}

// DarkPoolService implements hidden-order trading for one mint per pool.
type DarkPoolService struct {
	repo DarkPoolRepository
	now  func() int64
}

// NewDarkPoolService constructs a DarkPoolService. now may be nil to use
// the wall clock.
func NewDarkPoolService(repo DarkPoolRepository, now func() int64) *DarkPoolService {
	if now == nil {
		now = unixNow
	}
	return &DarkPoolService{repo: repo, now: now}
}

// Initialize creates the pool for a mint.
func (s *DarkPoolService) Initialize(ctx context.Context, mint, authority string) (*models.DarkPool, error) {
	if mint == "" || authority == "" {
		return nil, fmt.Errorf("mint and authority are required")
	}
	pool := &models.DarkPool{ID: uuid.NewString(), Mint: mint, Authority: authority}
	if err := s.repo.CreatePool(ctx, pool); err != nil {
		return nil, err
	}
	return pool, nil
}

// Place records a hidden order. At least one escrow side must be positive;
// the order terms stay concealed inside the hash until fill.
func (s *DarkPoolService) Place(ctx context.Context, mint, maker string, hash [32]byte, escrowFunds, escrowTokens uint64) (*models.DarkOrder, error) {
	if escrowFunds == 0 && escrowTokens == 0 {
		return nil, models.ErrInvalidOrderParams
	}
	if maker == "" {
		return nil, fmt.Errorf("maker is required")
	}
	return s.repo.PlaceOrder(ctx, mint, maker, hash, escrowFunds, escrowTokens, s.now())
}

// Fill settles an order after verifying the revealed terms against its
// hash. The maker identity bound into the hash is the stored one, so a
// taker cannot redirect a fill to a different maker.
func (s *DarkPoolService) Fill(ctx context.Context, mint string, hash [32]byte, taker string, secret [commitment.SecretSize]byte, side uint8, tokenAmount, fundAmount uint64) (*models.DarkOrder, error) {
	if side != models.SideSellTokens && side != models.SideBuyTokens {
		return nil, models.ErrInvalidSide
	}
	if taker == "" {
		return nil, fmt.Errorf("taker is required")
	}

	verify := func(o *models.DarkOrder) bool {
		makerBytes, err := base58.Decode(o.Maker)
		if err != nil {
			// Maker identities recorded as opaque strings fall back to
			// their raw bytes, matching how the hash was produced.
			makerBytes = []byte(o.Maker)
		}
		return commitment.VerifyOrder(o.Hash, secret, side, tokenAmount, fundAmount, makerBytes)
	}
	return s.repo.FillOrder(ctx, mint, hash, taker, side, tokenAmount, fundAmount, verify)
}

// Cancel returns escrow to the maker and retires the order.
func (s *DarkPoolService) Cancel(ctx context.Context, mint string, hash [32]byte, caller string) error {
	return s.repo.CancelOrder(ctx, mint, hash, caller)
}
