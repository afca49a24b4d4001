package http

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daralabs/dara/internal/commitment"
	"github.com/daralabs/dara/internal/models"
)

type fakeDarkPoolService struct {
	pool  *models.DarkPool
	order *models.DarkOrder
	err   error

	gotSide   uint8
	gotTokens uint64
	gotFunds  uint64
}

func (f *fakeDarkPoolService) Initialize(ctx context.Context, mint, authority string) (*models.DarkPool, error) {
	return f.pool, f.err
}

func (f *fakeDarkPoolService) Place(ctx context.Context, mint, maker string, hash [32]byte, escrowFunds, escrowTokens uint64) (*models.DarkOrder, error) {
	return f.order, f.err
}

func (f *fakeDarkPoolService) Fill(ctx context.Context, mint string, hash [32]byte, taker string, secret [commitment.SecretSize]byte, side uint8, tokenAmount, fundAmount uint64) (*models.DarkOrder, error) {
	f.gotSide = side
	f.gotTokens = tokenAmount
	f.gotFunds = fundAmount
	return f.order, f.err
}

func (f *fakeDarkPoolService) Cancel(ctx context.Context, mint string, hash [32]byte, caller string) error {
	return f.err
}

func hexHash() string {
	return hex.EncodeToString(make([]byte, 32))
}

func TestDarkPoolInitialize(t *testing.T) {
	svc := &fakeDarkPoolService{pool: &models.DarkPool{ID: "pool1", Mint: "mint"}}
	h := &DarkPoolHandler{DarkPoolService: svc}

	w := postJSON(t, h.Initialize, PoolInitializeRequest{Mint: "mint", Authority: "auth"})

	assert.Equal(t, http.StatusCreated, w.Code)
	var got models.DarkPool
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "pool1", got.ID)
}

func TestDarkPoolPlace(t *testing.T) {
	svc := &fakeDarkPoolService{order: &models.DarkOrder{PoolID: "pool1", EscrowFunds: 100}}
	h := &DarkPoolHandler{DarkPoolService: svc}

	w := postJSON(t, h.Place, PlaceOrderRequest{Mint: "mint", Maker: "maker", Hash: hexHash(), EscrowFunds: 100})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestDarkPoolPlaceRejectsBadHash(t *testing.T) {
	h := &DarkPoolHandler{DarkPoolService: &fakeDarkPoolService{}}

	w := postJSON(t, h.Place, PlaceOrderRequest{Mint: "mint", Maker: "maker", Hash: "zz", EscrowFunds: 100})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDarkPoolFill(t *testing.T) {
	svc := &fakeDarkPoolService{order: &models.DarkOrder{PoolID: "pool1", Filled: true}}
	h := &DarkPoolHandler{DarkPoolService: svc}

	secret := make([]byte, commitment.SecretSize)
	w := postJSON(t, h.Fill, FillOrderRequest{
		Mint: "mint", Hash: hexHash(), Taker: "taker",
		Secret: hex.EncodeToString(secret),
		Side:   models.SideSellTokens, TokenAmount: 10, FundAmount: 20,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint8(models.SideSellTokens), svc.gotSide)
	assert.Equal(t, uint64(10), svc.gotTokens)
	assert.Equal(t, uint64(20), svc.gotFunds)
}

func TestDarkPoolFillInvalidProof(t *testing.T) {
	svc := &fakeDarkPoolService{err: models.ErrInvalidOrderProof}
	h := &DarkPoolHandler{DarkPoolService: svc}

	secret := make([]byte, commitment.SecretSize)
	w := postJSON(t, h.Fill, FillOrderRequest{
		Mint: "mint", Hash: hexHash(), Taker: "taker",
		Secret: hex.EncodeToString(secret), Side: models.SideBuyTokens,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDarkPoolCancel(t *testing.T) {
	h := &DarkPoolHandler{DarkPoolService: &fakeDarkPoolService{}}

	w := postJSON(t, h.Cancel, CancelOrderRequest{Mint: "mint", Hash: hexHash(), Caller: "maker"})

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "cancelled", body["status"])
}

func TestDarkPoolCancelNotMaker(t *testing.T) {
	h := &DarkPoolHandler{DarkPoolService: &fakeDarkPoolService{err: models.ErrUnauthorized}}

	w := postJSON(t, h.Cancel, CancelOrderRequest{Mint: "mint", Hash: hexHash(), Caller: "stranger"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
