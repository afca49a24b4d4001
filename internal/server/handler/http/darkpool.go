package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/daralabs/dara/internal/commitment"
	"github.com/daralabs/dara/internal/models"
)

// DarkPoolService defines the dark pool operations required by the HTTP
// handlers.
type DarkPoolService interface {
	Initialize(ctx context.Context, mint, authority string) (*models.DarkPool, error)
	Place(ctx context.Context, mint, maker string, hash [32]byte, escrowFunds, escrowTokens uint64) (*models.DarkOrder, error)
	Fill(ctx context.Context, mint string, hash [32]byte, taker string, secret [commitment.SecretSize]byte, side uint8, tokenAmount, fundAmount uint64) (*models.DarkOrder, error)
	Cancel(ctx context.Context, mint string, hash [32]byte, caller string) error
}

// DarkPoolHandler handles hidden-order trading requests.
type DarkPoolHandler struct {
	DarkPoolService DarkPoolService
}

// PoolInitializeRequest is the JSON payload for creating a pool.
type PoolInitializeRequest struct {
	Mint      string `json:"mint"`
	Authority string `json:"authority"`
}

// Initialize creates the dark pool for a mint.
func (h *DarkPoolHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	var req PoolInitializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	pool, err := h.DarkPoolService.Initialize(r.Context(), req.Mint, req.Authority)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pool)
}

// PlaceOrderRequest is the JSON payload for a hidden order. Only the
// hash and the escrowed amounts are visible; side and price stay inside
// the hash until fill.
type PlaceOrderRequest struct {
	Mint         string `json:"mint"`
	Maker        string `json:"maker"`
	Hash         string `json:"hash"`
	EscrowFunds  uint64 `json:"escrowFunds"`
	EscrowTokens uint64 `json:"escrowTokens"`
}

// Place records a hidden order with its escrow.
func (h *DarkPoolHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	hash, err := parseHash(req.Hash)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	order, err := h.DarkPoolService.Place(r.Context(), req.Mint, req.Maker, hash, req.EscrowFunds, req.EscrowTokens)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// FillOrderRequest reveals an order's terms to settle it against the
// taker.
type FillOrderRequest struct {
	Mint        string `json:"mint"`
	Hash        string `json:"hash"`
	Taker       string `json:"taker"`
	Secret      string `json:"secret"`
	Side        uint8  `json:"side"`
	TokenAmount uint64 `json:"tokenAmount"`
	FundAmount  uint64 `json:"fundAmount"`
}

// Fill settles an order after verifying the revealed terms.
func (h *DarkPoolHandler) Fill(w http.ResponseWriter, r *http.Request) {
	var req FillOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	hash, err := parseHash(req.Hash)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	secret, err := parseSecret(req.Secret)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	order, err := h.DarkPoolService.Fill(r.Context(), req.Mint, hash, req.Taker, secret, req.Side, req.TokenAmount, req.FundAmount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// CancelOrderRequest is the JSON payload for retiring an order.
type CancelOrderRequest struct {
	Mint   string `json:"mint"`
	Hash   string `json:"hash"`
	Caller string `json:"caller"`
}

// Cancel returns escrow to the maker and retires the order.
func (h *DarkPoolHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	hash, err := parseHash(req.Hash)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.DarkPoolService.Cancel(r.Context(), req.Mint, hash, req.Caller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
