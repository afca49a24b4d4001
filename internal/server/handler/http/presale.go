package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/daralabs/dara/internal/commitment"
	"github.com/daralabs/dara/internal/models"
	"github.com/daralabs/dara/internal/service"
)

// PresaleService defines the presale operations required by the HTTP
// handlers.
type PresaleService interface {
	Initialize(ctx context.Context, creator, mint string, hardCap, tokensForSale uint64, startTime, endTime int64) (*models.Presale, error)
	List(ctx context.Context) ([]service.PresaleView, error)
	Commit(ctx context.Context, mint, creator string, hash [32]byte, amount uint64, participant string) (*models.Commitment, error)
	Finalize(ctx context.Context, mint, creator, caller string) (*models.Presale, error)
	Claim(ctx context.Context, mint, creator string, secret [commitment.SecretSize]byte, destination string) (uint64, error)
}

// PresaleHandler handles presale lifecycle requests.
type PresaleHandler struct {
	// PresaleService performs the underlying ledger operations.
	PresaleService PresaleService
}

// InitializeRequest is the JSON payload for creating a presale.
type InitializeRequest struct {
	Creator       string `json:"creator"`
	Mint          string `json:"mint"`
	HardCap       uint64 `json:"hardCap"`
	TokensForSale uint64 `json:"tokensForSale"`
	StartTime     int64  `json:"startTime"`
	EndTime       int64  `json:"endTime"`
}

// Initialize creates a presale for a mint and moves the tokens for sale
// into ledger custody.
func (h *PresaleHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	var req InitializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	presale, err := h.PresaleService.Initialize(r.Context(), req.Creator, req.Mint, req.HardCap, req.TokensForSale, req.StartTime, req.EndTime)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, presale)
}

// List returns every presale with its derived lifecycle status.
func (h *PresaleHandler) List(w http.ResponseWriter, r *http.Request) {
	presales, err := h.PresaleService.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, presales)
}

// CommitRequest is the JSON payload for a hidden commitment. The hash is
// hex encoded; its pre-image never travels in this request.
type CommitRequest struct {
	Mint        string `json:"mint"`
	Creator     string `json:"creator"`
	Hash        string `json:"hash"`
	Amount      uint64 `json:"amount"`
	Participant string `json:"participant"`
}

// Commit records a deposit against an open presale.
func (h *PresaleHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var req CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	hash, err := parseHash(req.Hash)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	c, err := h.PresaleService.Commit(r.Context(), req.Mint, req.Creator, hash, req.Amount, req.Participant)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// FinalizeRequest is the JSON payload for closing a presale.
type FinalizeRequest struct {
	Mint    string `json:"mint"`
	Creator string `json:"creator"`
	Caller  string `json:"caller"`
}

// Finalize ends a presale, freezing the committed total and releasing
// the raised funds and unsold tokens to the creator.
func (h *PresaleHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	var req FinalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	presale, err := h.PresaleService.Finalize(r.Context(), req.Mint, req.Creator, req.Caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, presale)
}

// ClaimRequest is the JSON payload for redeeming a commitment. The
// secret is hex encoded and, with the destination, must reproduce the
// recorded commitment hash.
type ClaimRequest struct {
	Mint        string `json:"mint"`
	Creator     string `json:"creator"`
	Secret      string `json:"secret"`
	Destination string `json:"destination"`
}

// ClaimResponse reports the tokens paid out to the claim destination.
type ClaimResponse struct {
	Destination string `json:"destination"`
	Tokens      uint64 `json:"tokens"`
}

// Claim verifies a revealed secret and pays the pro-rata token share.
func (h *PresaleHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var req ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	secret, err := parseSecret(req.Secret)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tokens, err := h.PresaleService.Claim(r.Context(), req.Mint, req.Creator, secret, req.Destination)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ClaimResponse{Destination: req.Destination, Tokens: tokens})
}
