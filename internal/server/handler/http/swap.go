package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/daralabs/dara/internal/relayer"
	"github.com/daralabs/dara/internal/swapapi"
)

// QuoteService prices swaps without executing them.
type QuoteService interface {
	GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*swapapi.Quote, error)
}

// SwapOrchestrator runs the deposit-backed swap pipeline.
type SwapOrchestrator interface {
	ExecuteSwap(ctx context.Context, req relayer.SwapRequest) (*relayer.SwapResult, error)
}

// SwapHandler handles quote and swap execution requests.
type SwapHandler struct {
	QuoteService QuoteService
	Orchestrator SwapOrchestrator
}

// QuoteRequest is the JSON payload for pricing a swap.
type QuoteRequest struct {
	InputMint   string `json:"inputMint"`
	OutputMint  string `json:"outputMint"`
	Amount      uint64 `json:"amount"`
	SlippageBps int    `json:"slippageBps"`
}

// Quote prices a swap and returns the route unchanged from the swap
// service.
func (h *SwapHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.InputMint == "" || req.OutputMint == "" || req.Amount == 0 {
		writeError(w, http.StatusBadRequest, errors.New("inputMint, outputMint and amount are required"))
		return
	}

	quote, err := h.QuoteService.GetQuote(r.Context(), req.InputMint, req.OutputMint, req.Amount, req.SlippageBps)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// ExecuteRequest is the JSON payload for a deposit-backed swap.
type ExecuteRequest struct {
	DepositSignature string `json:"depositSignature"`
	InputMint        string `json:"inputMint"`
	OutputMint       string `json:"outputMint"`
	Amount           uint64 `json:"amount"`
	SlippageBps      int    `json:"slippageBps"`
}

// Execute verifies the deposit, swaps, and settles the proceeds to a
// fresh stealth identity whose secret is returned in the response.
func (h *SwapHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.DepositSignature == "" || req.InputMint == "" || req.OutputMint == "" || req.Amount == 0 {
		writeError(w, http.StatusBadRequest, errors.New("depositSignature, inputMint, outputMint and amount are required"))
		return
	}

	result, err := h.Orchestrator.ExecuteSwap(r.Context(), relayer.SwapRequest{
		DepositSignature: req.DepositSignature,
		InputMint:        req.InputMint,
		OutputMint:       req.OutputMint,
		Amount:           req.Amount,
		SlippageBps:      req.SlippageBps,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
