package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/daralabs/dara/internal/launcher"
	"github.com/daralabs/dara/internal/relayer"
)

// LaunchOrchestrator deploys a token and buys it from fresh identities.
type LaunchOrchestrator interface {
	Prebuy(ctx context.Context, req relayer.PrebuyRequest) (*relayer.PrebuyResult, error)
}

// LaunchHandler handles token launch requests.
type LaunchHandler struct {
	Orchestrator LaunchOrchestrator
}

// PrebuyRequest is the JSON payload for a launch with immediate buys.
type PrebuyRequest struct {
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
	Description      string `json:"description"`
	ImageURL         string `json:"imageUrl"`
	Twitter          string `json:"twitter"`
	Telegram         string `json:"telegram"`
	DepositSignature string `json:"depositSignature"`
	WalletCount      int    `json:"walletCount"`
	InputMint        string `json:"inputMint"`
	TotalAmount      uint64 `json:"totalAmount"`
	SlippageBps      int    `json:"slippageBps"`
}

// Prebuy deploys a token and buys it from up to the maximum number of
// fresh identities. A response with fewer identities than requested
// means some buys failed and were skipped.
func (h *LaunchHandler) Prebuy(w http.ResponseWriter, r *http.Request) {
	var req PrebuyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.Name == "" || req.Symbol == "" || req.InputMint == "" || req.TotalAmount == 0 || req.DepositSignature == "" {
		writeError(w, http.StatusBadRequest, errors.New("name, symbol, inputMint, totalAmount and depositSignature are required"))
		return
	}

	result, err := h.Orchestrator.Prebuy(r.Context(), relayer.PrebuyRequest{
		Metadata: launcher.TokenMetadata{
			Name:        req.Name,
			Symbol:      req.Symbol,
			Description: req.Description,
			ImageURL:    req.ImageURL,
			Twitter:     req.Twitter,
			Telegram:    req.Telegram,
		},
		DepositSignature: req.DepositSignature,
		WalletCount:      req.WalletCount,
		InputMint:        req.InputMint,
		TotalAmount:      req.TotalAmount,
		SlippageBps:      req.SlippageBps,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
