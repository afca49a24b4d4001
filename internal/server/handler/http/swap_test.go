package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daralabs/dara/internal/relayer"
	"github.com/daralabs/dara/internal/swapapi"
)

type fakeQuoteService struct {
	quote *swapapi.Quote
	err   error
}

func (f *fakeQuoteService) GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*swapapi.Quote, error) {
	return f.quote, f.err
}

type fakeOrchestrator struct {
	swap    *relayer.SwapResult
	prebuy  *relayer.PrebuyResult
	err     error
	gotSwap relayer.SwapRequest
}

func (f *fakeOrchestrator) ExecuteSwap(ctx context.Context, req relayer.SwapRequest) (*relayer.SwapResult, error) {
	f.gotSwap = req
	return f.swap, f.err
}

func (f *fakeOrchestrator) Prebuy(ctx context.Context, req relayer.PrebuyRequest) (*relayer.PrebuyResult, error) {
	return f.prebuy, f.err
}

func TestSwapQuote(t *testing.T) {
	qs := &fakeQuoteService{quote: &swapapi.Quote{InputMint: "in", OutputMint: "out", OutAmount: "12345"}}
	h := &SwapHandler{QuoteService: qs}

	w := postJSON(t, h.Quote, QuoteRequest{InputMint: "in", OutputMint: "out", Amount: 1000})

	assert.Equal(t, http.StatusOK, w.Code)
	var got swapapi.Quote
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "12345", got.OutAmount)
}

func TestSwapQuoteMissingFields(t *testing.T) {
	h := &SwapHandler{QuoteService: &fakeQuoteService{}}

	w := postJSON(t, h.Quote, QuoteRequest{InputMint: "in"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSwapQuoteUnavailable(t *testing.T) {
	h := &SwapHandler{QuoteService: &fakeQuoteService{err: swapapi.ErrQuoteUnavailable}}

	w := postJSON(t, h.Quote, QuoteRequest{InputMint: "in", OutputMint: "out", Amount: 1})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSwapExecute(t *testing.T) {
	orch := &fakeOrchestrator{swap: &relayer.SwapResult{
		StealthPublicKey: "stealth-pub",
		StealthSecretKey: "stealth-secret",
		Proceeds:         5000,
		SwapTxRef:        "sig-swap",
		TransferTxRef:    "sig-transfer",
	}}
	h := &SwapHandler{Orchestrator: orch}

	w := postJSON(t, h.Execute, ExecuteRequest{
		DepositSignature: "sig-deposit", InputMint: "in", OutputMint: "out", Amount: 1000, SlippageBps: 100,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var got relayer.SwapResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "stealth-pub", got.StealthPublicKey)
	assert.Equal(t, "stealth-secret", got.StealthSecretKey)
	assert.Equal(t, relayer.SwapRequest{
		DepositSignature: "sig-deposit", InputMint: "in", OutputMint: "out", Amount: 1000, SlippageBps: 100,
	}, orch.gotSwap)
}

func TestSwapExecuteDepositNotFound(t *testing.T) {
	h := &SwapHandler{Orchestrator: &fakeOrchestrator{err: relayer.ErrDepositNotFound}}

	w := postJSON(t, h.Execute, ExecuteRequest{DepositSignature: "sig", InputMint: "in", OutputMint: "out", Amount: 1})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSwapExecuteSwapFailure(t *testing.T) {
	h := &SwapHandler{Orchestrator: &fakeOrchestrator{err: relayer.ErrSwapExecutionFailed}}

	w := postJSON(t, h.Execute, ExecuteRequest{DepositSignature: "sig", InputMint: "in", OutputMint: "out", Amount: 1})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
