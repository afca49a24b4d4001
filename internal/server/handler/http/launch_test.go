package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daralabs/dara/internal/relayer"
)

func TestLaunchPrebuy(t *testing.T) {
	orch := &fakeOrchestrator{prebuy: &relayer.PrebuyResult{
		Mint:        "mint-new",
		DeployTxRef: "sig-deploy",
		Identities: []relayer.SwapResult{
			{StealthPublicKey: "w1", Proceeds: 100},
			{StealthPublicKey: "w2", Proceeds: 100},
		},
	}}
	h := &LaunchHandler{Orchestrator: orch}

	w := postJSON(t, h.Prebuy, PrebuyRequest{
		Name: "Dara", Symbol: "DARA", DepositSignature: "sig-deposit",
		WalletCount: 3, InputMint: "in", TotalAmount: 3000,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var got relayer.PrebuyResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "mint-new", got.Mint)
	// Two of three buys succeeded: the caller sees the partial result.
	assert.Len(t, got.Identities, 2)
}

func TestLaunchPrebuyMissingFields(t *testing.T) {
	h := &LaunchHandler{Orchestrator: &fakeOrchestrator{}}

	w := postJSON(t, h.Prebuy, PrebuyRequest{Name: "Dara"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLaunchPrebuyDeployFailure(t *testing.T) {
	h := &LaunchHandler{Orchestrator: &fakeOrchestrator{err: stubError("launch service down")}}

	w := postJSON(t, h.Prebuy, PrebuyRequest{Name: "Dara", Symbol: "DARA", DepositSignature: "sig", InputMint: "in", TotalAmount: 10})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

type stubError string

func (e stubError) Error() string { return string(e) }
