package swapapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "inputMintA", q.Get("inputMint"))
		assert.Equal(t, "outputMintB", q.Get("outputMint"))
		assert.Equal(t, "1000000", q.Get("amount"))
		assert.Equal(t, "500", q.Get("slippageBps"))

		_, _ = w.Write([]byte(`{
			"inputMint": "inputMintA",
			"outputMint": "outputMintB",
			"inAmount": "1000000",
			"outAmount": "987654",
			"otherAmountThreshold": "940000",
			"swapMode": "ExactIn",
			"slippageBps": 500,
			"priceImpactPct": "0.12",
			"routePlan": []
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL)
	quote, err := client.GetQuote(context.Background(), "inputMintA", "outputMintB", 1_000_000, 500)
	require.NoError(t, err)

	out, err := quote.OutputAmount()
	require.NoError(t, err)
	assert.Equal(t, uint64(987654), out)
	assert.True(t, quote.PriceImpactPct.Equal(decimal.RequireFromString("0.12")))
}

func TestGetQuote_DefaultSlippage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "300", r.URL.Query().Get("slippageBps"))
		_, _ = w.Write([]byte(`{"outAmount": "1"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL)
	_, err := client.GetQuote(context.Background(), "a", "b", 1, 0)
	require.NoError(t, err)
}

func TestGetQuote_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no route", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL)
	_, err := client.GetQuote(context.Background(), "a", "b", 1, 100)
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
	assert.Contains(t, err.Error(), "no route")
}

func TestSwapTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "relayer-pubkey", body["userPublicKey"])
		assert.Equal(t, true, body["wrapAndUnwrapSol"])

		_, _ = w.Write([]byte(`{"swapTransaction": "c2VyaWFsaXplZA=="}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL)
	payload, err := client.SwapTransaction(context.Background(), &Quote{OutAmount: "5"}, "relayer-pubkey")
	require.NoError(t, err)
	assert.Equal(t, "c2VyaWFsaXplZA==", payload)
}

func TestSwapTransaction_MissingPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL)
	_, err := client.SwapTransaction(context.Background(), &Quote{}, "pk")
	assert.Error(t, err)
}
