package chain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daralabs/dara/internal/stealth"
)

// fakeRPC serves canned JSON-RPC results keyed by method.
func fakeRPC(t *testing.T, results map[string]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode rpc request: %v", err)
		}
		result, ok := results[req.Method]
		if !ok {
			t.Errorf("unexpected rpc method %q", req.Method)
			result = "null"
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":` + result + `}`))
	}))
}

func TestGetTransaction_NotFound(t *testing.T) {
	srv := fakeRPC(t, map[string]string{"getTransaction": "null"})
	defer srv.Close()

	client := NewRPCClient(srv.URL)
	_, err := client.GetTransaction(context.Background(), "sig123")
	assert.True(t, errors.Is(err, ErrTxNotFound))
}

func TestGetTransaction_BalanceDelta(t *testing.T) {
	srv := fakeRPC(t, map[string]string{"getTransaction": `{
		"slot": 42,
		"meta": {"err": null, "preBalances": [100, 50], "postBalances": [40, 105]},
		"transaction": {"message": {"accountKeys": ["sender", "relayer-account"]}}
	}`})
	defer srv.Close()

	client := NewRPCClient(srv.URL)
	tx, err := client.GetTransaction(context.Background(), "sig123")
	require.NoError(t, err)

	assert.Equal(t, uint64(42), tx.Slot)
	assert.False(t, tx.Failed)
	// Credited 55 to the relayer account, debited the sender.
	assert.Equal(t, uint64(55), tx.ReceivedAmount("relayer-account"))
	assert.Equal(t, uint64(0), tx.ReceivedAmount("sender"))
	assert.Equal(t, uint64(0), tx.ReceivedAmount("stranger"))
}

func TestGetTransaction_FailedTx(t *testing.T) {
	srv := fakeRPC(t, map[string]string{"getTransaction": `{
		"slot": 42,
		"meta": {"err": {"InstructionError": [0, "Custom"]}, "preBalances": [], "postBalances": []},
		"transaction": {"message": {"accountKeys": []}}
	}`})
	defer srv.Close()

	client := NewRPCClient(srv.URL)
	tx, err := client.GetTransaction(context.Background(), "sig123")
	require.NoError(t, err)
	assert.True(t, tx.Failed)
}

func TestGetTokenBalance(t *testing.T) {
	srv := fakeRPC(t, map[string]string{"getTokenAccountsByOwner": `{
		"value": [
			{"account": {"data": {"parsed": {"info": {"tokenAmount": {"amount": "1500"}}}}}},
			{"account": {"data": {"parsed": {"info": {"tokenAmount": {"amount": "500"}}}}}}
		]
	}`})
	defer srv.Close()

	client := NewRPCClient(srv.URL)
	balance, err := client.GetTokenBalance(context.Background(), "owner", "mint")
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), balance)
}

func TestGetTokenBalance_MalformedAmount(t *testing.T) {
	// Trailing garbage must not parse as a smaller balance.
	srv := fakeRPC(t, map[string]string{"getTokenAccountsByOwner": `{
		"value": [
			{"account": {"data": {"parsed": {"info": {"tokenAmount": {"amount": "123abc"}}}}}}
		]
	}`})
	defer srv.Close()

	client := NewRPCClient(srv.URL)
	_, err := client.GetTokenBalance(context.Background(), "owner", "mint")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse token amount")
}

func TestGetTokenBalance_NoAccount(t *testing.T) {
	srv := fakeRPC(t, map[string]string{"getTokenAccountsByOwner": `{"value": []}`})
	defer srv.Close()

	client := NewRPCClient(srv.URL)
	balance, err := client.GetTokenBalance(context.Background(), "owner", "mint")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)
}

func TestTransferTokens(t *testing.T) {
	srv := fakeRPC(t, map[string]string{
		"getLatestBlockhash": `{"value": {"blockhash": "recent-hash"}}`,
		"sendTransaction":    `"tx-signature-1"`,
	})
	defer srv.Close()

	signer, err := stealth.Generate()
	require.NoError(t, err)

	client := NewRPCClient(srv.URL)
	sig, err := client.TransferTokens(context.Background(), signer.SecretKey, "dest-owner", "mint", 1234)
	require.NoError(t, err)
	assert.Equal(t, "tx-signature-1", sig)
}

func TestRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid params"}}`))
	}))
	defer srv.Close()

	client := NewRPCClient(srv.URL)
	_, err := client.LatestBlockhash(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid params")
}
