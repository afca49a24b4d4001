package chain

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mr-tron/base58"
)

// RPCClient implements Client over the ledger's JSON-RPC HTTP endpoint.
type RPCClient struct {
	endpoint string
	http     *http.Client
}

// NewRPCClient creates a client for the given JSON-RPC endpoint.
func NewRPCClient(endpoint string) *RPCClient {
	return &RPCClient{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call performs one JSON-RPC round trip and decodes result into out.
func (c *RPCClient) call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", method, res.StatusCode)
	}

	var rpcRes rpcResponse
	if err := json.NewDecoder(res.Body).Decode(&rpcRes); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if rpcRes.Error != nil {
		return fmt.Errorf("%s: rpc error %d: %s", method, rpcRes.Error.Code, rpcRes.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(rpcRes.Result, out); err != nil {
			return fmt.Errorf("unmarshal %s result: %w", method, err)
		}
	}
	return nil
}

// GetTransaction fetches a confirmed transaction with its balance deltas.
func (c *RPCClient) GetTransaction(ctx context.Context, signature string) (*TransactionInfo, error) {
	var result *struct {
		Slot uint64 `json:"slot"`
		Meta struct {
			Err          any      `json:"err"`
			PreBalances  []uint64 `json:"preBalances"`
			PostBalances []uint64 `json:"postBalances"`
		} `json:"meta"`
		Transaction struct {
			Message struct {
				AccountKeys []string `json:"accountKeys"`
			} `json:"message"`
		} `json:"transaction"`
	}
	params := []any{signature, map[string]any{"commitment": "confirmed", "maxSupportedTransactionVersion": 0}}
	if err := c.call(ctx, "getTransaction", params, &result); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrTxNotFound
	}
	return &TransactionInfo{
		Signature:    signature,
		Slot:         result.Slot,
		Failed:       result.Meta.Err != nil,
		AccountKeys:  result.Transaction.Message.AccountKeys,
		PreBalances:  result.Meta.PreBalances,
		PostBalances: result.Meta.PostBalances,
	}, nil
}

// GetTokenBalance reads owner's balance for mint; no token account reads
// as zero.
func (c *RPCClient) GetTokenBalance(ctx context.Context, owner, mint string) (uint64, error) {
	var result struct {
		Value []struct {
			Account struct {
				Data struct {
					Parsed struct {
						Info struct {
							TokenAmount struct {
								Amount string `json:"amount"`
							} `json:"tokenAmount"`
						} `json:"info"`
					} `json:"parsed"`
				} `json:"data"`
			} `json:"account"`
		} `json:"value"`
	}
	params := []any{owner, map[string]any{"mint": mint}, map[string]any{"encoding": "jsonParsed", "commitment": "confirmed"}}
	if err := c.call(ctx, "getTokenAccountsByOwner", params, &result); err != nil {
		return 0, err
	}

	var total uint64
	for _, v := range result.Value {
		raw := v.Account.Data.Parsed.Info.TokenAmount.Amount
		amount, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse token amount %q: %w", raw, err)
		}
		total += amount
	}
	return total, nil
}

// LatestBlockhash returns the current recency marker.
func (c *RPCClient) LatestBlockhash(ctx context.Context) (string, error) {
	var result struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}
	params := []any{map[string]any{"commitment": "confirmed"}}
	if err := c.call(ctx, "getLatestBlockhash", params, &result); err != nil {
		return "", err
	}
	return result.Value.Blockhash, nil
}

// signedMessage is the canonical payload signed by the custodial key for
// transfers and account creation.
type signedMessage struct {
	Blockhash string `json:"blockhash"`
	From      string `json:"from"`
	To        string `json:"to"`
	Mint      string `json:"mint,omitempty"`
	Amount    uint64 `json:"amount,omitempty"`
	Kind      string `json:"kind"`
}

// signAndSend signs msg with the signer's key and submits it.
func (c *RPCClient) signAndSend(ctx context.Context, signerSecret string, msg signedMessage) (string, error) {
	priv, pub, err := decodeSigner(signerSecret)
	if err != nil {
		return "", err
	}
	msg.From = pub

	raw, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}
	sig := ed25519.Sign(priv, raw)

	envelope := map[string]string{
		"message":   base64.StdEncoding.EncodeToString(raw),
		"signature": base58.Encode(sig),
		"signer":    pub,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}

	var txSig string
	params := []any{base64.StdEncoding.EncodeToString(payload), map[string]any{"encoding": "base64", "preflightCommitment": "confirmed"}}
	if err := c.call(ctx, "sendTransaction", params, &txSig); err != nil {
		return "", err
	}
	return txSig, nil
}

// EnsureTokenAccount creates owner's receiving slot for mint if absent.
func (c *RPCClient) EnsureTokenAccount(ctx context.Context, signerSecret, owner, mint string) error {
	balanceKnown, err := c.hasTokenAccount(ctx, owner, mint)
	if err != nil {
		return err
	}
	if balanceKnown {
		return nil
	}

	blockhash, err := c.LatestBlockhash(ctx)
	if err != nil {
		return err
	}
	_, err = c.signAndSend(ctx, signerSecret, signedMessage{
		Blockhash: blockhash,
		To:        owner,
		Mint:      mint,
		Kind:      "createTokenAccount",
	})
	return err
}

func (c *RPCClient) hasTokenAccount(ctx context.Context, owner, mint string) (bool, error) {
	var result struct {
		Value []json.RawMessage `json:"value"`
	}
	params := []any{owner, map[string]any{"mint": mint}, map[string]any{"encoding": "jsonParsed"}}
	if err := c.call(ctx, "getTokenAccountsByOwner", params, &result); err != nil {
		return false, err
	}
	return len(result.Value) > 0, nil
}

// TransferTokens moves tokens from the signer to destination, signing with
// a fresh recency marker.
func (c *RPCClient) TransferTokens(ctx context.Context, signerSecret, destination, mint string, amount uint64) (string, error) {
	blockhash, err := c.LatestBlockhash(ctx)
	if err != nil {
		return "", err
	}
	return c.signAndSend(ctx, signerSecret, signedMessage{
		Blockhash: blockhash,
		To:        destination,
		Mint:      mint,
		Amount:    amount,
		Kind:      "tokenTransfer",
	})
}

// SubmitTransaction submits an externally built transaction, countersigning
// with the signer when a secret is supplied.
func (c *RPCClient) SubmitTransaction(ctx context.Context, signerSecret, payload string) (string, error) {
	if signerSecret != "" {
		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", fmt.Errorf("decode payload: %w", err)
		}
		priv, pub, err := decodeSigner(signerSecret)
		if err != nil {
			return "", err
		}
		sig := ed25519.Sign(priv, raw)
		envelope := map[string]string{
			"message":   payload,
			"signature": base58.Encode(sig),
			"signer":    pub,
		}
		enriched, err := json.Marshal(envelope)
		if err != nil {
			return "", fmt.Errorf("marshal envelope: %w", err)
		}
		payload = base64.StdEncoding.EncodeToString(enriched)
	}

	var txSig string
	params := []any{payload, map[string]any{"encoding": "base64", "preflightCommitment": "confirmed"}}
	if err := c.call(ctx, "sendTransaction", params, &txSig); err != nil {
		return "", err
	}
	return txSig, nil
}

// decodeSigner expands a base58 secret key into its keypair.
func decodeSigner(secret string) (ed25519.PrivateKey, string, error) {
	raw, err := base58.Decode(secret)
	if err != nil {
		return nil, "", fmt.Errorf("decode signer secret: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, "", fmt.Errorf("signer secret is %d bytes, want %d", len(raw), ed25519.PrivateKeySize)
	}
	priv := ed25519.PrivateKey(raw)
	pub := priv.Public().(ed25519.PublicKey)
	return priv, base58.Encode(pub), nil
}
