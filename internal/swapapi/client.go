// Package swapapi is the client for the external quote/swap service. The
// service is a black box with a documented request/response contract; quote
// failures are returned to the caller without internal retries.
package swapapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ErrQuoteUnavailable reports a non-2xx response from the quote endpoint.
var ErrQuoteUnavailable = errors.New("quote unavailable")

// DefaultSlippageBps is applied when the caller does not specify a
// slippage tolerance.
const DefaultSlippageBps = 300

// Quote is the priced route returned by the swap service.
type Quote struct {
	InputMint            string          `json:"inputMint"`
	OutputMint           string          `json:"outputMint"`
	InAmount             string          `json:"inAmount"`
	OutAmount            string          `json:"outAmount"`
	OtherAmountThreshold string          `json:"otherAmountThreshold"`
	SwapMode             string          `json:"swapMode"`
	SlippageBps          int             `json:"slippageBps"`
	PriceImpactPct       decimal.Decimal `json:"priceImpactPct"`
	RoutePlan            json.RawMessage `json:"routePlan"`
}

// OutputAmount parses the quoted output into smallest token units.
func (q *Quote) OutputAmount() (uint64, error) {
	amount, err := strconv.ParseUint(q.OutAmount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse quote out amount %q: %w", q.OutAmount, err)
	}
	return amount, nil
}

// Client talks to the external quote and swap endpoints.
type Client struct {
	quoteURL string
	swapURL  string
	http     *http.Client
}

// NewClient creates a swap service client for the given endpoints.
func NewClient(quoteURL, swapURL string) *Client {
	return &Client{
		quoteURL: quoteURL,
		swapURL:  swapURL,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// GetQuote prices a swap of amount input units into the output token.
// slippageBps of zero falls back to DefaultSlippageBps.
func (c *Client) GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*Quote, error) {
	if slippageBps <= 0 {
		slippageBps = DefaultSlippageBps
	}

	params := url.Values{}
	params.Set("inputMint", inputMint)
	params.Set("outputMint", outputMint)
	params.Set("amount", strconv.FormatUint(amount, 10))
	params.Set("slippageBps", strconv.Itoa(slippageBps))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.quoteURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build quote request: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuoteUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", ErrQuoteUnavailable, res.StatusCode, body)
	}

	var quote Quote
	if err := json.NewDecoder(res.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	return &quote, nil
}

// SwapTransaction asks the service to build the swap transaction for
// userPublicKey and returns the serialized payload for signing.
func (c *Client) SwapTransaction(ctx context.Context, quote *Quote, userPublicKey string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"quoteResponse":             quote,
		"userPublicKey":             userPublicKey,
		"wrapAndUnwrapSol":          true,
		"dynamicComputeUnitLimit":   true,
		"prioritizationFeeLamports": "auto",
	})
	if err != nil {
		return "", fmt.Errorf("marshal swap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.swapURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build swap request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("swap request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", fmt.Errorf("swap request: status %d: %s", res.StatusCode, errBody)
	}

	var result struct {
		SwapTransaction string `json:"swapTransaction"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode swap response: %w", err)
	}
	if result.SwapTransaction == "" {
		return "", fmt.Errorf("swap response missing transaction")
	}
	return result.SwapTransaction, nil
}
