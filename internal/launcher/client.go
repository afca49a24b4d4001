// Package launcher is the client for the external token-deploy service.
// The service mints the token off-process and returns a signed deploy
// transaction for the relayer to broadcast.
package launcher

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// TokenMetadata is the human-readable sale description forwarded to the
// deploy service. Persistence of this metadata is the service's concern,
// not the ledger's.
type TokenMetadata struct {
	Name        string
	Symbol      string
	Description string
	ImageURL    string
	Twitter     string
	Telegram    string
}

// Deployment is the service's response: the new mint and the signed
// transaction that creates it.
type Deployment struct {
	MintAddress       string `json:"mintAddress"`
	SignedTransaction string `json:"signedTransaction"`
}

// placeholderPNG is a 1x1 transparent image used when no token image can
// be fetched; the deploy service rejects submissions without one.
var placeholderPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg==")

// Client talks to the token-deploy endpoint.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewClient creates a launcher client. apiKey authenticates every request.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

// fetchImage downloads the token image, falling back to the placeholder.
func (c *Client) fetchImage(ctx context.Context, imageURL string) []byte {
	if imageURL == "" {
		return placeholderPNG
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return placeholderPNG
	}
	res, err := c.http.Do(req)
	if err != nil {
		return placeholderPNG
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return placeholderPNG
	}
	img, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil || len(img) == 0 {
		return placeholderPNG
	}
	return img
}

// CreateToken submits the token metadata and returns the deployment.
func (c *Client) CreateToken(ctx context.Context, meta TokenMetadata) (*Deployment, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("launcher api key not configured")
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	fields := map[string]string{
		"tickerName":   meta.Name,
		"tickerSymbol": meta.Symbol,
		"description":  meta.Description,
		"twitterLink":  meta.Twitter,
		"telegramLink": meta.Telegram,
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write form field %s: %w", name, err)
		}
	}

	file, err := form.CreateFormFile("files", "token-image.png")
	if err != nil {
		return nil, fmt.Errorf("create image part: %w", err)
	}
	if _, err := file.Write(c.fetchImage(ctx, meta.ImageURL)); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("build deploy request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("x-api-key", c.apiKey)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deploy request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read deploy response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &apiErr)
		if apiErr.Message != "" {
			return nil, fmt.Errorf("token deploy failed: %s", apiErr.Message)
		}
		return nil, fmt.Errorf("token deploy failed: status %d", res.StatusCode)
	}

	// The service wraps the payload in a data envelope on some versions.
	var wrapped struct {
		Data *Deployment `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Data != nil && wrapped.Data.MintAddress != "" {
		return wrapped.Data, nil
	}

	var deployment Deployment
	if err := json.Unmarshal(body, &deployment); err != nil {
		return nil, fmt.Errorf("decode deploy response: %w", err)
	}
	if deployment.MintAddress == "" || deployment.SignedTransaction == "" {
		return nil, fmt.Errorf("deploy response missing mint or transaction")
	}
	return &deployment, nil
}
