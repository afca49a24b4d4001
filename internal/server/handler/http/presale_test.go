package http

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daralabs/dara/internal/commitment"
	"github.com/daralabs/dara/internal/models"
	"github.com/daralabs/dara/internal/service"
)

type fakePresaleService struct {
	presale    *models.Presale
	commitment *models.Commitment
	views      []service.PresaleView
	tokens     uint64
	err        error

	gotHash   [32]byte
	gotSecret [commitment.SecretSize]byte
	gotDest   string
}

func (f *fakePresaleService) Initialize(ctx context.Context, creator, mint string, hardCap, tokensForSale uint64, startTime, endTime int64) (*models.Presale, error) {
	return f.presale, f.err
}

func (f *fakePresaleService) List(ctx context.Context) ([]service.PresaleView, error) {
	return f.views, f.err
}

func (f *fakePresaleService) Commit(ctx context.Context, mint, creator string, hash [32]byte, amount uint64, participant string) (*models.Commitment, error) {
	f.gotHash = hash
	return f.commitment, f.err
}

func (f *fakePresaleService) Finalize(ctx context.Context, mint, creator, caller string) (*models.Presale, error) {
	return f.presale, f.err
}

func (f *fakePresaleService) Claim(ctx context.Context, mint, creator string, secret [commitment.SecretSize]byte, destination string) (uint64, error) {
	f.gotSecret = secret
	f.gotDest = destination
	return f.tokens, f.err
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestPresaleInitialize(t *testing.T) {
	svc := &fakePresaleService{presale: &models.Presale{ID: "p1", Mint: "mint", Creator: "creator", HardCap: 1000}}
	h := &PresaleHandler{PresaleService: svc}

	w := postJSON(t, h.Initialize, InitializeRequest{
		Creator: "creator", Mint: "mint", HardCap: 1000, TokensForSale: 500, StartTime: 10, EndTime: 20,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var got models.Presale
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "p1", got.ID)
}

func TestPresaleInitializeInvalidTimeRange(t *testing.T) {
	svc := &fakePresaleService{err: models.ErrInvalidTimeRange}
	h := &PresaleHandler{PresaleService: svc}

	w := postJSON(t, h.Initialize, InitializeRequest{Creator: "c", Mint: "m", HardCap: 1, TokensForSale: 1, StartTime: 20, EndTime: 10})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Contains(t, body["error"], "time range")
}

func TestPresaleInitializeBadBody(t *testing.T) {
	h := &PresaleHandler{PresaleService: &fakePresaleService{}}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	h.Initialize(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPresaleCommit(t *testing.T) {
	secret, err := commitment.NewSecret()
	require.NoError(t, err)
	hash := commitment.Hash(secret, []byte("claim-wallet"))

	svc := &fakePresaleService{commitment: &models.Commitment{PresaleID: "p1", Hash: hash, Amount: 500}}
	h := &PresaleHandler{PresaleService: svc}

	w := postJSON(t, h.Commit, CommitRequest{
		Mint: "mint", Creator: "creator",
		Hash:        hex.EncodeToString(hash[:]),
		Amount:      500,
		Participant: "burner",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, hash, svc.gotHash, "hash must reach the service undamaged")
}

func TestPresaleCommitRejectsShortHash(t *testing.T) {
	h := &PresaleHandler{PresaleService: &fakePresaleService{}}

	w := postJSON(t, h.Commit, CommitRequest{Mint: "m", Creator: "c", Hash: "abcd", Amount: 1})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPresaleCommitHardCapExceeded(t *testing.T) {
	svc := &fakePresaleService{err: models.ErrHardCapExceeded}
	h := &PresaleHandler{PresaleService: svc}

	hash := make([]byte, 32)
	w := postJSON(t, h.Commit, CommitRequest{Mint: "m", Creator: "c", Hash: hex.EncodeToString(hash), Amount: 1})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPresaleFinalizeUnauthorized(t *testing.T) {
	svc := &fakePresaleService{err: models.ErrUnauthorized}
	h := &PresaleHandler{PresaleService: svc}

	w := postJSON(t, h.Finalize, FinalizeRequest{Mint: "m", Creator: "c", Caller: "stranger"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPresaleClaim(t *testing.T) {
	secret, err := commitment.NewSecret()
	require.NoError(t, err)

	svc := &fakePresaleService{tokens: 250_000_000}
	h := &PresaleHandler{PresaleService: svc}

	w := postJSON(t, h.Claim, ClaimRequest{
		Mint: "mint", Creator: "creator",
		Secret:      hex.EncodeToString(secret[:]),
		Destination: "claim-wallet",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp ClaimResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, uint64(250_000_000), resp.Tokens)
	assert.Equal(t, "claim-wallet", resp.Destination)
	assert.Equal(t, secret, svc.gotSecret)
	assert.Equal(t, "claim-wallet", svc.gotDest)
}

func TestPresaleClaimInvalidProof(t *testing.T) {
	svc := &fakePresaleService{err: models.ErrInvalidProof}
	h := &PresaleHandler{PresaleService: svc}

	secret := make([]byte, commitment.SecretSize)
	w := postJSON(t, h.Claim, ClaimRequest{Mint: "m", Creator: "c", Secret: hex.EncodeToString(secret), Destination: "d"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPresaleList(t *testing.T) {
	svc := &fakePresaleService{views: []service.PresaleView{
		{Presale: models.Presale{ID: "p1"}, StatusText: "open"},
		{Presale: models.Presale{ID: "p2"}, StatusText: "finalized"},
	}}
	h := &PresaleHandler{PresaleService: svc}

	req := httptest.NewRequest(http.MethodGet, "/api/presales", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []service.PresaleView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, "open", got[0].StatusText)
}
