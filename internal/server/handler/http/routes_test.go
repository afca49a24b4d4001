package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestRouter() http.Handler {
	return NewRouter(
		&PresaleHandler{PresaleService: &fakePresaleService{}},
		&DarkPoolHandler{DarkPoolService: &fakeDarkPoolService{}},
		&SwapHandler{QuoteService: &fakeQuoteService{}, Orchestrator: &fakeOrchestrator{}},
		&LaunchHandler{Orchestrator: &fakeOrchestrator{}},
		zap.NewNop(),
	)
}

func TestRouterRejectsNonJSON(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/presale/commit", strings.NewReader("mint=abc"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestRouterServesListWithoutBody(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/presales", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterUnknownRoute(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/unknown", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
