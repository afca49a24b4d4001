package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/daralabs/dara/internal/middleware"
)

// NewRouter constructs the HTTP handler serving the API.
//
// Routes:
//
//	POST /api/presale/initialize  → presaleHandler.Initialize
//	POST /api/presale/commit      → presaleHandler.Commit
//	POST /api/presale/finalize    → presaleHandler.Finalize
//	POST /api/presale/claim       → presaleHandler.Claim
//	GET  /api/presales            → presaleHandler.List
//	POST /api/swap/quote          → swapHandler.Quote
//	POST /api/swap/execute        → swapHandler.Execute
//	POST /api/launch/prebuy       → launchHandler.Prebuy
//	POST /api/darkpool/initialize → darkPoolHandler.Initialize
//	POST /api/darkpool/place      → darkPoolHandler.Place
//	POST /api/darkpool/fill       → darkPoolHandler.Fill
//	POST /api/darkpool/cancel     → darkPoolHandler.Cancel
//
// Middleware chain (applied in order):
//  1. AllowContentType("application/json") — rejects non-JSON requests
//  2. WithRequestLogging(logger)           — logs incoming requests
func NewRouter(
	presaleHandler *PresaleHandler,
	darkPoolHandler *DarkPoolHandler,
	swapHandler *SwapHandler,
	launchHandler *LaunchHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		r.Route("/presale", func(r chi.Router) {
			r.Post("/initialize", presaleHandler.Initialize)
			r.Post("/commit", presaleHandler.Commit)
			r.Post("/finalize", presaleHandler.Finalize)
			r.Post("/claim", presaleHandler.Claim)
		})
		r.Get("/presales", presaleHandler.List)

		r.Route("/swap", func(r chi.Router) {
			r.Post("/quote", swapHandler.Quote)
			r.Post("/execute", swapHandler.Execute)
		})

		r.Post("/launch/prebuy", launchHandler.Prebuy)

		r.Route("/darkpool", func(r chi.Router) {
			r.Post("/initialize", darkPoolHandler.Initialize)
			r.Post("/place", darkPoolHandler.Place)
			r.Post("/fill", darkPoolHandler.Fill)
			r.Post("/cancel", darkPoolHandler.Cancel)
		})
	})

	return r
}
