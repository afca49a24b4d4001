// Package main initializes and starts the dara relayer and ledger server,
// setting up configuration, logging, the database, repositories, services,
// the relayer pipeline, and HTTP routing.
package main

import (
	"cmp"
	"fmt"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/daralabs/dara/internal/chain"
	"github.com/daralabs/dara/internal/config"
	"github.com/daralabs/dara/internal/db"
	"github.com/daralabs/dara/internal/launcher"
	"github.com/daralabs/dara/internal/logger"
	"github.com/daralabs/dara/internal/relayer"
	"github.com/daralabs/dara/internal/repository"
	"github.com/daralabs/dara/internal/server/handler/http"
	"github.com/daralabs/dara/internal/service"
	"github.com/daralabs/dara/internal/settlement"
	"github.com/daralabs/dara/internal/swapapi"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options := config.Parse()

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Ledger repositories and services.
	presaleRepo := repository.NewPostgresPresaleRepository(postgresDB)
	darkPoolRepo := repository.NewPostgresDarkPoolRepository(postgresDB)

	presaleService := service.NewPresaleService(presaleRepo, nil)
	darkPoolService := service.NewDarkPoolService(darkPoolRepo, nil)

	// Relayer pipeline over the custodial signer.
	signer, err := relayer.NewSigner(options.SignerSecret)
	if err != nil {
		zapLogger.Fatal("cannot load relayer signer", zap.Error(err))
	}

	rpcClient := chain.NewRPCClient(options.RPCURL)
	swapClient := swapapi.NewClient(options.QuoteURL, options.SwapURL)
	launchClient := launcher.NewClient(options.LauncherURL, options.LauncherAPIKey)
	settler := settlement.NewEngine(rpcClient, zapLogger)

	orchestrator := relayer.NewOrchestrator(rpcClient, swapClient, launchClient, settler, signer, zapLogger)

	// HTTP handlers and router.
	presaleHandler := &http.PresaleHandler{PresaleService: presaleService}
	darkPoolHandler := &http.DarkPoolHandler{DarkPoolService: darkPoolService}
	swapHandler := &http.SwapHandler{QuoteService: swapClient, Orchestrator: orchestrator}
	launchHandler := &http.LaunchHandler{Orchestrator: orchestrator}

	router := http.NewRouter(presaleHandler, darkPoolHandler, swapHandler, launchHandler, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Port,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server",
		zap.String("addr", options.Port),
		zap.String("relayer", signer.PublicKey()),
	)
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
