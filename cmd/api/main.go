package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/rs/cors"

	"github.com/lumeno/accounts/internal/account"
	"github.com/lumeno/accounts/internal/auth"
	"github.com/lumeno/accounts/internal/config"
	"github.com/lumeno/accounts/internal/middleware"
	"github.com/lumeno/accounts/internal/router"
	"github.com/lumeno/accounts/internal/settings"
	"github.com/lumeno/accounts/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// The store client dials lazily on first use; a dead backend at boot
	// surfaces as 503s, not a crashed process.
	storeClient := store.NewClient(store.Options{
		Host:          cfg.StoreHost,
		Port:          cfg.StorePort,
		DB:            cfg.StoreDB,
		DialTimeout:   cfg.StoreDialTimeout,
		SocketTimeout: cfg.StoreSocketTimeout,
		TLS:           cfg.StoreTLS,
	}, logger)

	tokens, err := auth.NewTokens(cfg.TokenSecret, cfg.TokenAlgorithm)
	if err != nil {
		slog.Error("Invalid token configuration", "error", err)
		os.Exit(1)
	}

	accountRepo := account.NewRepository(storeClient)
	settingsRepo := settings.NewRepository(storeClient)

	authSvc := auth.NewService(accountRepo, tokens)
	authHandler := auth.NewHandler(authSvc, logger)
	accountHandler := account.NewHandler(accountRepo, logger)
	settingsHandler := settings.NewHandler(settingsRepo, logger)

	mux := router.New(authHandler, accountHandler, settingsHandler, tokens)

	handler := middleware.RequestLogger(logger)(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(mux))

	slog.Info("Starting HTTP server", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}
