package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/proveit-app/proveit/app/analytics"
	"github.com/proveit-app/proveit/app/api"
	"github.com/proveit-app/proveit/app/cfg"
	"github.com/proveit-app/proveit/app/headlines"
	"github.com/proveit-app/proveit/app/report"
	"github.com/proveit-app/proveit/app/sources"
	"github.com/proveit-app/proveit/app/store"
	"github.com/proveit-app/proveit/app/verdict"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("Starting ProveIt server", "version", appCfg.Version)

	db, err := store.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := store.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	registry := sources.NewRegistry(appCfg.SourcesFile)
	if err := registry.Run(); err != nil {
		slog.Error("Failed to load source registry", "path", appCfg.SourcesFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Source registry loaded", "sources", registry.Count())

	tracker, err := analytics.NewTracker(store.NewSQLiteStore(db), store.NewObfuscatingCodec(), registry)
	if err != nil {
		slog.Error("Failed to initialize tracker", "error", err)
		os.Exit(1)
	}
	slog.Info("Reading history loaded", "events", len(tracker.Events()))

	porter := report.NewPorter(tracker)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	headlinesSvc := headlines.NewService(httpClient, registry, appCfg.UserAgent)
	verdictClient := verdict.NewClient(httpClient, appCfg.GenAIURL, appCfg.GenAIKey, appCfg.UserAgent)
	if !verdictClient.Enabled() {
		slog.Warn("Verdict checking disabled (GENAI_KEY not set)")
	}

	apiHandler := api.NewHandler(tracker, porter, headlinesSvc, verdictClient, registry)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		slog.Info("Endpoints",
			"track", fmt.Sprintf("http://localhost:%s/api/track", appCfg.Port),
			"stats", fmt.Sprintf("http://localhost:%s/api/stats", appCfg.Port),
			"report", fmt.Sprintf("http://localhost:%s/api/report", appCfg.Port),
			"health", fmt.Sprintf("http://localhost:%s/health", appCfg.Port),
		)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
