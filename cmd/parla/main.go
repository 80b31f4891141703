package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/antoniostano/parla/internal/brain"
	"github.com/antoniostano/parla/internal/config"
	"github.com/antoniostano/parla/internal/history"
	"github.com/antoniostano/parla/internal/httpapi"
	"github.com/antoniostano/parla/internal/observability"
	"github.com/antoniostano/parla/internal/pipeline"
	"github.com/antoniostano/parla/internal/session"
	"github.com/antoniostano/parla/internal/speech"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := history.NewStore(ctx, cfg.DatabaseURL, cfg.HistoryLimit)
	if err != nil {
		log.Fatalf("history store init failed: %v", err)
	}
	defer store.Close()

	adapter, err := brain.NewAdapter(ctx, brain.Config{
		Mode:    cfg.BrainMode,
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		HTTPURL: cfg.BrainHTTPURL,
	})
	if err != nil {
		log.Fatalf("brain adapter init failed: %v", err)
	}

	var (
		recognizer  speech.Recognizer
		synthesizer speech.Synthesizer
	)
	switch cfg.SpeechProvider {
	case "mock":
		recognizer = speech.NewMockRecognizer("")
		synthesizer = speech.NewMockSynthesizer()
		log.Printf("speech provider: mock")
	default:
		// Browsers bring their own speech capabilities through the embedded
		// UI; the server side stays text-only unless a provider is set.
		log.Printf("speech provider: none (text-only)")
	}

	sessions := session.NewManager(cfg.SessionInactivityTimeout)
	sessions.SetExpireHook(func(_ *session.Session) {
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
	})

	pipe := pipeline.New(sessions, adapter, store, metrics, cfg.HistoryLimit)

	api := httpapi.New(cfg, sessions, pipe, metrics, recognizer, synthesizer)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, 5*time.Second)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
