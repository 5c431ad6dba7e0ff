package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/antoniostano/coldcall/internal/brain"
	"github.com/antoniostano/coldcall/internal/campaign"
	"github.com/antoniostano/coldcall/internal/config"
	"github.com/antoniostano/coldcall/internal/dialog"
	"github.com/antoniostano/coldcall/internal/httpapi"
	"github.com/antoniostano/coldcall/internal/observability"
	"github.com/antoniostano/coldcall/internal/session"
	"github.com/antoniostano/coldcall/internal/speech"
	"github.com/antoniostano/coldcall/internal/telephony"
)

func main() {
	// Local development keeps credentials in a .env file; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	campaigns, err := campaign.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("campaign store init failed: %v", err)
	}
	defer campaigns.Close()

	adapter, err := brain.NewAdapter(brain.Config{
		Mode:    cfg.BrainMode,
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.BrainCallTimeout,
	})
	if err != nil {
		log.Fatalf("brain adapter init failed: %v", err)
	}

	var synth speech.Synthesizer
	if strings.TrimSpace(cfg.ElevenLabsAPIKey) != "" {
		s, err := speech.NewElevenLabsSynthesizer(speech.ElevenLabsConfig{
			APIKey:   cfg.ElevenLabsAPIKey,
			BaseURL:  cfg.ElevenLabsBaseURL,
			VoiceID:  cfg.ElevenLabsVoiceID,
			ModelID:  cfg.ElevenLabsModelID,
			AudioDir: cfg.AudioDir,
		})
		if err != nil {
			log.Fatalf("speech synthesizer init failed: %v", err)
		}
		synth = s
		log.Printf("speech synthesizer: elevenlabs (voice %s)", cfg.ElevenLabsVoiceID)
	} else {
		synth = speech.NewMockSynthesizer()
		log.Printf("speech synthesizer: mock (no elevenlabs key)")
	}
	synth = speech.NewLogger(synth, cfg.SpeechLogPath)

	sessions := session.NewManager(cfg.CallIdleTimeout)
	sessions.SetExpireHook(func(s *session.Session) {
		log.Printf("call %s evicted after inactivity", s.CallSID)
		metrics.CallOutcomes.WithLabelValues("expired").Inc()
		metrics.ActiveCalls.Set(float64(sessions.ActiveCount()))
	})

	orchestrator := dialog.NewOrchestrator(
		sessions,
		campaigns,
		adapter,
		synth,
		metrics,
		cfg.PublicURL,
		cfg.GatherTimeout,
		cfg.GatherSpeechTimeout,
	)

	var initiator httpapi.CallInitiator
	if strings.TrimSpace(cfg.TwilioAccountSID) != "" {
		client, err := telephony.NewClient(telephony.Config{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			From:       cfg.TwilioPhoneNumber,
			BaseURL:    cfg.TwilioBaseURL,
		})
		if err != nil {
			log.Fatalf("telephony client init failed: %v", err)
		}
		initiator = client
	} else {
		log.Printf("telephony provider not configured; outbound calls disabled")
	}

	api := httpapi.New(cfg, campaigns, orchestrator, initiator, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, 30*time.Second)

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
