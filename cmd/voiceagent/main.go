// Voiceagent is a voice conversation service that transcribes audio input,
// generates an LLM response conditioned on the session history, and voices
// the response back as audio.
//
// Usage:
//
//	voiceagent [flags]
//	voiceagent --config /path/to/voiceagent.yaml
//
// @title       Voiceagent API
// @version     1.0
// @description Voice conversation pipeline: speech to text, LLM response, text to speech.
// @BasePath    /
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/nadzzz/voiceagent/docs"
	"github.com/nadzzz/voiceagent/internal/agent"
	"github.com/nadzzz/voiceagent/internal/config"
	"github.com/nadzzz/voiceagent/internal/conversation"
	"github.com/nadzzz/voiceagent/internal/health"
	"github.com/nadzzz/voiceagent/internal/llm/gemini"
	"github.com/nadzzz/voiceagent/internal/stt/assemblyai"
	httptransport "github.com/nadzzz/voiceagent/internal/transport/http"
	"github.com/nadzzz/voiceagent/internal/tts/murf"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/voiceagent.local.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("voiceagent %s\n", version)
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("voiceagent starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize the vendor gateways. Unconfigured gateways are wired in
	// anyway: the pipeline degrades per request instead of refusing to boot.
	sttSvc := assemblyai.New(cfg.STT)
	llmSvc := gemini.New(cfg.LLM)
	ttsSvc := murf.New(cfg.TTS)

	for name, configured := range map[string]bool{
		"stt": sttSvc.Configured(),
		"llm": llmSvc.Configured(),
		"tts": ttsSvc.Configured(),
	} {
		if !configured {
			slog.Warn("service not configured, requests will degrade", "service", name)
		}
	}

	// Create the orchestrator over an in-memory session store.
	ag := agent.New(sttSvc, llmSvc, ttsSvc, conversation.NewStore())

	// Start health check servers.
	healthServer := health.New(cfg.Server.HealthPort, health.Probes{
		Services: ag.Configured,
		Stats:    ag.Sessions().Stats,
	})
	grpcHealth := health.NewGRPC(cfg.Server.GRPCHealthPort)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := grpcHealth.ListenAndServe(ctx); err != nil {
			slog.Error("grpc health server failed", "error", err)
		}
	}()

	// Start the API server.
	api := httptransport.New(cfg, ag, sttSvc, ttsSvc)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := api.Listen(ctx); err != nil {
			slog.Error("api server failed", "error", err)
		}
	}()

	healthServer.SetReady(true)
	grpcHealth.SetReady(true)
	slog.Info("voiceagent ready",
		"port", cfg.Server.Port,
		"health_port", cfg.Server.HealthPort)

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")

	healthServer.SetReady(false)
	grpcHealth.SetReady(false)
	if err := api.Close(); err != nil {
		slog.Error("api close error", "error", err)
	}

	wg.Wait()
	slog.Info("voiceagent stopped")
}
