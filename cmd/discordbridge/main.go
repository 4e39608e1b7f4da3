package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/gorilla/mux"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"

	"discordbridge/clients/discord"
	"discordbridge/clients/webhook"
	"discordbridge/config"
	"discordbridge/core"
	"discordbridge/core/log"
	"discordbridge/core/tracing"
	"discordbridge/handlers"
	"discordbridge/observability"
	"discordbridge/services/payload"
	"discordbridge/services/responder"
	"discordbridge/usecases/forwarder"
)

type Options struct {
	EnvFiles []string `long:"env-file" description:"Load environment variables from this file (repeatable, defaults to .env)"`
	LogLevel string   `long:"log-level" description:"Override LOG_LEVEL (error, warn, info, debug, trace)"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Fatal error: %v\n", err)
		if !core.IsRecoverable(err) {
			fmt.Fprintf(os.Stderr, "Set DISCORD_BOT_TOKEN (or BOT_TOKEN) in the environment or an --env-file\n")
		}
		os.Exit(1)
	}
}

func run(opts Options) error {
	cfg, err := config.LoadConfig(opts.EnvFiles...)
	if err != nil {
		return err
	}

	log.SetFormat(cfg.IsProduction())
	log.SetLevel(cfg.LogLevel)
	if opts.LogLevel != "" {
		level, err := log.ParseLevel(opts.LogLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)
	}

	ctx := context.Background()
	tracerProvider, shutdownTracing, err := tracing.Setup(ctx, cfg.TracingConfig)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error("❌ Failed to flush traces", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	session, err := discord.NewSession(cfg.DiscordConfig.BotToken, cfg.DiscordConfig.MessageCacheSize)
	if err != nil {
		return err
	}

	validator, err := responder.NewValidator(cfg.ResponseValidation)
	if err != nil {
		return err
	}

	webhookClient := webhook.NewWebhookClient(&http.Client{Timeout: cfg.WebhookConfig.Timeout})
	discordClient := discord.NewDiscordClient(session)
	sender := responder.NewResponder(discordClient, webhookClient, tracerProvider, metrics)
	webhookForwarder := forwarder.NewWebhookForwarder(
		cfg.WebhookConfig,
		webhookClient,
		sender,
		validator,
		payload.NewStateDirectory(session.State),
		tracerProvider,
		metrics,
	)

	var pool *workerpool.WorkerPool
	if cfg.MaxConcurrentForwards > 0 {
		pool = workerpool.New(cfg.MaxConcurrentForwards)
		log.Info("🧵 Capping concurrent forwards", "max", cfg.MaxConcurrentForwards)
	}

	eventsHandler := handlers.NewDiscordEventsHandler(webhookForwarder, pool, metrics)
	eventsHandler.SetupClient(session)
	eventsHandler.SetupLifecycleLogging(session)

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	log.Info("🤖 Discord bridge is now running and listening for events")

	var server *http.Server
	if cfg.HealthPort != "" {
		router := mux.NewRouter()
		healthHandler := handlers.NewHealthHandler(
			func() bool { return discord.IsConnected(session) },
			cfg.WebhookConfig.IsConfigured(),
			registry,
		)
		healthHandler.SetupEndpoints(router)

		server = &http.Server{
			Addr:              ":" + cfg.HealthPort,
			Handler:           router,
			ReadHeaderTimeout: 30 * time.Second,
		}
	}

	return handleGracefulShutdown(server, func() {
		if err := session.Close(); err != nil {
			log.Error("❌ Failed to close Discord session", "error", err)
		}
		eventsHandler.Stop()
	})
}

func handleGracefulShutdown(server *http.Server, cleanup func()) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	if server != nil {
		go func() {
			log.Info("✅ Health server listening", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("❌ Health server error", "error", err)
			}
		}()
	}

	<-stop
	log.Info("🛑 Shutdown signal received, cleaning up...")

	// Stop receiving events before draining queued forwards
	cleanup()

	if server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down health server: %w", err)
	}

	log.Info("✅ Shutdown complete")
	return nil
}
