package commands

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nadzzz/mandirate/internal/health"
	"github.com/nadzzz/mandirate/internal/lang"
	"github.com/nadzzz/mandirate/internal/livefeed"
	"github.com/nadzzz/mandirate/internal/session"
	"github.com/nadzzz/mandirate/internal/transport"
	grpctransport "github.com/nadzzz/mandirate/internal/transport/grpc"
	httptransport "github.com/nadzzz/mandirate/internal/transport/http"
	mqtttransport "github.com/nadzzz/mandirate/internal/transport/mqtt"
)

func serveCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the price assistant daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(version)
		},
	}
}

func serve(version string) error {
	slog.Info("mandirate starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	eng := newEngine()
	defaultLang := lang.Resolve(cfg.Engine.DefaultLanguage, lang.Default)
	gateway := session.NewGateway(eng.dispatcher.Handle, defaultLang)
	feed := newFeed(cfg.LiveFeed)

	// Initialize enabled transports.
	var transports []transport.Transport

	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port, gateway))
	}
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP.Port, gateway, feed, cfg.LiveFeed.ListingLimit))
	}
	if cfg.Transports.MQTT.Enabled {
		transports = append(transports, mqtttransport.New(cfg.Transports.MQTT, gateway))
	}

	if len(transports) == 0 {
		slog.Error("no transports enabled, enable at least one in config")
		return errors.New("no transports enabled")
	}

	var wg sync.WaitGroup

	// Keep catalog prices in step with the live source.
	if cfg.LiveFeed.Enabled {
		refresher := livefeed.NewRefresher(feed, eng.matcher, eng.prices,
			cfg.LiveFeed.ListingLimit, cfg.LiveFeed.RefreshInterval)
		wg.Add(1)
		go func() {
			defer wg.Done()
			refresher.Run(ctx)
		}()
	}

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort, func() health.Status {
		return health.Status{
			Prices:   string(eng.prices.Load().Provenance()),
			Sessions: gateway.Active(),
		}
	})
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	// Start all transports.
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
			}
		}(t)
	}

	// Mark as ready once all transports are started.
	healthServer.SetReady(true)
	slog.Info("mandirate ready",
		"transports", len(transports),
		"default_language", defaultLang,
		"health_port", cfg.Server.HealthPort)

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")
	healthServer.SetReady(false)

	// Close all transports gracefully.
	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("mandirate stopped")
	return nil
}
