package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deliveryfood/config"
	"deliveryfood/events"
	"deliveryfood/handlers"
	"deliveryfood/logger"
	"deliveryfood/routes"
	"deliveryfood/telemetry"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Telemetry.ServiceName, cfg.Log.Level)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()
	gin.SetMode(cfg.Server.Mode)

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName, handlers.Version)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metrics, shutdownMeter, err := telemetry.InitMeterProvider(cfg.Telemetry.ServiceName, handlers.Version)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := config.InitDB(cfg.Database, log); err != nil {
		return err
	}
	if err := config.SeedAdmin(config.DB, cfg.Auth, log); err != nil {
		return err
	}

	publisher, err := events.New(cfg.Events, log)
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()

	handlers.Configure(handlers.Deps{
		Events:      publisher,
		Logger:      log,
		DeliveryFee: cfg.Delivery.Fee,
		UploadDir:   cfg.Server.UploadDir,
	})

	router := routes.NewRouter(log, metrics)
	server := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: otelhttp.NewHandler(router, cfg.Telemetry.ServiceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting delivery server", "port", cfg.Server.Port, "db_driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-errCh:
		return err
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
