package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vulpescelare/cortex-engine/internal/api"
	"github.com/vulpescelare/cortex-engine/internal/config"
	"github.com/vulpescelare/cortex-engine/internal/engine"
	"github.com/vulpescelare/cortex-engine/internal/loader"
	"github.com/vulpescelare/cortex-engine/internal/metrics"
	"github.com/vulpescelare/cortex-engine/internal/tasks"
	"github.com/vulpescelare/cortex-engine/internal/utils"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	var configPath string
	var serve bool
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.BoolVar(&serve, "serve", false, "Process newline-delimited requests until stdin closes")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)

	advisor, err := engine.NewAdvisor(cfg.Advisories.Path, logger)
	if err != nil {
		logger.Error("failed to load advisory pack", slog.String("path", cfg.Advisories.Path), slog.Any("error", err))
		os.Exit(1)
	}

	service := tasks.NewService(
		logger,
		loader.New(cfg.Loader.HTTPTimeout, cfg.Loader.SQLiteTable, logger),
		engine.NewAggregator(logger),
		engine.NewCalibrator(logger),
		advisor,
		resolveCapabilities(cfg, advisor != nil),
		tasks.Defaults{
			LookbackDays:      cfg.Analysis.LookbackDays,
			TargetSensitivity: cfg.Analysis.TargetSensitivity,
			ModelDir:          cfg.Store.ModelDir,
		},
		version,
	)
	bridge := api.NewBridge(service, logger, os.Stdin, os.Stdout)

	if !serve {
		if err := bridge.RunOnce(context.Background()); err != nil {
			logger.Error("bridge failed", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	runServe(cfg, logger, bridge)
}

// runServe keeps the bridge alive on stdin and raises the observability
// listeners around it.
func runServe(cfg *config.Config, logger *slog.Logger, bridge *api.Bridge) {
	logger.Info("starting cortex-engine", slog.String("version", version), slog.String("health", cfg.Server.HealthAddress))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	healthServer, err := api.NewHealthServer(cfg.Server)
	if err != nil {
		logger.Error("failed to create health server", slog.Any("error", err))
		os.Exit(1)
	}
	go func() {
		if serveErr := healthServer.Start(); serveErr != nil {
			logger.Error("health server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	go func() {
		if err := bridge.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("bridge exited", slog.Any("error", err))
		}
		// stdin closed: the caller is done with this process.
		stop()
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	healthServer.Shutdown(shutdownCtx)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("cortex-engine stopped")
}

// resolveCapabilities probes the environment exactly once; handlers receive
// the flags and never touch the filesystem for them again.
func resolveCapabilities(cfg *config.Config, advisoryLoaded bool) tasks.Capabilities {
	modelStore := false
	if info, err := os.Stat(cfg.Store.ModelDir); err == nil && info.IsDir() {
		modelStore = true
	}

	exporter := false
	if _, err := os.Stat(filepath.Join(cfg.Store.ModelDir, "onnx-exporter")); err == nil {
		exporter = true
	}

	return tasks.Capabilities{
		SQLiteDriver: loader.SQLiteAvailable(),
		ModelStore:   modelStore,
		AdvisoryPack: advisoryLoaded,
		ONNXExporter: exporter,
	}
}
