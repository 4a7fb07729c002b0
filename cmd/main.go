package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tkorhonen/opprec/internal/adapters/http/api"
	"github.com/tkorhonen/opprec/internal/adapters/http/swagger"
	"github.com/tkorhonen/opprec/internal/adapters/inference"
	app "github.com/tkorhonen/opprec/internal/app"
	"github.com/tkorhonen/opprec/internal/config"
	"github.com/tkorhonen/opprec/pkg/logger"
	"github.com/tkorhonen/opprec/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	gateway, endpoint := buildGateway(cfg)

	// Create and start the service with configuration options
	svc := app.New(
		app.WithLogger(log),
		app.WithCatalogTTL(time.Duration(cfg.CatalogTTLSeconds)*time.Second),
		app.WithRefreshWorkerCount(cfg.RefreshWorkerCount),
		app.WithRefreshQueueSize(cfg.RefreshQueueSize),
		app.WithGateway(gateway, endpoint, cfg.InferenceBackend),
		app.WithDefaultWeights(cfg.SkillWeight, cfg.InterestWeight),
		app.WithSeedFile(cfg.SeedFile),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop(context.Background())

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc, api.WithMaxURIListLen(cfg.MaxSkillURIs))
	apiServer.Register(ctx, mux)
	swagger.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildGateway constructs the scoring gateway the config asks for and
// returns it with the endpoint the service should target.
func buildGateway(cfg *config.Config) (inference.Gateway, string) {
	connect := time.Duration(cfg.InferenceConnectTimeoutMS) * time.Millisecond
	read := time.Duration(cfg.InferenceReadTimeoutMS) * time.Millisecond

	if cfg.InferenceBackend == "managed" {
		gw := inference.NewManagedGateway(cfg.InferenceEndpoint,
			inference.WithManagedConnectTimeout(connect),
			inference.WithManagedReadTimeout(read),
			inference.WithManagedLogger(logger.Named("inference")),
		)
		return gw, cfg.InferenceEndpointName
	}

	gw := inference.NewRESTGateway(
		inference.WithRESTConnectTimeout(connect),
		inference.WithRESTReadTimeout(read),
		inference.WithRESTLogger(logger.Named("inference")),
	)
	return gw, cfg.InferenceEndpoint
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		// Average pause over the process lifetime; coarse but cheap.
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
