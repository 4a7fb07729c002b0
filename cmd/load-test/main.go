package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/tkorhonen/opprec/internal/loadtest"
	"github.com/tkorhonen/opprec/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumRequests   = 1000
	defaultOpportunities = 500
	defaultWorkers       = 2 // multiplier for runtime.NumCPU()
	defaultUnscoredPct   = 10
	defaultTimeout       = 30 * time.Second
	defaultTestTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL       = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numRequests   = flag.Int("requests", defaultNumRequests, "Number of suggestion requests to send")
		workers       = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout       = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		opportunities = flag.Int("opportunities", defaultOpportunities, "Number of opportunities to generate for the seed file")
		seedFile      = flag.String("seed", "", "Write a generated opportunity seed file to this path (skipped when empty)")
		unscoredPct   = flag.Int("unscored", defaultUnscoredPct, "Percentage of requests sent without any signal")
		verbose       = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &loadtest.Config{
		BaseURL:         *baseURL,
		NumRequests:     *numRequests,
		Workers:         *workers,
		Timeout:         *timeout,
		Opportunities:   *opportunities,
		SeedFile:        *seedFile,
		UnscoredPercent: *unscoredPct,
		Verbose:         *verbose,
	}

	if err := loadtest.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Load test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
