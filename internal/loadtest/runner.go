package loadtest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tkorhonen/opprec/internal/domain/types"
	"github.com/tkorhonen/opprec/pkg/logger"
)

// Percentage conversion multiplier.
const percentageMultiplier = 100

// Run executes the complete suggestion load test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting opprec load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("requests", config.NumRequests),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("unscoredPercent", config.UnscoredPercent),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate a seed file for this or a future service run
	if config.SeedFile != "" && config.Opportunities > 0 {
		opps := GenerateOpportunities(config.Opportunities)
		if err := WriteSeedFile(ctx, config.SeedFile, opps); err != nil {
			return fmt.Errorf("seed generation failed: %w", err)
		}
	}

	// Step 3: Fire suggestion requests concurrently
	if err := submitSuggestions(ctx, config, stats); err != nil {
		return fmt.Errorf("suggestion submission failed: %w", err)
	}

	// Step 4: Exercise the path-step endpoint
	if err := queryPathSteps(ctx, config, stats); err != nil {
		return fmt.Errorf("path-step queries failed: %w", err)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "load test completed")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != statusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// submitSuggestions fires suggestion requests concurrently using a worker
// pool. A configurable share of the requests carries no signal at all, which
// exercises the catalog-order fallback instead of the scoring backend.
func submitSuggestions(ctx context.Context, config *Config, stats *Stats) error {
	logger.Get().Info(ctx, "submitting suggestion requests",
		logger.Int("requests", config.NumRequests),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/api/v1/suggestions"

	var (
		sent      int64
		ok        int64
		throttled int64
		failed    int64
		violated  int64
	)

	requestChan := make(chan suggestionRequest, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for req := range requestChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				suggestions, result := postSuggestions(ctx, client, url, req)

				atomic.AddInt64(&sent, 1)
				switch result {
				case resultOK:
					atomic.AddInt64(&ok, 1)
					if err := verifyRanking(suggestions); err != nil {
						atomic.AddInt64(&violated, 1)
						if config.Verbose {
							logger.Get().Warn(ctx, "ranking invariant violated", logger.Error(err))
						}
					}
				case resultThrottle:
					atomic.AddInt64(&throttled, 1)
				case resultFailed:
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(requestChan)
		for i := 0; i < config.NumRequests; i++ {
			req := suggestionRequest{}
			// Leave every Nth request without a signal so the service
			// falls back to plain catalog order.
			if config.UnscoredPercent <= 0 || i%percentageMultiplier >= config.UnscoredPercent {
				req.Skills = randomSkills()
			}
			select {
			case <-ctx.Done():
				return
			case requestChan <- req:
			}
		}
	}()

	wg.Wait()

	stats.RequestsSent = int(atomic.LoadInt64(&sent))
	stats.RequestsOK = int(atomic.LoadInt64(&ok))
	stats.RequestsThrottle = int(atomic.LoadInt64(&throttled))
	stats.RequestsFailed = int(atomic.LoadInt64(&failed))

	if v := atomic.LoadInt64(&violated); v > 0 {
		return fmt.Errorf("%d responses violated the ranking order", v)
	}
	return nil
}

// verifyRanking checks that scored suggestions are in non-increasing score
// order and that unscored suggestions sit at the tail.
func verifyRanking(suggestions []types.Suggestion) error {
	seenNil := false
	var prev float64
	havePrev := false

	for i, s := range suggestions {
		if s.Score == nil {
			seenNil = true
			continue
		}
		if seenNil {
			return fmt.Errorf("scored suggestion at position %d after an unscored one", i)
		}
		if havePrev && *s.Score > prev {
			return fmt.Errorf("score %f at position %d exceeds preceding score %f", *s.Score, i, prev)
		}
		prev = *s.Score
		havePrev = true
	}
	return nil
}

// queryPathSteps sends a handful of path-step requests with random missing
// skill sets.
func queryPathSteps(ctx context.Context, config *Config, stats *Stats) error {
	logger.Get().Info(ctx, "querying path steps")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/api/v1/path-steps"

	queries := config.Workers
	if queries < 1 {
		queries = 1
	}

	for i := 0; i < queries; i++ {
		steps, err := postPathSteps(ctx, client, url, randomSkills())
		if err != nil {
			return err
		}
		for j := 1; j < len(steps); j++ {
			if steps[j].Score > steps[j-1].Score {
				return fmt.Errorf("path step at position %d out of order", j)
			}
		}
		stats.PathStepsOK++
	}
	return nil
}

// displayFinalStats prints the final load test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, requestsPerSecond float64

	if stats.RequestsSent > 0 {
		successRate = float64(stats.RequestsOK) / float64(stats.RequestsSent) * percentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.RequestsSent) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("requestsSent", stats.RequestsSent),
		logger.Int("requestsOK", stats.RequestsOK),
		logger.Int("requestsThrottled", stats.RequestsThrottle),
		logger.Int("requestsFailed", stats.RequestsFailed),
		logger.Int("pathStepQueries", stats.PathStepsOK),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
