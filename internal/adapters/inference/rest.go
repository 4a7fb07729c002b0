package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tkorhonen/opprec/pkg/logger"
	"github.com/tkorhonen/opprec/pkg/metrics"
)

// Default REST gateway configuration constants.
const (
	defaultConnectTimeout = 5 * time.Second
	defaultReadTimeout    = 10 * time.Second
	breakerMaxRequests    = 3
	breakerOpenTimeout    = 30 * time.Second
	breakerMinRequests    = 5
	breakerFailureRatio   = 0.6
)

// RESTGateway scores requests against a plain HTTP endpoint. Calls run
// through a circuit breaker: once the backend fails consistently, further
// calls are rejected as ErrOverloaded until the breaker half-opens.
type RESTGateway struct {
	client         *http.Client
	connectTimeout time.Duration
	readTimeout    time.Duration
	log            logger.Logger
	breaker        *gobreaker.CircuitBreaker[[]Score]
}

// NewRESTGateway creates a REST gateway with configuration options.
func NewRESTGateway(opts ...RESTOption) *RESTGateway {
	g := &RESTGateway{
		connectTimeout: defaultConnectTimeout,
		readTimeout:    defaultReadTimeout,
	}

	// Apply all options
	for _, opt := range opts {
		opt(g)
	}

	if g.client == nil {
		g.client = &http.Client{
			Timeout: g.readTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: g.connectTimeout,
				}).DialContext,
			},
		}
	}

	g.breaker = gobreaker.NewCircuitBreaker[[]Score](gobreaker.Settings{
		Name:        "inference-rest",
		MaxRequests: breakerMaxRequests,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= breakerMinRequests && ratio >= breakerFailureRatio
		},
		OnStateChange: func(name string, _, to gobreaker.State) {
			metrics.UpdateBreakerState(name, breakerStateValue(to))
		},
	})

	return g
}

// Infer posts the request to endpoint (a full URL) and decodes the scored
// rows. Transport failures, non-2xx statuses and decode failures all map to
// ErrInference; an open circuit breaker maps to ErrOverloaded.
func (g *RESTGateway) Infer(ctx context.Context, endpoint string, req Request) ([]Score, error) {
	start := time.Now()
	scores, err := g.breaker.Execute(func() ([]Score, error) {
		return g.call(ctx, endpoint, req)
	})
	metrics.RecordInferenceLatency(float64(time.Since(start).Milliseconds()))

	switch {
	case err == nil:
		metrics.RecordInferenceRequest("rest", "ok")
		return scores, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordInferenceRequest("rest", "overloaded")
		return nil, fmt.Errorf("%w: circuit breaker open", ErrOverloaded)
	default:
		metrics.RecordInferenceRequest("rest", "error")
		if g.log != nil {
			g.log.Warn(ctx, "scoring call failed", logger.Error(err))
		}
		return nil, err
	}
}

func (g *RESTGateway) call(ctx context.Context, endpoint string, req Request) ([]Score, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %w", ErrInference, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %w", ErrInference, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInference, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read path

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrInference, resp.StatusCode)
	}

	var scores []Score
	if err := json.NewDecoder(resp.Body).Decode(&scores); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", ErrInference, err)
	}
	return scores, nil
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
