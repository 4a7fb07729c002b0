package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/tkorhonen/opprec/pkg/logger"
	"github.com/tkorhonen/opprec/pkg/metrics"
)

// Provider error codes classified by the managed gateway.
const (
	codeThrottling = "ThrottlingException"
	codeValidation = "ValidationError"
)

// errorEnvelope is the managed provider's error response body.
type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ManagedGateway invokes a named compute endpoint hosted by a managed
// provider. Provider throttling is translated into ErrOverloaded so callers
// can answer with retry semantics instead of a terminal failure.
type ManagedGateway struct {
	baseURL        string
	client         *http.Client
	connectTimeout time.Duration
	readTimeout    time.Duration
	log            logger.Logger
}

// NewManagedGateway creates a managed gateway invoking endpoints under
// baseURL, with configuration options.
func NewManagedGateway(baseURL string, opts ...ManagedOption) *ManagedGateway {
	g := &ManagedGateway{
		baseURL:        baseURL,
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

	return g
}

// Infer invokes the named endpoint and decodes the scored rows. Provider
// throttling (or HTTP 429) maps to ErrOverloaded, a validation rejection to
// ErrValidation, everything else to ErrInference.
func (g *ManagedGateway) Infer(ctx context.Context, endpoint string, req Request) ([]Score, error) {
	start := time.Now()
	scores, err := g.invoke(ctx, endpoint, req)
	metrics.RecordInferenceLatency(float64(time.Since(start).Milliseconds()))

	switch {
	case err == nil:
		metrics.RecordInferenceRequest("managed", "ok")
	case errors.Is(err, ErrOverloaded):
		metrics.RecordInferenceRequest("managed", "overloaded")
	case errors.Is(err, ErrValidation):
		metrics.RecordInferenceRequest("managed", "validation")
	default:
		metrics.RecordInferenceRequest("managed", "error")
		if g.log != nil {
			g.log.Warn(ctx, "endpoint invocation failed",
				logger.String("endpoint", endpoint),
				logger.Error(err),
			)
		}
	}
	return scores, err
}

func (g *ManagedGateway) invoke(ctx context.Context, endpoint string, req Request) ([]Score, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %w", ErrInference, err)
	}

	url := fmt.Sprintf("%s/endpoints/%s/invocations", g.baseURL, endpoint)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
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
		return nil, g.classify(resp)
	}

	var scores []Score
	if err := json.NewDecoder(resp.Body).Decode(&scores); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", ErrInference, err)
	}
	return scores, nil
}

// classify maps a provider error response onto the gateway error classes.
func (g *ManagedGateway) classify(resp *http.Response) error {
	var envelope errorEnvelope
	if body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); err == nil {
		_ = json.Unmarshal(body, &envelope)
	}

	switch {
	case envelope.Code == codeThrottling || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrOverloaded, envelope.Message)
	case envelope.Code == codeValidation:
		return fmt.Errorf("%w: %s", ErrValidation, envelope.Message)
	default:
		return fmt.Errorf("%w: status %d code %q", ErrInference, resp.StatusCode, envelope.Code)
	}
}
