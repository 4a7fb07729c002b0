package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tkorhonen/opprec/internal/domain/types"
)

// HTTP status codes the service answers with.
const (
	statusOK              = 200
	statusTooManyRequests = 429
)

// HTTPClient wraps http.Client with a fixed timeout.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with the given timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// suggestionRequest mirrors the POST /api/v1/suggestions body.
type suggestionRequest struct {
	Skills    []string `json:"skills"`
	Interests []string `json:"interests"`
	FreeText  string   `json:"freeText"`
}

// pathStepRequest mirrors the POST /api/v1/path-steps body.
type pathStepRequest struct {
	MissingSkills []string `json:"missingSkills"`
}

// requestResult classifies a single request outcome.
type requestResult string

const (
	resultOK       requestResult = "ok"
	resultThrottle requestResult = "throttle"
	resultFailed   requestResult = "failed"
)

// postSuggestions sends one suggestion request and decodes the ranked list.
func postSuggestions(ctx context.Context, client *HTTPClient, url string, req suggestionRequest) ([]types.Suggestion, requestResult) {
	resp, err := client.Post(ctx, url, req)
	if err != nil {
		return nil, resultFailed
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, resultFailed
	}

	switch resp.StatusCode {
	case statusOK:
	case statusTooManyRequests:
		return nil, resultThrottle
	default:
		return nil, resultFailed
	}

	var suggestions []types.Suggestion
	if err := json.Unmarshal(body, &suggestions); err != nil {
		return nil, resultFailed
	}
	return suggestions, resultOK
}

// postPathSteps sends one path-step request and decodes the ranked trainings.
func postPathSteps(ctx context.Context, client *HTTPClient, url string, missing []string) ([]types.Step, error) {
	resp, err := client.Post(ctx, url, pathStepRequest{MissingSkills: missing})
	if err != nil {
		return nil, fmt.Errorf("path-step request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != statusOK {
		return nil, fmt.Errorf("path-step request failed with status: %d", resp.StatusCode)
	}

	var steps []types.Step
	if err := json.Unmarshal(body, &steps); err != nil {
		return nil, fmt.Errorf("failed to decode path steps: %w", err)
	}
	return steps, nil
}
