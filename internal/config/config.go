// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CatalogTTLSeconds is the staleness window of the opportunity catalog
	// cache. Once it elapses, the next read schedules a background refresh.
	CatalogTTLSeconds int `koanf:"catalog_ttl_seconds"`

	// RefreshWorkerCount sets the number of background refresh workers.
	RefreshWorkerCount int `koanf:"refresh_worker_count"`

	// RefreshQueueSize bounds the pending refresh task queue.
	RefreshQueueSize int `koanf:"refresh_queue_size"`

	// InferenceBackend selects the scoring backend: "rest" or "managed".
	InferenceBackend string `koanf:"inference_backend"`

	// InferenceEndpoint is the scoring backend URL (rest) or the managed
	// runtime base URL (managed).
	InferenceEndpoint string `koanf:"inference_endpoint"`

	// InferenceEndpointName names the managed compute endpoint to invoke.
	InferenceEndpointName string `koanf:"inference_endpoint_name"`

	// InferenceConnectTimeoutMS and InferenceReadTimeoutMS bound the
	// scoring backend round trip.
	InferenceConnectTimeoutMS int `koanf:"inference_connect_timeout_ms"`
	InferenceReadTimeoutMS    int `koanf:"inference_read_timeout_ms"`

	// SkillWeight and InterestWeight are the default emphasis values sent to
	// the scoring backend when the request does not set them.
	SkillWeight    float64 `koanf:"skill_weight"`
	InterestWeight float64 `koanf:"interest_weight"`

	// MaxSkillURIs caps the number of skill/interest URIs per request.
	MaxSkillURIs int `koanf:"max_skill_uris"`

	// SeedFile optionally points at a JSON file of opportunities loaded into
	// the in-memory store at startup.
	SeedFile string `koanf:"seed_file"`
}

// New creates a Config populated with defaults. Callers normally go through
// Load, which layers file and env overrides on top.
func New() *Config {
	c := &Config{
		LogLevel:                  "info",
		Addr:                      ":9080",
		CatalogTTLSeconds:         60,
		RefreshWorkerCount:        runtime.NumCPU(),
		RefreshQueueSize:          16,
		InferenceBackend:          "rest",
		InferenceEndpoint:         "http://localhost:8500/score",
		InferenceEndpointName:     "opportunity-match",
		InferenceConnectTimeoutMS: 5000,
		InferenceReadTimeoutMS:    10_000,
		SkillWeight:               0.5,
		InterestWeight:            0.5,
		MaxSkillURIs:              1000,
	}
	return c
}
