package inference

import (
	"net/http"
	"time"

	"github.com/tkorhonen/opprec/pkg/logger"
)

// RESTOption applies a configuration option to the RESTGateway.
type RESTOption func(*RESTGateway)

// WithRESTConnectTimeout sets the dial timeout.
func WithRESTConnectTimeout(d time.Duration) RESTOption {
	return func(g *RESTGateway) {
		if d > 0 {
			g.connectTimeout = d
		}
	}
}

// WithRESTReadTimeout bounds the full request round trip.
func WithRESTReadTimeout(d time.Duration) RESTOption {
	return func(g *RESTGateway) {
		if d > 0 {
			g.readTimeout = d
		}
	}
}

// WithRESTHTTPClient replaces the HTTP client entirely; timeout options are
// ignored when set.
func WithRESTHTTPClient(client *http.Client) RESTOption {
	return func(g *RESTGateway) {
		if client != nil {
			g.client = client
		}
	}
}

// WithRESTLogger sets the gateway logger.
func WithRESTLogger(log logger.Logger) RESTOption {
	return func(g *RESTGateway) {
		if log != nil {
			g.log = log
		}
	}
}

// ManagedOption applies a configuration option to the ManagedGateway.
type ManagedOption func(*ManagedGateway)

// WithManagedConnectTimeout sets the dial timeout.
func WithManagedConnectTimeout(d time.Duration) ManagedOption {
	return func(g *ManagedGateway) {
		if d > 0 {
			g.connectTimeout = d
		}
	}
}

// WithManagedReadTimeout bounds the full request round trip.
func WithManagedReadTimeout(d time.Duration) ManagedOption {
	return func(g *ManagedGateway) {
		if d > 0 {
			g.readTimeout = d
		}
	}
}

// WithManagedHTTPClient replaces the HTTP client entirely; timeout options
// are ignored when set.
func WithManagedHTTPClient(client *http.Client) ManagedOption {
	return func(g *ManagedGateway) {
		if client != nil {
			g.client = client
		}
	}
}

// WithManagedLogger sets the gateway logger.
func WithManagedLogger(log logger.Logger) ManagedOption {
	return func(g *ManagedGateway) {
		if log != nil {
			g.log = log
		}
	}
}
