package rank

import "github.com/tkorhonen/opprec/pkg/logger"

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithLogger sets the logger used for merge diagnostics.
func WithLogger(log logger.Logger) Option {
	return func(r *Ranker) {
		if log != nil {
			r.log = log
		}
	}
}
