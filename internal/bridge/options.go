package bridge

import (
	"github.com/PRIESt512/uibridge/internal/logging"
	"github.com/PRIESt512/uibridge/internal/registry"
)

// defaultDispatchLimit caps how many deliveries may traverse the secondary
// pool concurrently. Zero means unlimited.
const defaultDispatchLimit = 0

// Option configures a Bridge.
type Option func(*config)

type config struct {
	dispatchLimit int
	logger        *logging.Logger
	registry      *registry.Registry
}

// WithDispatchLimit caps the secondary pool's concurrency. Zero or negative
// means unlimited.
func WithDispatchLimit(n int) Option {
	return func(c *config) {
		c.dispatchLimit = n
	}
}

// WithLogger sets the logger for the bridge.
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithRegistry substitutes the task registry. Useful when several bridges
// must share one registry, or for tests that inspect bookkeeping directly.
func WithRegistry(r *registry.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}
