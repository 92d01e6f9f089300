package sched

import (
	"github.com/rs/zerolog"

	"github.com/corosched/sched/metrics"
)

// Option configures a Scheduler via the functional-options pattern.
type Option func(*Config)

// WithLogger sets the structured logger the scheduler reports through.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithMetrics sets the metrics.Provider the scheduler instruments through.
func WithMetrics(m metrics.Provider) Option {
	return func(c *Config) { c.Metrics = m }
}

// WithIdleWaitMS overrides the poller.Wait timeout used when the timer is
// idle (default 1000ms).
func WithIdleWaitMS(ms int) Option {
	return func(c *Config) { c.IdleWaitMS = ms }
}
