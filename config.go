package sched

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/corosched/sched/metrics"
)

// Config holds Scheduler configuration. There is no MaxWorkers/pool knob
// here: the scheduling model is single-threaded cooperative, so there is
// nothing to size.
type Config struct {
	// Logger receives structured diagnostics: task spawn and termination at
	// debug level, task-body failures and poller registration failures at
	// warn level. Default: disabled.
	Logger zerolog.Logger

	// Metrics receives scheduler instrumentation (task counts, poller
	// cache hit ratio, timer fires). Default: metrics.NoopProvider.
	Metrics metrics.Provider

	// IdleWaitMS is the timeout passed to poller.Wait when the timer is
	// idle (no pending timer tasks).
	IdleWaitMS int
}

// defaultConfig centralizes default values for Config.
func defaultConfig() Config {
	return Config{
		Logger:     zerolog.Nop(),
		Metrics:    metrics.NoopProvider{},
		IdleWaitMS: 1000,
	}
}

// validateConfig performs lightweight invariant checks and fills in any
// nil collaborators left by a zero-value Option.
func validateConfig(cfg *Config) error {
	if cfg.IdleWaitMS <= 0 {
		return errors.New(Namespace + ": invalid configuration: IdleWaitMS must be positive")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NoopProvider{}
	}
	return nil
}
