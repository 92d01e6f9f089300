//go:build unix

// Command schedctl is a small demo driving a Scheduler end-to-end: it
// spawns a couple of coroutines that sleep and exchange data over a real
// pipe, so the scheduler's registration, dispatch, and teardown paths run
// against an actual unix poller instead of only the in-memory test double.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"net/http"

	"github.com/corosched/sched"
	schedconfig "github.com/corosched/sched/config"
	"github.com/corosched/sched/metrics"
	"github.com/corosched/sched/metrics/prom"
	"github.com/corosched/sched/object"
	"github.com/corosched/sched/poller"
	"github.com/corosched/sched/poller/unixpoller"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "schedctl",
		Short: "Drive a coroutine scheduler through a small pipe/sleep demo",
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var metricsBackend string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the demo scheduler and run until both demo tasks finish",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(metricsBackend)
		},
	}
	cmd.Flags().StringVar(&metricsBackend, "metrics-backend", "prom",
		`metrics backend to use: "prom" (scrapeable over HTTP) or "basic" (printed at exit)`)
	return cmd
}

func runDemo(metricsBackend string) error {
	overlay, err := schedconfig.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level, err := zerolog.ParseLevel(overlay.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		Level(level).
		With().Timestamp().Logger()

	var metricsProvider metrics.Provider
	var basicProvider *metrics.BasicProvider

	switch metricsBackend {
	case "basic":
		basicProvider = metrics.NewBasicProvider()
		metricsProvider = basicProvider
	case "prom":
		registry := prometheus.NewRegistry()
		metricsProvider = prom.New(registry)
		if overlay.MetricsEnabled {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			go func() {
				if err := http.ListenAndServe(overlay.MetricsAddr, mux); err != nil {
					logger.Warn().Err(err).Msg("metrics server stopped")
				}
			}()
			logger.Info().Str("addr", overlay.MetricsAddr).Msg("metrics server listening")
		}
	default:
		return fmt.Errorf("unknown metrics backend %q", metricsBackend)
	}

	p, err := unixpoller.New()
	if err != nil {
		return fmt.Errorf("create poller: %w", err)
	}

	s, err := sched.New(p,
		sched.WithLogger(logger),
		sched.WithMetrics(metricsProvider),
		sched.WithIdleWaitMS(overlay.IdleWaitMS),
	)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	r, w, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("create demo pipe: %w", err)
	}
	readObj := object.NewPipe(int(r.Fd()))

	if _, err := s.Spawn(func(s *sched.Scheduler, _ ...any) []any {
		if err := s.Sleep(20); err != nil {
			logger.Warn().Err(err).Msg("sleeper task interrupted")
			return nil
		}
		if _, err := w.Write([]byte("hello from sleeper\n")); err != nil {
			logger.Warn().Err(err).Msg("write to demo pipe failed")
		}
		w.Close()
		return nil
	}); err != nil {
		return fmt.Errorf("spawn sleeper: %w", err)
	}

	if _, err := s.Spawn(func(s *sched.Scheduler, _ ...any) []any {
		events, err := s.PollerWait(readObj, poller.Recv, 5000)
		if err != nil {
			logger.Warn().Err(err).Msg("reader task errored")
			return nil
		}
		if events.Has(poller.Recv) {
			buf := make([]byte, 256)
			n, _ := r.Read(buf)
			logger.Info().Str("payload", string(buf[:n])).Msg("reader woke up on pipe readiness")
		}
		r.Close()
		return nil
	}); err != nil {
		return fmt.Errorf("spawn reader: %w", err)
	}

	start := time.Now()
	if err := s.Run(); err != nil {
		return fmt.Errorf("run loop: %w", err)
	}
	logger.Info().Dur("elapsed", time.Since(start)).Msg("demo scheduler drained")

	if basicProvider != nil {
		for name, v := range basicProvider.Snapshot() {
			logger.Info().Str("metric", name).Int64("value", v).Msg("basic metrics snapshot")
		}
	}
	return nil
}
