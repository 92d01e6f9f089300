// Package prom adapts github.com/prometheus/client_golang to the
// metrics.Provider contract, for hosts that want scheduler instrumentation
// exported on a /metrics endpoint instead of the in-memory
// metrics.BasicProvider. Grounded on the client_golang usage in
// ChuLiYu-raft-recovery and maumercado-task-queue-go.
package prom

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/corosched/sched/metrics"
)

// Provider implements metrics.Provider on top of a prometheus.Registerer.
type Provider struct {
	reg prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	updowns    map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// New returns a Provider that registers instruments on reg as they are
// first requested.
func New(reg prometheus.Registerer) *Provider {
	return &Provider{
		reg:        reg,
		counters:   make(map[string]*prometheus.CounterVec),
		updowns:    make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func attrLabels(cfg metrics.InstrumentConfig) ([]string, prometheus.Labels) {
	if len(cfg.Attributes) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(cfg.Attributes))
	values := make(prometheus.Labels, len(cfg.Attributes))
	for k, v := range cfg.Attributes {
		names = append(names, k)
		values[k] = v
	}
	return names, values
}

func applyOptions(opts []metrics.InstrumentOption) metrics.InstrumentConfig {
	var cfg metrics.InstrumentConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}

func (p *Provider) Counter(name string, opts ...metrics.InstrumentOption) metrics.Counter {
	cfg := applyOptions(opts)
	names, values := attrLabels(cfg)

	p.mu.Lock()
	defer p.mu.Unlock()
	cv, ok := p.counters[name]
	if !ok {
		cv = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: cfg.Description}, names)
		p.reg.MustRegister(cv)
		p.counters[name] = cv
	}
	return promCounter{cv.With(values)}
}

func (p *Provider) UpDownCounter(name string, opts ...metrics.InstrumentOption) metrics.UpDownCounter {
	cfg := applyOptions(opts)
	names, values := attrLabels(cfg)

	p.mu.Lock()
	defer p.mu.Unlock()
	gv, ok := p.updowns[name]
	if !ok {
		gv = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: cfg.Description}, names)
		p.reg.MustRegister(gv)
		p.updowns[name] = gv
	}
	return promGauge{gv.With(values)}
}

func (p *Provider) Histogram(name string, opts ...metrics.InstrumentOption) metrics.Histogram {
	cfg := applyOptions(opts)
	names, values := attrLabels(cfg)

	p.mu.Lock()
	defer p.mu.Unlock()
	hv, ok := p.histograms[name]
	if !ok {
		hv = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: cfg.Description}, names)
		p.reg.MustRegister(hv)
		p.histograms[name] = hv
	}
	return promHistogram{hv.With(values)}
}

type promCounter struct{ c prometheus.Counter }

func (p promCounter) Add(n int64) { p.c.Add(float64(n)) }

type promGauge struct{ g prometheus.Gauge }

func (p promGauge) Add(n int64) { p.g.Add(float64(n)) }

type promHistogram struct{ h prometheus.Observer }

func (p promHistogram) Record(v float64) { p.h.Observe(v) }
