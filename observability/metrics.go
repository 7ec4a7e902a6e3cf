// Package observability exposes runtime counters of stores and their effect
// interpreters.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics receives runtime measurements. Implementations must be safe for
// concurrent use: effects report from their own goroutines.
type Metrics interface {
	ActionDispatched(action string)
	ReducerDuration(d time.Duration)
	EffectStarted(kind string)
	EffectCancelled(kind string)
	EffectFailed(kind string)
}

var _ Metrics = Noop{}

// Noop discards every measurement.
type Noop struct{}

func (Noop) ActionDispatched(string)       {}
func (Noop) ReducerDuration(time.Duration) {}
func (Noop) EffectStarted(string)          {}
func (Noop) EffectCancelled(string)        {}
func (Noop) EffectFailed(string)           {}

var _ Metrics = (*Prometheus)(nil)

// Prometheus records measurements as Prometheus collectors.
type Prometheus struct {
	actions         *prometheus.CounterVec
	reducerDuration prometheus.Histogram
	effectsStarted  *prometheus.CounterVec
	effectsCancel   *prometheus.CounterVec
	effectsFailed   *prometheus.CounterVec
}

// NewPrometheus creates the collectors under namespace and registers them
// with reg. A nil reg leaves them unregistered.
func NewPrometheus(namespace string, reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "actions_total",
				Help:      "Actions dispatched, by action type.",
			},
			[]string{"action"},
		),
		reducerDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "reducer_duration_seconds",
				Help:      "Time spent in the reducer per dispatch.",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
			},
		),
		effectsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "effects",
				Name:      "started_total",
				Help:      "Effects started, by kind.",
			},
			[]string{"kind"},
		),
		effectsCancel: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "effects",
				Name:      "cancelled_total",
				Help:      "Registrations disposed before completing, by kind.",
			},
			[]string{"kind"},
		),
		effectsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "effects",
				Name:      "failed_total",
				Help:      "Effects that returned an error or panicked, by kind.",
			},
			[]string{"kind"},
		),
	}

	if reg != nil {
		for _, c := range p.Collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

func (p *Prometheus) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		p.actions, p.reducerDuration, p.effectsStarted, p.effectsCancel, p.effectsFailed,
	}
}

func (p *Prometheus) ActionDispatched(action string) {
	p.actions.WithLabelValues(action).Inc()
}

func (p *Prometheus) ReducerDuration(d time.Duration) {
	p.reducerDuration.Observe(d.Seconds())
}

func (p *Prometheus) EffectStarted(kind string) {
	p.effectsStarted.WithLabelValues(kind).Inc()
}

func (p *Prometheus) EffectCancelled(kind string) {
	p.effectsCancel.WithLabelValues(kind).Inc()
}

func (p *Prometheus) EffectFailed(kind string) {
	p.effectsFailed.WithLabelValues(kind).Inc()
}
