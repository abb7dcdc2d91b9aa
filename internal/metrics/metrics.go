// Package metrics records calculator activity as Prometheus metrics.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zephyrtronium/calculator"
	"github.com/zephyrtronium/calculator/session"
)

// Recorder owns the calculator metrics and the registry that exposes them.
type Recorder struct {
	reg *prometheus.Registry

	actions  *prometheus.CounterVec
	commits  *prometheus.CounterVec
	sessions prometheus.Gauge
	evals    *prometheus.HistogramVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calculator_actions_total",
				Help: "Total number of actions dispatched to sessions",
			},
			[]string{"action"},
		),
		commits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calculator_commits_total",
				Help: "Total number of evaluated commits by outcome",
			},
			[]string{"outcome"},
		),
		sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "calculator_sessions",
				Help: "Number of live sessions",
			},
		),
		evals: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "calculator_evaluate_seconds",
				Help:    "Duration of one-shot evaluations",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
			[]string{"outcome"},
		),
	}
	r.reg.MustRegister(r.actions, r.commits, r.sessions, r.evals)
	return r
}

// Outcome names the result of an evaluation: ok, syntax, or domain.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if k := calculator.KindOf(err); k != calculator.KindNone {
		return k.String()
	}
	return "error"
}

// Hooks returns session hooks that feed the recorder.
func (r *Recorder) Hooks() session.Hooks {
	return session.Hooks{
		OnOpen:  func(context.Context, string) { r.sessions.Inc() },
		OnClose: func(context.Context, string) { r.sessions.Dec() },
		OnAction: func(_ context.Context, _ string, a calculator.Action, _ calculator.Snapshot) {
			r.actions.WithLabelValues(a.Name()).Inc()
		},
		OnCommit: func(_ context.Context, _ string, s calculator.Snapshot) {
			r.commits.WithLabelValues(Outcome(s.Err)).Inc()
		},
	}
}

// ObserveEvaluate records a one-shot evaluation that started at start.
func (r *Recorder) ObserveEvaluate(start time.Time, err error) {
	r.evals.WithLabelValues(Outcome(err)).Observe(time.Since(start).Seconds())
}

// Handler serves the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Registry returns the registry holding the recorder's metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}
