// Package metrics records build telemetry. The daemon wires a Prometheus
// recorder and serves it over HTTP; direct CLI builds use the no-op
// recorder.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for completed builds.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Receives build and stage timings.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string)
}

// Returns a recorder that discards everything.
func Nop() Recorder {
	return nopRecorder{}
}

type nopRecorder struct{}

func (nopRecorder) ObserveStageDuration(string, time.Duration) {}
func (nopRecorder) ObserveBuildDuration(time.Duration)         {}
func (nopRecorder) IncBuildOutcome(string)                     {}

// Implements Recorder backed by Prometheus collectors.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
}

// Constructs and registers the Prometheus collectors on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "wheelwright",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual recipe stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "wheelwright",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "wheelwright",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
	}

	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.buildOutcome)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

// Returns an HTTP handler serving the registry in Prometheus format.
func Handler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
