// SPDX-License-Identifier: MIT

// Package metrics instruments decomposition pipelines with Prometheus.
//
// A nil *Recorder is valid and records nothing, so library code can call it
// unconditionally.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "lvsvd"

// Stage labels used by the pipelines.
const (
	StageDevice      = "device"
	StageRangeFinder = "range_finder"
	StageProject     = "project"
	StageSVD         = "svd"
	StageRecover     = "recover"
	StageQR          = "qr"
)

// Stage results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Recorder holds the pipeline metrics.
type Recorder struct {
	stageDuration  *prometheus.HistogramVec
	decompositions *prometheus.CounterVec
	fallbacks      *prometheus.CounterVec
	jacobiSweeps   prometheus.Gauge
	offDiagonal    prometheus.Gauge
}

// NewRecorder creates the metrics and registers them with reg
// (prometheus.DefaultRegisterer when nil).
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of each pipeline stage in seconds",
				Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 60},
			},
			[]string{"stage", "result"},
		),
		decompositions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "decompositions_total",
				Help:      "Completed decompositions by method, backend and device",
			},
			[]string{"method", "backend", "device"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "fallbacks_total",
				Help:      "Degraded paths taken instead of the requested one, by reason",
			},
			[]string{"reason"},
		),
		jacobiSweeps: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "jacobi_sweeps",
				Help:      "Sweeps performed by the last Jacobi SVD",
			},
		),
		offDiagonal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "jacobi_off_diagonal_ratio",
				Help:      "Residual off-diagonal energy of the last Jacobi SVD (0 = converged)",
			},
		),
	}
	for _, c := range []prometheus.Collector{r.stageDuration, r.decompositions, r.fallbacks, r.jacobiSweeps, r.offDiagonal} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics.NewRecorder: %w", err)
		}
	}

	return r, nil
}

// StageTimer measures one pipeline stage.
type StageTimer struct {
	rec   *Recorder
	stage string
	start time.Time
}

// StartStage begins timing stage.
func (r *Recorder) StartStage(stage string) *StageTimer {
	return &StageTimer{rec: r, stage: stage, start: time.Now()}
}

// Stop records the stage duration under result and returns it.
func (t *StageTimer) Stop(result string) time.Duration {
	d := time.Since(t.start)
	if t.rec != nil {
		t.rec.stageDuration.WithLabelValues(t.stage, result).Observe(d.Seconds())
	}

	return d
}

// CountDecomposition increments the completed-decomposition counter.
func (r *Recorder) CountDecomposition(method, backend, device string) {
	if r == nil {
		return
	}
	r.decompositions.WithLabelValues(method, backend, device).Inc()
}

// CountFallback increments the fallback counter for reason.
func (r *Recorder) CountFallback(reason string) {
	if r == nil {
		return
	}
	r.fallbacks.WithLabelValues(reason).Inc()
}

// ObserveJacobi records the sweep count and residual of a Jacobi SVD.
func (r *Recorder) ObserveJacobi(sweeps int, offDiagonal float64) {
	if r == nil {
		return
	}
	r.jacobiSweeps.Set(float64(sweeps))
	r.offDiagonal.Set(offDiagonal)
}
