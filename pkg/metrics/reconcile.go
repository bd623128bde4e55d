package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Resultados del barrido de conciliación.
const (
	SweepOK      = "ok"
	SweepFailed  = "failed"
	SweepSkipped = "skipped"
)

// ReconcileMetrics registra las correcciones de stock y la ejecución del barrido.
// Un *ReconcileMetrics nil es válido y no registra nada.
type ReconcileMetrics struct {
	repairs       *prometheus.CounterVec
	drift         *prometheus.CounterVec
	sweepDuration prometheus.Histogram
	sweeps        *prometheus.CounterVec
}

// NewReconcileMetrics registra las métricas de conciliación en el registerer dado.
func NewReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	if reg == nil {
		return &ReconcileMetrics{}
	}
	repairs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_reconcile_repairs_total",
		Help: "Stock rows overwritten or created by reconciliation.",
	}, []string{"kind"})
	drift := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_reconcile_drift_units_total",
		Help: "Absolute units of drift corrected by reconciliation.",
	}, []string{"kind"})
	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "inventory_reconcile_sweep_duration_seconds",
		Help:    "Duration of the reconciliation sweep in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	sweeps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_reconcile_sweeps_total",
		Help: "Reconciliation sweeps by result.",
	}, []string{"result"})
	reg.MustRegister(repairs, drift, sweepDuration, sweeps)
	return &ReconcileMetrics{
		repairs:       repairs,
		drift:         drift,
		sweepDuration: sweepDuration,
		sweeps:        sweeps,
	}
}

// ObserveRepair cuenta una fila corregida (created=false) o creada (created=true) y su deriva.
func (m *ReconcileMetrics) ObserveRepair(created bool, before, after int64) {
	if m == nil || m.repairs == nil {
		return
	}
	kind := "overwritten"
	if created {
		kind = "created"
	}
	diff := after - before
	if diff < 0 {
		diff = -diff
	}
	m.repairs.WithLabelValues(kind).Inc()
	m.drift.WithLabelValues(kind).Add(float64(diff))
}

// ObserveSweep registra la duración y el resultado de un barrido.
func (m *ReconcileMetrics) ObserveSweep(result string, d time.Duration) {
	if m == nil || m.sweeps == nil {
		return
	}
	if result == "" {
		result = "unknown"
	}
	m.sweeps.WithLabelValues(result).Inc()
	m.sweepDuration.Observe(d.Seconds())
}
