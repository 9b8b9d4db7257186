package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EngineOperationDuration tracks reserve/purchase/cancel/use latency by outcome
	EngineOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "coupon_engine_operation_duration_seconds",
			Help: "Duration of reservation engine operations in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
			},
		},
		[]string{"operation", "outcome"},
	)

	InventoryInconsistencies = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coupon_inventory_inconsistencies_total",
			Help: "Reserve attempts where the counter showed stock but no unit could be claimed",
		},
	)

	SweptRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_sweeper_records_total",
			Help: "Records processed by the expiration sweeper",
		},
		[]string{"task", "result"}, // result: ok | failed
	)

	WorkerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_worker_runs_total",
			Help: "Periodic worker runs by task and result",
		},
		[]string{"task", "result"},
	)

	WorkerLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "coupon_worker_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run per task",
		},
		[]string{"task"},
	)
)

func RecordEngineOperation(operation, outcome string, duration time.Duration) {
	EngineOperationDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

func RecordInventoryInconsistency() {
	InventoryInconsistencies.Inc()
}

func RecordSwept(task string, ok, failed int) {
	if ok > 0 {
		SweptRecords.WithLabelValues(task, "ok").Add(float64(ok))
	}
	if failed > 0 {
		SweptRecords.WithLabelValues(task, "failed").Add(float64(failed))
	}
}

func RecordWorkerRun(task string, err error, at time.Time) {
	if err != nil {
		WorkerRuns.WithLabelValues(task, "failed").Inc()
		return
	}
	WorkerRuns.WithLabelValues(task, "success").Inc()
	WorkerLastSuccess.WithLabelValues(task).Set(float64(at.Unix()))
}
