package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels completed tasks.
	OutcomeSuccess = "success"
	// OutcomeError labels failed tasks (handler or input issues).
	OutcomeError = "error"
)

var (
	tasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cortex_engine",
			Name:      "tasks_total",
			Help:      "Total number of tasks handled, partitioned by task and outcome.",
		},
		[]string{"task", "outcome"},
	)

	taskDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cortex_engine",
			Name:      "task_seconds",
			Help:      "Task latency in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"task"},
	)
)

// Register attaches cortex-engine collectors to the supplied Prometheus
// registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		tasksTotal,
		taskDurationSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveTask records a task duration and outcome.
func ObserveTask(task string, duration time.Duration, outcome string) {
	if outcome != OutcomeError {
		outcome = OutcomeSuccess
	}
	tasksTotal.WithLabelValues(task, outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	taskDurationSeconds.WithLabelValues(task).Observe(duration.Seconds())
}
