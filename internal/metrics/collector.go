// Package metrics exports task runtime and HTTP metrics to Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/phrazzld/comix-bridge/internal/task"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records task lifecycle events. It implements task.Observer.
type Collector struct {
	tasksTotal      *prometheus.CounterVec
	tasksInFlight   *prometheus.GaugeVec
	taskDuration    *prometheus.HistogramVec
	taskPanics      *prometheus.CounterVec
	cancelRequests  *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		tasksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "comix_tasks_total",
				Help: "Total number of finished tasks by outcome",
			},
			[]string{"type", "outcome"},
		),
		tasksInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "comix_tasks_in_flight",
				Help: "Number of registered tasks without a final outcome",
			},
			[]string{"type"},
		),
		taskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "comix_task_duration_seconds",
				Help:    "Time from registration to final outcome",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"type"},
		),
		taskPanics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "comix_task_panics_total",
				Help: "Total number of panics recovered from tasks",
			},
			[]string{"type"},
		),
		cancelRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "comix_cancel_requests_total",
				Help: "Total number of cancel requests by whether they took effect",
			},
			[]string{"effected"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "comix_http_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "comix_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// TaskStarted implements task.Observer.
func (c *Collector) TaskStarted(taskType string) {
	c.tasksInFlight.WithLabelValues(taskType).Inc()
}

// TaskFinished implements task.Observer.
func (c *Collector) TaskFinished(taskType string, kind task.OutcomeKind, elapsed time.Duration) {
	c.tasksInFlight.WithLabelValues(taskType).Dec()
	c.tasksTotal.WithLabelValues(taskType, kind.String()).Inc()
	c.taskDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
}

// TaskPanicked implements task.Observer.
func (c *Collector) TaskPanicked(taskType string) {
	c.taskPanics.WithLabelValues(taskType).Inc()
}

// CancelRequested implements task.Observer.
func (c *Collector) CancelRequested(effected bool) {
	c.cancelRequests.WithLabelValues(strconv.FormatBool(effected)).Inc()
}

// RecordRequest records one served HTTP request.
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

var _ task.Observer = (*Collector)(nil)
