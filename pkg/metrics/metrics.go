package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nicholas-fedor/stevedore/pkg/session"
)

// Result labels for command counters.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// errWriteTextfile indicates the metrics could not be exported.
var errWriteTextfile = errors.New("failed to write metrics textfile")

// Metric holds data points from a cleanup run.
type Metric struct {
	Targets           int // Number of targets the run operated on.
	ImagesRemoved     int // Number of images removed.
	ContainersRemoved int // Number of containers removed.
	Untracked         int // Number of tracking entries dropped.
	Failed            int // Number of failed removal attempts.
	Aborted           bool
}

// Metrics holds the collectors of one stevedore invocation.
type Metrics struct {
	registry          *prometheus.Registry
	targets           prometheus.Gauge       // Gauge for targets of the last cleanup.
	imagesRemoved     prometheus.Gauge       // Gauge for images removed by the last cleanup.
	containersRemoved prometheus.Gauge       // Gauge for containers removed by the last cleanup.
	untracked         prometheus.Gauge       // Gauge for entries untracked by the last cleanup.
	failed            prometheus.Gauge       // Gauge for failures of the last cleanup.
	cleanups          *prometheus.CounterVec // Counter for cleanup runs by terminal state.
	commands          *prometheus.CounterVec // Counter for build, push, and run commands by result.
}

// New creates a Metrics handler backed by its own registry.
//
// Returns:
//   - *Metrics: Metrics handler with every collector registered.
//   - error: Non-nil if a collector fails to register.
func New() (*Metrics, error) {
	metrics := &Metrics{
		registry: prometheus.NewRegistry(),
		targets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stevedore_cleanup_targets",
			Help: "Number of cleanup targets in the last cleanup run",
		}),
		imagesRemoved: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stevedore_cleanup_images_removed",
			Help: "Number of images removed by the last cleanup run",
		}),
		containersRemoved: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stevedore_cleanup_containers_removed",
			Help: "Number of containers removed by the last cleanup run",
		}),
		untracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stevedore_cleanup_untracked",
			Help: "Number of tracking entries dropped by the last cleanup run",
		}),
		failed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stevedore_cleanup_failures",
			Help: "Number of failed removal attempts in the last cleanup run",
		}),
		cleanups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stevedore_cleanups_total",
			Help: "Number of cleanup runs by terminal state",
		}, []string{"state"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stevedore_commands_total",
			Help: "Number of build, push, and run commands by result",
		}, []string{"command", "result"}),
	}

	collectors := []prometheus.Collector{
		metrics.targets,
		metrics.imagesRemoved,
		metrics.containersRemoved,
		metrics.untracked,
		metrics.failed,
		metrics.cleanups,
		metrics.commands,
	}
	for _, collector := range collectors {
		if err := metrics.registry.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return metrics, nil
}

// NewMetric creates a Metric from a cleanup report.
//
// Parameters:
//   - report: Report of a finished cleanup run.
//
// Returns:
//   - *Metric: New metric instance.
func NewMetric(report *session.CleanupReport) *Metric {
	if report == nil {
		panic("NewMetric: report is nil")
	}

	return &Metric{
		Targets:           len(report.Targets()),
		ImagesRemoved:     len(report.Succeeded(session.RemoveImage)),
		ContainersRemoved: len(report.Succeeded(session.RemoveContainer)),
		Untracked:         len(report.Succeeded(session.Untrack)),
		Failed:            report.FailureCount(),
		Aborted:           report.State() == session.StateAborted,
	}
}

// RegisterCleanup records a cleanup run.
func (m *Metrics) RegisterCleanup(metric *Metric, state session.State) {
	m.cleanups.WithLabelValues(string(state)).Inc()

	if metric.Aborted {
		return
	}

	m.targets.Set(float64(metric.Targets))
	m.imagesRemoved.Set(float64(metric.ImagesRemoved))
	m.containersRemoved.Set(float64(metric.ContainersRemoved))
	m.untracked.Set(float64(metric.Untracked))
	m.failed.Set(float64(metric.Failed))
}

// RegisterCommand records the result of a build, push, or run command.
func (m *Metrics) RegisterCommand(command string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}

	m.commands.WithLabelValues(command, result).Inc()
}

// Gatherer exposes the registry for inspection.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile exports the metrics in the Prometheus text format, for collection by the node
// exporter's textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %s: %w", errWriteTextfile, path, err)
	}

	return nil
}
