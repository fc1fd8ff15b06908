// Package metrics provides Prometheus metrics for stevedore commands.
// A CLI invocation is short-lived, so metrics are exported to a textfile for the node
// exporter's textfile collector instead of being served.
//
// Key components:
//   - Metrics: Holds the collectors of one invocation.
//   - NewMetric: Creates a metric from a cleanup report.
//
// Usage example:
//
//	m, err := metrics.New()
//	m.RegisterCleanup(metrics.NewMetric(report), report.State())
//	if err := m.WriteTextfile("/var/lib/node_exporter/stevedore.prom"); err != nil {
//	    logrus.WithError(err).Warn("Failed to export metrics")
//	}
package metrics
