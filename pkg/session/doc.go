// Package session records the outcome of a cleanup run.
// It collects every removal attempt made by the cleanup orchestrator, successful or not, so the
// final summary, metrics, and notifications are derived from one report instead of ad hoc logs.
//
// Key components:
//   - State: Terminal state of a run (done, aborted, or nothing to clean).
//   - Operation: Kind of step an outcome belongs to (container removal, image removal, untracking).
//   - Outcome: A single attempt with its subject and error, if any.
//   - CleanupReport: Ordered outcomes of one run plus its terminal state.
//
// Usage example:
//
//	report := session.NewCleanupReport(targets)
//	report.Add(session.RemoveContainer, target.Reference, id, err)
//	report.Finish()
//	logrus.Info(report.Summary())
//
// The package integrates with types.CleanupTarget and uses golang.org/x/text for summary casing.
package session
