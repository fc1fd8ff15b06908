// Package logging writes the startup information of a stevedore invocation.
package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// StartupInfo describes the context a command runs in.
type StartupInfo struct {
	// Version is the stevedore version string.
	Version string
	// Command is the name of the command being run.
	Command string
	// ProjectDir is the absolute project directory.
	ProjectDir string
	// StateDir is the directory holding the persisted stores.
	StateDir string
	// Notifiers lists the configured notification service names.
	Notifiers []string
	// MetricsFile is the metrics textfile path, empty when disabled.
	MetricsFile string
}

// WriteStartupMessage logs the invocation context.
//
// The details are written at debug level so regular runs stay quiet; a warning is added when
// trace logging may expose registry credentials.
//
// Parameters:
//   - log: The logrus.Entry used to write the information.
//   - info: The invocation context.
func WriteStartupMessage(log *logrus.Entry, info StartupInfo) {
	log.WithFields(logrus.Fields{
		"command": info.Command,
		"project": info.ProjectDir,
		"state":   info.StateDir,
	}).Debug("Stevedore " + info.Version)

	LogNotifierInfo(log, info.Notifiers)

	if info.MetricsFile != "" {
		log.WithField("file", info.MetricsFile).Debug("Writing metrics to textfile")
	}

	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		log.Warn(
			"Trace level enabled: log will include sensitive information as credentials and tokens",
		)
	}
}

// LogNotifierInfo logs details about the notification setup.
//
// Parameters:
//   - log: The logrus.Entry used to write the notification information.
//   - notifierNames: The names of the configured notification services.
func LogNotifierInfo(log *logrus.Entry, notifierNames []string) {
	if len(notifierNames) > 0 {
		log.Debug("Using notifications: " + strings.Join(notifierNames, ", "))
	} else {
		log.Debug("Using no notifications")
	}
}
