// Package cmd contains the command-line interface of stevedore.
//
// Key components:
//   - rootCmd: Root command carrying the global flags.
//   - init, build, push, login, run: Project lifecycle commands.
//   - clean: Reconciles tracked and live images and removes the selected ones.
//   - status, version: Informational commands.
//
// Usage example (from main.go):
//
//	cmd.Execute()
//
// Commands share an environment holding the project configuration, the tracking and preference
// stores, the notifier and the metrics registry.
package cmd
