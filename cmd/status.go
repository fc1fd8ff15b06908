package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/stevedore/internal/util"
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state files and the builds tracked for the project",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	env, err := loadEnvironment(cmd, false)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	for _, info := range []struct {
		name    string
		storage types.StorageInfo
	}{
		{"Tracking store", env.tracking.StorageInfo()},
		{"Preference store", env.preferences.StorageInfo()},
	} {
		if _, err := fmt.Fprintf(out, "%s: %s (%d entries)\n", info.name, info.storage.Location, info.storage.EntryCount); err != nil {
			return err
		}
	}

	if env.project.ImageName == "" {
		_, err := fmt.Fprintf(out, "No project configuration at %s\n", env.configPath)

		return err
	}

	return writeTrackedBuilds(out, env, time.Now())
}

// writeTrackedBuilds renders the project's tracked builds, newest first.
func writeTrackedBuilds(out io.Writer, env *environment, now time.Time) error {
	project := env.project
	entries := env.tracking.List(project.Path, project.ImageName)

	if _, err := fmt.Fprintf(out, "\nProject %s (%s)\n", project.ImageName, project.Path); err != nil {
		return err
	}

	if registry := project.RegistryRepository(); registry != "" {
		if _, err := fmt.Fprintf(out, "Registry repository: %s\n", registry); err != nil {
			return err
		}
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "No tracked builds")

		return err
	}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			entry.Tag,
			entry.Reference,
			valueOrDash(entry.Size),
			util.FormatAge(entry.BuildTime(), now),
		})
	}

	excluded := env.preferences.Excluded(project.Path, project.ImageName)

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TAG", "REFERENCE", "SIZE", "AGE").
		Rows(rows...)

	if _, err := fmt.Fprintln(out, tbl.String()); err != nil {
		return err
	}

	if len(excluded) > 0 {
		if _, err := fmt.Fprintf(out, "Kept from cleanup: %v\n", excluded); err != nil {
			return err
		}
	}

	return nil
}

func valueOrDash(value string) string {
	if value == "" {
		return "-"
	}

	return value
}
