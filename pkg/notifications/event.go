package notifications

import (
	"fmt"

	"github.com/nicholas-fedor/stevedore/pkg/session"
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// Event is the outcome of a single stevedore command, as sent to notification services.
type Event struct {
	// Command is the command that produced the event (build, push, clean).
	Command string `json:"command"`
	// Image is the project image name.
	Image string `json:"image"`
	// Summary is a one-line description of the outcome.
	Summary string `json:"summary"`
	// Lines holds per-item details, one per line.
	Lines []string `json:"lines,omitempty"`
	// Failed marks events describing a partially or fully failed command.
	Failed bool `json:"failed"`
}

// Data is the value notification templates are executed against.
type Data struct {
	Host  string
	Event Event
}

// BuildEvent describes a finished build.
func BuildEvent(entry types.TrackedImage) Event {
	summary := "Built " + entry.Reference
	if entry.Size != "" {
		summary += fmt.Sprintf(" (%s)", entry.Size)
	}

	return Event{
		Command: "build",
		Image:   entry.ImageName,
		Summary: summary,
	}
}

// PushEvent describes the references pushed to the registry.
func PushEvent(project types.Project, refs []string) Event {
	return Event{
		Command: "push",
		Image:   project.ImageName,
		Summary: fmt.Sprintf("Pushed %d reference(s) to %s", len(refs), project.Registry),
		Lines:   refs,
	}
}

// CleanupEvent describes a finished cleanup run, listing every failed step.
func CleanupEvent(project types.Project, report *session.CleanupReport) Event {
	event := Event{
		Command: "clean",
		Image:   project.ImageName,
		Summary: report.Summary(),
		Failed:  report.FailureCount() > 0,
	}

	for _, outcome := range report.Outcomes() {
		if outcome.Succeeded() {
			continue
		}

		event.Lines = append(event.Lines,
			fmt.Sprintf("%s %s: %v", outcome.Operation, outcome.Subject, outcome.Err))
	}

	return event
}
