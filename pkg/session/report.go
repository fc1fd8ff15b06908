package session

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// State is the terminal state of a cleanup run.
type State string

// Terminal states of a cleanup run.
const (
	// StatePending marks a report whose run has not finished yet.
	StatePending State = "pending"
	// StateDone marks a run that went through every removal step.
	StateDone State = "done"
	// StateAborted marks a run the user declined before any side effect.
	StateAborted State = "aborted"
	// StateNothingToClean marks a run without any candidate target.
	StateNothingToClean State = "nothing to clean"
)

// Operation identifies the step an outcome belongs to.
type Operation string

// Steps of a cleanup run, in execution order.
const (
	RemoveContainer Operation = "remove container"
	RemoveImage     Operation = "remove image"
	Untrack         Operation = "untrack"
)

// Outcome is a single attempt made during a cleanup run.
type Outcome struct {
	// Operation is the step the attempt belongs to.
	Operation Operation
	// Target is the image reference the attempt was made for.
	Target string
	// Subject is what was acted on: a container ID, or the image reference itself.
	Subject string
	// Err is the failure reason, nil on success.
	Err error
}

// Succeeded reports whether the attempt succeeded.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// CleanupReport collects the outcomes of one cleanup run.
type CleanupReport struct {
	state    State
	targets  []types.CleanupTarget
	outcomes []Outcome
}

// NewCleanupReport creates a pending report for the given targets.
func NewCleanupReport(targets []types.CleanupTarget) *CleanupReport {
	return &CleanupReport{
		state:   StatePending,
		targets: targets,
	}
}

// Add appends an outcome to the report.
func (r *CleanupReport) Add(op Operation, target, subject string, err error) {
	r.outcomes = append(r.outcomes, Outcome{
		Operation: op,
		Target:    target,
		Subject:   subject,
		Err:       err,
	})
}

// Finish marks the run as done, or as having nothing to clean when it had no targets.
func (r *CleanupReport) Finish() {
	if len(r.targets) == 0 {
		r.state = StateNothingToClean

		return
	}

	r.state = StateDone
}

// Abort marks the run as declined by the user.
func (r *CleanupReport) Abort() {
	r.state = StateAborted
}

// State returns the terminal state of the run.
func (r *CleanupReport) State() State {
	return r.state
}

// Targets returns the targets the run operated on.
func (r *CleanupReport) Targets() []types.CleanupTarget {
	return r.targets
}

// Outcomes returns every recorded outcome in the order attempted.
func (r *CleanupReport) Outcomes() []Outcome {
	return r.outcomes
}

// Succeeded returns the successful outcomes of an operation.
func (r *CleanupReport) Succeeded(op Operation) []Outcome {
	return r.filter(op, true)
}

// Failed returns the failed outcomes of an operation.
func (r *CleanupReport) Failed(op Operation) []Outcome {
	return r.filter(op, false)
}

// FailureCount returns the number of failed outcomes across all operations.
func (r *CleanupReport) FailureCount() int {
	count := 0

	for _, outcome := range r.outcomes {
		if !outcome.Succeeded() {
			count++
		}
	}

	return count
}

// Summary renders a one-line description of the run.
func (r *CleanupReport) Summary() string {
	title := cases.Title(language.English).String(string(r.state))

	switch r.state {
	case StateAborted:
		return title + ": no images or containers were removed"
	case StateNothingToClean, StatePending:
		return title
	case StateDone:
	}

	parts := []string{
		fmt.Sprintf("removed %s", plural(len(r.Succeeded(RemoveImage)), "image")),
		plural(len(r.Succeeded(RemoveContainer)), "container"),
		fmt.Sprintf("untracked %s", plural(len(r.Succeeded(Untrack)), "entry")),
	}

	summary := title + ": " + strings.Join(parts, ", ")

	if failures := r.FailureCount(); failures > 0 {
		summary += fmt.Sprintf(" (%s)", plural(failures, "failure"))
	}

	return summary
}

func (r *CleanupReport) filter(op Operation, succeeded bool) []Outcome {
	result := []Outcome{}

	for _, outcome := range r.outcomes {
		if outcome.Operation == op && outcome.Succeeded() == succeeded {
			result = append(result, outcome)
		}
	}

	return result
}

// plural formats a count with a singular or plural noun.
func plural(count int, noun string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, noun)
	}

	if strings.HasSuffix(noun, "y") {
		return fmt.Sprintf("%d %sies", count, strings.TrimSuffix(noun, "y"))
	}

	return fmt.Sprintf("%d %ss", count, noun)
}
