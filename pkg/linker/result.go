package linker

import (
	"fmt"

	"github.com/skillctl/skillctl/pkg/skills"
)

// Outcome describes what happened to a single skill during an install or
// uninstall operation
type Outcome int

const (
	// OutcomeFailed means the operation errored for this skill
	OutcomeFailed Outcome = iota
	// OutcomeInstalled means a new link was created
	OutcomeInstalled
	// OutcomeRemoved means an owned link was removed
	OutcomeRemoved
	// OutcomeAlreadyInstalled means install was a no-op
	OutcomeAlreadyInstalled
	// OutcomeNotInstalled means uninstall found nothing at the target
	OutcomeNotInstalled
	// OutcomeForeignLink means uninstall left a symlink owned by something else
	OutcomeForeignLink
	// OutcomeNotSymlink means uninstall left a real file or directory alone
	OutcomeNotSymlink
)

// Skipped reports whether the outcome was a no-op
func (o Outcome) Skipped() bool {
	switch o {
	case OutcomeAlreadyInstalled, OutcomeNotInstalled, OutcomeForeignLink, OutcomeNotSymlink:
		return true
	}
	return false
}

// String returns a human-readable outcome label
func (o Outcome) String() string {
	switch o {
	case OutcomeInstalled:
		return "installed"
	case OutcomeRemoved:
		return "removed"
	case OutcomeAlreadyInstalled:
		return "already installed"
	case OutcomeNotInstalled:
		return "not installed"
	case OutcomeForeignLink:
		return "symlink owned by another tool"
	case OutcomeNotSymlink:
		return "target is not a symlink"
	default:
		return "failed"
	}
}

// Event reports the outcome for one skill as a batch progresses
type Event struct {
	Skill   skills.Skill
	Outcome Outcome
	Err     error
}

// EventFunc receives per-skill events during batch operations. A nil
// EventFunc is valid and silences per-skill reporting.
type EventFunc func(Event)

// Result accumulates the counters of a batch operation. It is a plain
// value passed back to the caller rather than ambient global state.
type Result struct {
	Installed int
	Removed   int
	Skipped   int
	Errors    int
}

// Merge adds the counters of another result
func (r *Result) Merge(other Result) {
	r.Installed += other.Installed
	r.Removed += other.Removed
	r.Skipped += other.Skipped
	r.Errors += other.Errors
}

// Failed reports whether any per-skill operation errored
func (r Result) Failed() bool {
	return r.Errors > 0
}

// Summary returns the aggregate line printed after mutating commands
func (r Result) Summary() string {
	return fmt.Sprintf("%d installed, %d removed, %d skipped, %d errors",
		r.Installed, r.Removed, r.Skipped, r.Errors)
}

func (r *Result) record(outcome Outcome, err error) {
	switch {
	case err != nil:
		r.Errors++
	case outcome == OutcomeInstalled:
		r.Installed++
	case outcome == OutcomeRemoved:
		r.Removed++
	case outcome.Skipped():
		r.Skipped++
	}
}
