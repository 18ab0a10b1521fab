package build

// State identifies where an artifact is in the build lifecycle.
type State int

const (
	StateDraft State = iota
	StateValidating
	StatePatching
	StatePublished
	StateFailed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateDraft:
		return "draft"
	case StateValidating:
		return "validating"
	case StatePatching:
		return "patching"
	case StatePublished:
		return "published"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Request is the structured build request sent to the generation
// collaborator.
type Request struct {
	Title           string
	Category        string
	CanonicalPath   string
	Keywords        []string
	ProblemExamples []string

	// FailureReason is set on full-regeneration requests so the
	// collaborator knows what the previous draft got wrong.
	FailureReason string
}

// Outcome is the terminal result of one controller run. A Published
// outcome carries the validated artifact; a Failed outcome carries the
// final validation reason.
type Outcome struct {
	State    State
	Artifact string
	Attempts int
	Reason   string
}

// Published reports whether the run ended with a valid artifact.
func (o Outcome) Published() bool { return o.State == StatePublished }

// Verdict is a validation result: OK, or invalid with exactly one
// failing requirement (first failure wins).
type Verdict struct {
	OK     bool
	Reason string
}

// Ok returns the passing verdict.
func Ok() Verdict { return Verdict{OK: true} }

// Invalid returns a failing verdict with the given reason.
func Invalid(reason string) Verdict { return Verdict{Reason: reason} }
