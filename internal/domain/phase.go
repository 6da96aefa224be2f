package domain

// Phase identifies one stage of the intake conversation.
type Phase string

const (
	PhaseDiscovery     Phase = "discovery"
	PhasePainPoints    Phase = "pain_points"
	PhaseQualification Phase = "qualification"
	PhaseEmailRequest  Phase = "email_request"
	PhaseComplete      Phase = "complete"
	// PhaseFinished marks a session whose report has been assembled and
	// whose post-completion side effects have run. Terminal.
	PhaseFinished Phase = "finished"
)

// phaseOrder is the fixed conversational sequence. A session only ever
// moves forward through it.
var phaseOrder = []Phase{
	PhaseDiscovery,
	PhasePainPoints,
	PhaseQualification,
	PhaseEmailRequest,
	PhaseComplete,
	PhaseFinished,
}

// completionPercent maps each phase to how far through the intake the
// visitor is. Used by the API response and the frontend progress bar.
var completionPercent = map[Phase]int{
	PhaseDiscovery:     20,
	PhasePainPoints:    40,
	PhaseQualification: 60,
	PhaseEmailRequest:  80,
	PhaseComplete:      90,
	PhaseFinished:      100,
}

// Valid reports whether p is a known phase tag.
func (p Phase) Valid() bool {
	for _, known := range phaseOrder {
		if p == known {
			return true
		}
	}
	return false
}

// Index returns the position of p in the conversational sequence, or -1
// for unknown tags.
func (p Phase) Index() int {
	for i, known := range phaseOrder {
		if p == known {
			return i
		}
	}
	return -1
}

// Before reports whether p comes strictly before other in the sequence.
func (p Phase) Before(other Phase) bool {
	return p.Index() < other.Index()
}

// CompletionPercent returns the progress value for the phase.
func (p Phase) CompletionPercent() int {
	return completionPercent[p]
}

// Terminal reports whether the session is read-only in this phase.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseFinished
}
