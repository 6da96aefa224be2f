package intake

import (
	"strings"

	"github.com/auditflow/auditflow/internal/domain"
	"github.com/auditflow/auditflow/internal/extract"
)

// PhaseSpec is one row of the finite-state table driving the intake
// conversation: the phase tag, its successor, the opening question asked
// when the phase begins, and the instruction handed to the extractor.
type PhaseSpec struct {
	Tag         domain.Phase
	Next        domain.Phase
	Opening     string
	Instruction string
}

// phaseTable is the ordered list of conversational phases. Transitions
// only ever move forward through it.
var phaseTable = []PhaseSpec{
	{
		Tag:     domain.PhaseDiscovery,
		Next:    domain.PhasePainPoints,
		Opening: "Hi! I'm here to run a quick automation opportunity assessment for your business. To start: what industry are you in, and roughly how many employees do you have?",
		Instruction: "You are in the discovery step. Learn the visitor's industry and company size, " +
			"and optionally how they acquire customers. Do not ask about challenges, budget, or contact details yet.",
	},
	{
		Tag:     domain.PhasePainPoints,
		Next:    domain.PhaseQualification,
		Opening: "Thanks for sharing! Now let's talk about your challenges. What manual, repetitive tasks slow your team down? Where do approvals get stuck, and where does information get lost between systems?",
		Instruction: "You are in the pain points step. Learn which manual tasks, decision bottlenecks, " +
			"and data silos the visitor struggles with. Do not ask about budget or contact details yet.",
	},
	{
		Tag:     domain.PhaseQualification,
		Next:    domain.PhaseEmailRequest,
		Opening: "Got it. To tailor the recommendations: what budget range are you considering, what's your timeline, and what's your role in this decision?",
		Instruction: "You are in the qualification step. Learn the visitor's budget range, timeline, " +
			"and role in the buying decision. Do not ask for contact details yet.",
	},
	{
		Tag:     domain.PhaseEmailRequest,
		Next:    domain.PhaseComplete,
		Opening: "Great — I have everything I need to build your personalized report. Who should I send it to? Please share your name and email address.",
		Instruction: "You are in the contact step. Collect the visitor's name and email address, and " +
			"optionally their company name, so the report can be delivered.",
	},
	{
		Tag:     domain.PhaseComplete,
		Next:    domain.PhaseFinished,
		Opening: "Perfect, thank you! I'm putting together your automation roadmap now — the full report is on its way to your inbox.",
	},
}

// specFor looks up the table row for a phase.
func specFor(phase domain.Phase) (PhaseSpec, bool) {
	for _, spec := range phaseTable {
		if spec.Tag == phase {
			return spec, true
		}
	}
	return PhaseSpec{}, false
}

// NextPhase is the pure transition function: a phase advances exactly
// when the accumulated facts cover every required field of its schema.
func NextPhase(phase domain.Phase, facts domain.Facts) domain.Phase {
	spec, ok := specFor(phase)
	if !ok {
		return phase
	}
	if len(extract.MissingFields(phase, facts)) > 0 {
		return phase
	}
	return spec.Next
}

// clarification builds the follow-up question asking only for the
// required fields still missing from the phase.
func clarification(phase domain.Phase, facts domain.Facts) string {
	labels := extract.MissingLabels(phase, facts)
	switch len(labels) {
	case 0:
		return "Could you tell me a bit more about that?"
	case 1:
		return "Thanks! Could you also tell me " + labels[0] + "?"
	default:
		last := labels[len(labels)-1]
		rest := strings.Join(labels[:len(labels)-1], ", ")
		return "Thanks! Could you also tell me " + rest + " and " + last + "?"
	}
}

// restatePrompt is the degraded reply used when the extraction budget
// for a turn is exhausted.
func restatePrompt(phase domain.Phase, facts domain.Facts) string {
	labels := extract.MissingLabels(phase, facts)
	if len(labels) == 0 {
		return "Sorry, I didn't quite catch that. Could you say it again in different words?"
	}
	return "Sorry, I didn't quite catch that. Could you restate your answer? I'm trying to understand " + strings.Join(labels, ", ") + "."
}
