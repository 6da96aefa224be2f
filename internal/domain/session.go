// Package domain defines the core data model for the intake engine.
package domain

import (
	"time"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the session transcript. The transcript is
// append-only; messages are never reordered or deleted.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Facts holds the structured fields extracted for one phase. Values are
// primitives (string or float64) keyed by schema field name.
type Facts map[string]any

// Session is the durable unit of conversation state, keyed by an opaque
// identifier. It is mutated once per turn by the intake engine and
// becomes read-only once the phase is terminal.
type Session struct {
	SessionID     string          `json:"sessionId"`
	Phase         Phase           `json:"phase"`
	Messages      []Message       `json:"messages"`
	ExtractedData map[Phase]Facts `json:"extractedData"`

	// Populated at completion, nil before.
	Roadmap        *Roadmap `json:"roadmap,omitempty"`
	PainScore      *int     `json:"painScore,omitempty"`
	EstimatedValue *float64 `json:"estimatedValue,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewSession returns a fresh session in the discovery phase.
func NewSession(sessionID string, now time.Time) *Session {
	return &Session{
		SessionID:     sessionID,
		Phase:         PhaseDiscovery,
		ExtractedData: make(map[Phase]Facts),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Append adds a message to the transcript.
func (s *Session) Append(role Role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// MergeFacts merges extracted fields into the slot for the given phase,
// last write wins per field. Only the current phase's slot is ever
// mutated; slots for phases already passed stay frozen.
func (s *Session) MergeFacts(phase Phase, facts Facts) {
	if s.ExtractedData == nil {
		s.ExtractedData = make(map[Phase]Facts)
	}
	slot := s.ExtractedData[phase]
	if slot == nil {
		slot = make(Facts, len(facts))
		s.ExtractedData[phase] = slot
	}
	for k, v := range facts {
		slot[k] = v
	}
}

// Fact returns the named field from a phase slot, or "" if absent or not
// a string.
func (s *Session) Fact(phase Phase, field string) string {
	if slot, ok := s.ExtractedData[phase]; ok {
		if v, ok := slot[field].(string); ok {
			return v
		}
	}
	return ""
}

// Clone returns a deep copy of the session. Turn processing mutates a
// copy so that a failed turn never leaks partial changes back into the
// store's view of the session.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Messages = make([]Message, len(s.Messages))
	copy(cp.Messages, s.Messages)
	cp.ExtractedData = make(map[Phase]Facts, len(s.ExtractedData))
	for phase, facts := range s.ExtractedData {
		slot := make(Facts, len(facts))
		for k, v := range facts {
			slot[k] = v
		}
		cp.ExtractedData[phase] = slot
	}
	if s.Roadmap != nil {
		rm := *s.Roadmap
		rm.Phases = make([]RoadmapPhase, len(s.Roadmap.Phases))
		copy(rm.Phases, s.Roadmap.Phases)
		cp.Roadmap = &rm
	}
	if s.PainScore != nil {
		v := *s.PainScore
		cp.PainScore = &v
	}
	if s.EstimatedValue != nil {
		v := *s.EstimatedValue
		cp.EstimatedValue = &v
	}
	return &cp
}
