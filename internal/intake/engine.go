// Package intake implements the phased conversational intake engine: a
// finite-state machine that walks a visitor through the discovery
// questions, drives structured extraction, and assembles the final
// recommendation report.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/auditflow/auditflow/internal/catalog"
	"github.com/auditflow/auditflow/internal/domain"
	"github.com/auditflow/auditflow/internal/extract"
	"github.com/auditflow/auditflow/internal/report"
	"github.com/auditflow/auditflow/internal/store"
	"github.com/google/uuid"
)

var (
	// ErrEmptyMessage reports a blank user utterance.
	ErrEmptyMessage = errors.New("message must not be empty")
	// ErrSessionCompleted reports a turn submitted to a read-only session.
	ErrSessionCompleted = errors.New("session is already completed")
	// ErrReportNotReady reports a delivery request before the session
	// finished.
	ErrReportNotReady = errors.New("report is not ready for delivery")
	// ErrModelUnavailable reports a model invocation that kept failing
	// after the retry. The turn is not committed; resubmitting is safe.
	ErrModelUnavailable = errors.New("model invocation failed")
)

// maxExtractionCalls bounds the extractor invocations per turn: one
// primary call plus one repair call when the model emits an invalid
// structured payload. Exceeding the budget degrades to a free-text
// fallback instead of looping.
const maxExtractionCalls = 2

// Extractor is the structured-extraction dependency of the engine.
type Extractor interface {
	Extract(ctx context.Context, phase domain.Phase, instruction string, history []domain.Message) (extract.Result, error)
}

// Matcher ranks the opportunity catalog against collected facts.
type Matcher interface {
	Match(data map[domain.Phase]domain.Facts) []catalog.Match
}

// Dispatcher signals the outbound notification channels that a
// completed session is ready. Implementations must not block.
type Dispatcher interface {
	Dispatch(lead *domain.Lead)
}

// Engine orchestrates one conversation turn at a time. Each turn is a
// strictly sequential unit of work: load, extract, merge, persist, and
// on completion match and assemble. The engine owns no background
// goroutines; notification dispatch is delegated.
type Engine struct {
	store      store.Store
	extractor  Extractor
	matcher    Matcher
	assembler  *report.Assembler
	dispatcher Dispatcher

	sessionTTL   time.Duration
	retryBackoff time.Duration
}

// NewEngine wires the intake engine from its collaborators.
func NewEngine(s store.Store, ex Extractor, m Matcher, a *report.Assembler, d Dispatcher, sessionTTL time.Duration) *Engine {
	return &Engine{
		store:        s,
		extractor:    ex,
		matcher:      m,
		assembler:    a,
		dispatcher:   d,
		sessionTTL:   sessionTTL,
		retryBackoff: 500 * time.Millisecond,
	}
}

// Start creates a fresh session in the discovery phase and returns it
// with the opening assistant message already appended.
func (e *Engine) Start(ctx context.Context) (*domain.Session, error) {
	session := domain.NewSession(uuid.NewString(), time.Now())
	spec, _ := specFor(domain.PhaseDiscovery)
	session.Append(domain.RoleAssistant, spec.Opening)

	if err := e.store.Put(ctx, session, e.sessionTTL); err != nil {
		return nil, fmt.Errorf("persist new session: %w", err)
	}

	slog.Info("intake session started", "session_id", session.SessionID)
	return session, nil
}

// Snapshot returns the current session state, read-only.
func (e *Engine) Snapshot(ctx context.Context, sessionID string) (*domain.Session, error) {
	return e.store.Get(ctx, sessionID)
}

// Turn processes one user utterance: extract facts, merge them, advance
// the phase when its schema is satisfied, and persist. Nothing is
// committed when the turn fails, so the caller can safely resubmit the
// same answer.
func (e *Engine) Turn(ctx context.Context, sessionID, utterance string) (*domain.Session, error) {
	if strings.TrimSpace(utterance) == "" {
		return nil, ErrEmptyMessage
	}

	session, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Phase.Terminal() {
		return nil, ErrSessionCompleted
	}

	session.Append(domain.RoleUser, utterance)

	result, err := e.extractBounded(ctx, session)
	if err != nil {
		return nil, err
	}

	switch result.Kind {
	case extract.KindFacts:
		session.MergeFacts(session.Phase, result.Facts)
		prev := session.Phase
		next := NextPhase(session.Phase, session.ExtractedData[session.Phase])
		if next != prev {
			session.Phase = next
			spec, _ := specFor(next)
			session.Append(domain.RoleAssistant, spec.Opening)
			slog.Info("intake phase advanced",
				"session_id", session.SessionID, "from", prev, "to", next)
		} else {
			session.Append(domain.RoleAssistant, clarification(session.Phase, session.ExtractedData[session.Phase]))
		}
	case extract.KindReply:
		session.Append(domain.RoleAssistant, result.Text)
	}

	completed := session.Phase == domain.PhaseComplete
	if completed {
		e.finalize(session)
	}

	if err := e.store.Put(ctx, session, e.sessionTTL); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	if completed {
		e.dispatcher.Dispatch(e.buildLead(session))
	}

	return session, nil
}

// Deliver re-sends the finished report to the given address. Only valid
// once the session has finished.
func (e *Engine) Deliver(ctx context.Context, sessionID, address string) (string, error) {
	session, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if session.Phase != domain.PhaseFinished {
		return "", ErrReportNotReady
	}

	lead := e.buildLead(session)
	if address != "" {
		lead.Email = address
	}
	if lead.Email == "" {
		return "", ErrEmptyMessage
	}

	e.dispatcher.Dispatch(lead)
	return session.SessionID, nil
}

// extractBounded runs the extractor under the per-turn step budget.
// Transport errors are retried once with backoff inside extractOnce;
// invalid structured payloads consume the repair call; an exhausted
// budget degrades to a free-text fallback asking the visitor to restate.
func (e *Engine) extractBounded(ctx context.Context, session *domain.Session) (extract.Result, error) {
	spec, ok := specFor(session.Phase)
	if !ok {
		return extract.Result{}, fmt.Errorf("phase %s is not conversational", session.Phase)
	}

	for call := 0; call < maxExtractionCalls; call++ {
		result, err := e.extractOnce(ctx, session.Phase, spec.Instruction, session.Messages)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, extract.ErrInvalidFacts) {
			slog.Warn("extraction payload rejected",
				"session_id", session.SessionID, "phase", session.Phase,
				"call", call+1, "error", err)
			continue
		}
		return extract.Result{}, err
	}

	slog.Warn("extraction budget exhausted, degrading to restate prompt",
		"session_id", session.SessionID, "phase", session.Phase)
	return extract.Result{
		Kind: extract.KindReply,
		Text: restatePrompt(session.Phase, session.ExtractedData[session.Phase]),
	}, nil
}

// extractOnce performs a single logical extraction, retrying transport
// failures once with backoff. Schema violations pass through unretried;
// the budget in extractBounded accounts for those.
func (e *Engine) extractOnce(ctx context.Context, phase domain.Phase, instruction string, history []domain.Message) (extract.Result, error) {
	result, err := e.extractor.Extract(ctx, phase, instruction, history)
	if err == nil || errors.Is(err, extract.ErrInvalidFacts) {
		return result, err
	}

	slog.Warn("model invocation failed, retrying", "phase", phase, "error", err)
	select {
	case <-time.After(e.retryBackoff):
	case <-ctx.Done():
		return extract.Result{}, ctx.Err()
	}

	result, err = e.extractor.Extract(ctx, phase, instruction, history)
	if err == nil || errors.Is(err, extract.ErrInvalidFacts) {
		return result, err
	}
	return extract.Result{}, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
}

// finalize runs the matcher and assembler for a session that just
// reached completion, attaches the report, and marks the session
// finished.
func (e *Engine) finalize(session *domain.Session) {
	matches := e.matcher.Match(session.ExtractedData)
	rep := e.assembler.Assemble(matches, session.ExtractedData)

	session.Roadmap = rep.Roadmap
	session.PainScore = &rep.PainScore
	session.EstimatedValue = &rep.EstimatedValue
	session.Phase = domain.PhaseFinished

	slog.Info("intake session finished",
		"session_id", session.SessionID,
		"matches", len(matches),
		"pain_score", rep.PainScore,
		"estimated_value", rep.EstimatedValue)
}

// buildLead projects the finished session into the notification payload.
func (e *Engine) buildLead(session *domain.Session) *domain.Lead {
	lead := &domain.Lead{
		SessionID: session.SessionID,
		Name:      session.Fact(domain.PhaseEmailRequest, "name"),
		Email:     session.Fact(domain.PhaseEmailRequest, "email"),
		Company:   session.Fact(domain.PhaseEmailRequest, "company"),
		Industry:  session.Fact(domain.PhaseDiscovery, "industry"),
		Budget:    session.Fact(domain.PhaseQualification, "budget"),
		Timeline:  session.Fact(domain.PhaseQualification, "timeline"),
	}
	if session.PainScore != nil {
		lead.PainScore = *session.PainScore
	}
	if session.EstimatedValue != nil {
		lead.EstimatedValue = *session.EstimatedValue
	}
	if session.Roadmap != nil && len(session.Roadmap.Phases) > 0 {
		lead.TopOpportunity = session.Roadmap.Phases[0].Name
	}
	return lead
}
