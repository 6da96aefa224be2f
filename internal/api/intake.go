package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/auditflow/auditflow/internal/domain"
	"github.com/auditflow/auditflow/internal/intake"
	"github.com/auditflow/auditflow/internal/store"
	"github.com/go-chi/chi/v5"
)

// IntakeHandler exposes the conversational intake engine over HTTP.
type IntakeHandler struct {
	engine *intake.Engine
}

// NewIntakeHandler creates the handler for the intake routes.
func NewIntakeHandler(engine *intake.Engine) *IntakeHandler {
	return &IntakeHandler{engine: engine}
}

// RegisterRoutes registers the intake routes.
func (h *IntakeHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/audit", func(r chi.Router) {
		r.Post("/start", h.Start)
		r.Post("/chat", h.Chat)
		r.Get("/session/{sessionID}", h.Session)
		r.Post("/deliver", h.Deliver)
	})
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type deliverRequest struct {
	SessionID string `json:"sessionId"`
	Email     string `json:"email"`
}

// sessionView is the session projection returned by every intake route.
type sessionView struct {
	SessionID         string                        `json:"sessionId"`
	Phase             domain.Phase                  `json:"phase"`
	CompletionPercent int                           `json:"completionPercent"`
	Messages          []domain.Message              `json:"messages"`
	ExtractedData     map[domain.Phase]domain.Facts `json:"extractedData"`
	Roadmap           *domain.Roadmap               `json:"roadmap,omitempty"`
	PainScore         *int                          `json:"painScore,omitempty"`
	EstimatedValue    *float64                      `json:"estimatedValue,omitempty"`
}

func viewOf(s *domain.Session) sessionView {
	return sessionView{
		SessionID:         s.SessionID,
		Phase:             s.Phase,
		CompletionPercent: s.Phase.CompletionPercent(),
		Messages:          s.Messages,
		ExtractedData:     s.ExtractedData,
		Roadmap:           s.Roadmap,
		PainScore:         s.PainScore,
		EstimatedValue:    s.EstimatedValue,
	}
}

// Start opens a new intake session.
func (h *IntakeHandler) Start(w http.ResponseWriter, r *http.Request) {
	session, err := h.engine.Start(r.Context())
	if err != nil {
		slog.Error("failed to start intake session", "error", err)
		Error(w, http.StatusInternalServerError, "failed to start session")
		return
	}
	JSON(w, http.StatusCreated, viewOf(session))
}

// Chat submits one user answer to an existing session.
func (h *IntakeHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		Error(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	session, err := h.engine.Turn(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.writeTurnError(w, req.SessionID, err)
		return
	}
	JSON(w, http.StatusOK, viewOf(session))
}

// Session returns the full session snapshot, read-only.
func (h *IntakeHandler) Session(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.engine.Snapshot(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Error(w, http.StatusNotFound, "session not found")
			return
		}
		slog.Error("failed to load session", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	JSON(w, http.StatusOK, viewOf(session))
}

// Deliver re-sends the finished report to the given address.
func (h *IntakeHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	var req deliverRequest
	if err := decodeBody(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		Error(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	reportID, err := h.engine.Deliver(r.Context(), req.SessionID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			Error(w, http.StatusNotFound, "session not found")
		case errors.Is(err, intake.ErrReportNotReady):
			Error(w, http.StatusConflict, "report is not ready yet")
		case errors.Is(err, intake.ErrEmptyMessage):
			Error(w, http.StatusBadRequest, "email is required")
		default:
			slog.Error("failed to deliver report", "session_id", req.SessionID, "error", err)
			Error(w, http.StatusInternalServerError, "failed to deliver report")
		}
		return
	}
	JSON(w, http.StatusOK, map[string]any{"success": true, "reportId": reportID})
}

// writeTurnError maps engine errors to HTTP statuses. Transient model
// failures are retryable: nothing was committed, so the caller can
// resubmit the same answer.
func (h *IntakeHandler) writeTurnError(w http.ResponseWriter, sessionID string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		Error(w, http.StatusNotFound, "session not found")
	case errors.Is(err, intake.ErrEmptyMessage):
		Error(w, http.StatusBadRequest, "message must not be empty")
	case errors.Is(err, intake.ErrSessionCompleted):
		Error(w, http.StatusConflict, "session is already completed")
	case errors.Is(err, intake.ErrModelUnavailable):
		slog.Error("model unavailable for turn", "session_id", sessionID, "error", err)
		Error(w, http.StatusBadGateway, "assistant is temporarily unavailable, please retry")
	default:
		slog.Error("turn failed", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to process message")
	}
}
