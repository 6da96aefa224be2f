// Package notify delivers completed-lead alerts to outbound channels.
// Delivery is fire-and-forget: a failed notification is logged and never
// affects the turn that triggered it.
package notify

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/auditflow/auditflow/internal/config"
	"github.com/auditflow/auditflow/internal/domain"
)

// Notifier pushes one completed lead to a single outbound channel.
type Notifier interface {
	Name() string
	NotifyLeadCompleted(ctx context.Context, lead *domain.Lead) error
}

// Dispatcher fans a lead out to every configured channel.
type Dispatcher struct {
	notifiers []Notifier
	timeout   time.Duration
}

// NewDispatcher builds a dispatcher from configuration; channels without
// an endpoint are skipped.
func NewDispatcher(cfg config.NotifyConfig) *Dispatcher {
	client := &http.Client{Timeout: cfg.Timeout}

	var notifiers []Notifier
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, &WebhookNotifier{URL: cfg.WebhookURL, Client: client, BookingURL: cfg.BookingURL})
	}
	if cfg.CRMBaseURL != "" {
		notifiers = append(notifiers, &CRMNotifier{BaseURL: cfg.CRMBaseURL, Token: cfg.CRMToken, Client: client})
	}
	if cfg.EmailEndpoint != "" {
		notifiers = append(notifiers, &EmailNotifier{Endpoint: cfg.EmailEndpoint, From: cfg.EmailFrom, Client: client, BookingURL: cfg.BookingURL})
	}

	return &Dispatcher{notifiers: notifiers, timeout: cfg.Timeout}
}

// NewDispatcherWith builds a dispatcher over explicit notifiers. Used in
// tests.
func NewDispatcherWith(timeout time.Duration, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{notifiers: notifiers, timeout: timeout}
}

// Dispatch delivers the lead to every channel in the background. It
// returns immediately; the caller's context is deliberately not used so
// an already-answered HTTP request cannot cancel delivery.
func (d *Dispatcher) Dispatch(lead *domain.Lead) {
	if len(d.notifiers) == 0 {
		slog.Info("no notification channels configured, skipping lead alert", "session_id", lead.SessionID)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		for _, n := range d.notifiers {
			if err := n.NotifyLeadCompleted(ctx, lead); err != nil {
				slog.Error("lead notification failed",
					"channel", n.Name(),
					"session_id", lead.SessionID,
					"error", err)
				continue
			}
			slog.Info("lead notification sent", "channel", n.Name(), "session_id", lead.SessionID)
		}
	}()
}
