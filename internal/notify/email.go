package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/auditflow/auditflow/internal/domain"
)

// EmailNotifier submits the report email to a transactional email
// endpoint. Only the payload contract lives here; rendering and delivery
// belong to the email service.
type EmailNotifier struct {
	Endpoint   string
	From       string
	BookingURL string
	Client     *http.Client
}

type emailPayload struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	TextBody string `json:"textBody"`
}

// Name identifies the channel in logs.
func (e *EmailNotifier) Name() string { return "email" }

// NotifyLeadCompleted sends the assessment summary to the lead.
func (e *EmailNotifier) NotifyLeadCompleted(ctx context.Context, lead *domain.Lead) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", firstNameOf(lead.Name))
	b.WriteString("Thanks for completing the automation opportunity assessment. Here is your summary:\n\n")
	fmt.Fprintf(&b, "Pain score: %d/100\n", lead.PainScore)
	fmt.Fprintf(&b, "Estimated annual value of automation: $%.0f\n", lead.EstimatedValue)
	if lead.TopOpportunity != "" {
		fmt.Fprintf(&b, "Top recommended opportunity: %s\n", lead.TopOpportunity)
	}
	if e.BookingURL != "" {
		fmt.Fprintf(&b, "\nBook a call to walk through the full roadmap: %s\n", e.BookingURL)
	}

	payload := emailPayload{
		From:     e.From,
		To:       lead.Email,
		Subject:  "Your automation opportunity report",
		TextBody: b.String(),
	}
	return postJSON(ctx, e.Client, e.Endpoint, "", payload)
}

func firstNameOf(full string) string {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "there"
	}
	return parts[0]
}
