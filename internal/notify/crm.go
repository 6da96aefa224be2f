package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/auditflow/auditflow/internal/domain"
)

// CRMNotifier upserts a contact in a HubSpot-style CRM with the lead's
// qualification properties.
type CRMNotifier struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

type crmContactPayload struct {
	Properties map[string]string `json:"properties"`
}

// Name identifies the channel in logs.
func (c *CRMNotifier) Name() string { return "crm" }

// NotifyLeadCompleted creates or updates the CRM contact for the lead.
func (c *CRMNotifier) NotifyLeadCompleted(ctx context.Context, lead *domain.Lead) error {
	firstName, lastName := splitName(lead.Name)

	payload := crmContactPayload{Properties: map[string]string{
		"email":           lead.Email,
		"firstname":       firstName,
		"lastname":        lastName,
		"company":         lead.Company,
		"industry":        lead.Industry,
		"lead_source":     "intake_assessment",
		"pain_score":      fmt.Sprintf("%d", lead.PainScore),
		"estimated_value": fmt.Sprintf("%.0f", lead.EstimatedValue),
		"budget_range":    lead.Budget,
		"timeline":        lead.Timeline,
	}}

	url := strings.TrimRight(c.BaseURL, "/") + "/crm/v3/objects/contacts"
	return postJSON(ctx, c.Client, url, c.Token, payload)
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
