package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/auditflow/auditflow/internal/domain"
)

// WebhookNotifier posts a chat-webhook embed for every completed lead
// (Discord-compatible payload shape).
type WebhookNotifier struct {
	URL        string
	BookingURL string
	Client     *http.Client
}

type webhookEmbed struct {
	Title  string              `json:"title"`
	Color  int                 `json:"color"`
	Fields []webhookEmbedField `json:"fields"`
}

type webhookEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type webhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []webhookEmbed `json:"embeds"`
}

// Name identifies the channel in logs.
func (w *WebhookNotifier) Name() string { return "webhook" }

// NotifyLeadCompleted posts the lead alert embed.
func (w *WebhookNotifier) NotifyLeadCompleted(ctx context.Context, lead *domain.Lead) error {
	company := lead.Company
	if company == "" {
		company = "Not specified"
	}

	payload := webhookPayload{
		Embeds: []webhookEmbed{{
			Title: "New intake lead",
			Color: painScoreColor(lead.PainScore),
			Fields: []webhookEmbedField{
				{Name: "Contact", Inline: true,
					Value: fmt.Sprintf("**Name:** %s\n**Email:** %s\n**Company:** %s", lead.Name, lead.Email, company)},
				{Name: "Qualification", Inline: true,
					Value: fmt.Sprintf("**Pain Score:** %d/100\n**Timeline:** %s\n**Budget:** %s", lead.PainScore, orUnspecified(lead.Timeline), orUnspecified(lead.Budget))},
				{Name: "Value", Inline: false,
					Value: fmt.Sprintf("**Estimated Annual Value:** $%.0f\n**Top Opportunity:** %s", lead.EstimatedValue, orUnspecified(lead.TopOpportunity))},
			},
		}},
	}
	if w.BookingURL != "" {
		payload.Content = "Book a follow-up call: " + w.BookingURL
	}

	return postJSON(ctx, w.Client, w.URL, "", payload)
}

// painScoreColor maps severity to the embed accent color: red for hot
// leads, orange for warm, green otherwise.
func painScoreColor(score int) int {
	switch {
	case score >= 70:
		return 0xe74c3c
	case score >= 40:
		return 0xe67e22
	default:
		return 0x2ecc71
	}
}

func orUnspecified(v string) string {
	if v == "" {
		return "Not specified"
	}
	return v
}

// postJSON is the shared delivery helper for all channels. token, when
// set, is sent as a bearer credential.
func postJSON(ctx context.Context, client *http.Client, url, token string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
