package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/auditflow/auditflow/internal/domain"
)

func sampleLead() *domain.Lead {
	return &domain.Lead{
		SessionID:      "s-1",
		Name:           "Jane Miller",
		Email:          "jane@example.com",
		Company:        "Miller Goods",
		Industry:       "e-commerce",
		Budget:         "$5,000-$15,000",
		Timeline:       "1-3 months",
		PainScore:      72,
		EstimatedValue: 43200,
		TopOpportunity: "Multi-Platform Integration Hub",
	}
}

func TestWebhookNotifierPostsEmbed(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := &WebhookNotifier{URL: srv.URL, BookingURL: "https://cal.example.com/audit", Client: srv.Client()}
	if err := n.NotifyLeadCompleted(context.Background(), sampleLead()); err != nil {
		t.Fatalf("NotifyLeadCompleted failed: %v", err)
	}

	if len(got.Embeds) != 1 {
		t.Fatalf("Expected one embed, got %d", len(got.Embeds))
	}
	embed := got.Embeds[0]
	if embed.Color != 0xe74c3c {
		t.Errorf("Pain score 72 should color the embed red, got %#x", embed.Color)
	}
	if len(embed.Fields) != 3 {
		t.Errorf("Expected 3 embed fields, got %d", len(embed.Fields))
	}
	if !strings.Contains(embed.Fields[0].Value, "jane@example.com") {
		t.Errorf("Contact field missing email: %q", embed.Fields[0].Value)
	}
	if !strings.Contains(got.Content, "https://cal.example.com/audit") {
		t.Errorf("Booking link missing from content: %q", got.Content)
	}
}

func TestWebhookNotifierRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n := &WebhookNotifier{URL: srv.URL, Client: srv.Client()}
	if err := n.NotifyLeadCompleted(context.Background(), sampleLead()); err == nil {
		t.Fatal("Expected an error for a 400 response")
	}
}

func TestCRMNotifierUpsertsContact(t *testing.T) {
	var got crmContactPayload
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	n := &CRMNotifier{BaseURL: srv.URL, Token: "secret", Client: srv.Client()}
	if err := n.NotifyLeadCompleted(context.Background(), sampleLead()); err != nil {
		t.Fatalf("NotifyLeadCompleted failed: %v", err)
	}

	if gotPath != "/crm/v3/objects/contacts" {
		t.Errorf("Path = %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if got.Properties["firstname"] != "Jane" || got.Properties["lastname"] != "Miller" {
		t.Errorf("Name split wrong: %q %q", got.Properties["firstname"], got.Properties["lastname"])
	}
	if got.Properties["pain_score"] != "72" {
		t.Errorf("pain_score = %q", got.Properties["pain_score"])
	}
	if got.Properties["lead_source"] != "intake_assessment" {
		t.Errorf("lead_source = %q", got.Properties["lead_source"])
	}
}

func TestEmailNotifierSendsSummary(t *testing.T) {
	var got emailPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := &EmailNotifier{Endpoint: srv.URL, From: "reports@auditflow.io", BookingURL: "https://cal.example.com/audit", Client: srv.Client()}
	if err := n.NotifyLeadCompleted(context.Background(), sampleLead()); err != nil {
		t.Fatalf("NotifyLeadCompleted failed: %v", err)
	}

	if got.To != "jane@example.com" {
		t.Errorf("To = %q", got.To)
	}
	if got.From != "reports@auditflow.io" {
		t.Errorf("From = %q", got.From)
	}
	if !strings.Contains(got.TextBody, "Hi Jane,") {
		t.Errorf("Body should greet by first name: %q", got.TextBody)
	}
	if !strings.Contains(got.TextBody, "72/100") {
		t.Errorf("Body should include the pain score: %q", got.TextBody)
	}
	if !strings.Contains(got.TextBody, "Multi-Platform Integration Hub") {
		t.Errorf("Body should name the top opportunity: %q", got.TextBody)
	}
}

// blockingNotifier blocks until released so tests can observe that
// Dispatch never waits on delivery.
type blockingNotifier struct {
	release chan struct{}
	done    chan struct{}
}

func (b *blockingNotifier) Name() string { return "blocking" }

func (b *blockingNotifier) NotifyLeadCompleted(ctx context.Context, lead *domain.Lead) error {
	<-b.release
	close(b.done)
	return nil
}

func TestDispatchDoesNotBlockCaller(t *testing.T) {
	n := &blockingNotifier{release: make(chan struct{}), done: make(chan struct{})}
	d := NewDispatcherWith(time.Second, n)

	start := time.Now()
	d.Dispatch(sampleLead())
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("Dispatch blocked for %v", elapsed)
	}

	close(n.release)
	select {
	case <-n.done:
	case <-time.After(time.Second):
		t.Fatal("Notifier never ran in the background")
	}
}

// recordingNotifier records delivered leads.
type recordingNotifier struct {
	name string
	mu   sync.Mutex
	got  []*domain.Lead
	done chan struct{}
}

func (r *recordingNotifier) Name() string { return r.name }

func (r *recordingNotifier) NotifyLeadCompleted(ctx context.Context, lead *domain.Lead) error {
	r.mu.Lock()
	r.got = append(r.got, lead)
	r.mu.Unlock()
	if r.done != nil {
		close(r.done)
	}
	return nil
}

func TestDispatchFansOutToEveryChannel(t *testing.T) {
	first := &recordingNotifier{name: "first"}
	second := &recordingNotifier{name: "second", done: make(chan struct{})}
	d := NewDispatcherWith(time.Second, first, second)

	d.Dispatch(sampleLead())

	select {
	case <-second.done:
	case <-time.After(time.Second):
		t.Fatal("Second channel never received the lead")
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	if len(first.got) != 1 {
		t.Errorf("First channel received %d leads", len(first.got))
	}
}
