// Package extract turns free-text answers into schema-valid facts using
// the model's tool-call capability.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/auditflow/auditflow/internal/domain"
	"github.com/auditflow/auditflow/internal/llm"
)

// ErrInvalidFacts reports that the model emitted a structured payload
// that does not satisfy the active phase's schema. The engine recovers
// locally by asking a clarifying question; the error never reaches the
// caller of a turn.
var ErrInvalidFacts = errors.New("extracted facts failed schema validation")

// Kind tags the two possible extraction outcomes.
type Kind string

const (
	// KindReply means the model answered with plain conversation text.
	KindReply Kind = "reply"
	// KindFacts means the model emitted a schema-valid structured payload.
	KindFacts Kind = "facts"
)

// Result is the tagged outcome of one extraction. Exactly one of Text
// and Facts is meaningful, selected by Kind.
type Result struct {
	Kind  Kind
	Text  string
	Facts domain.Facts
}

const extractToolName = "extract_data"

const systemPrompt = `You are a friendly, expert automation consultant conducting a structured opportunity assessment. Speak like a helpful expert, not a robot. Guide the conversation purposefully: ask for exactly the information the current step needs, nothing from future steps. When the visitor has provided information for the current step, call the '` + extractToolName + `' tool to record it instead of repeating it back. If information is still missing, ask one focused question about what is missing.`

// Extractor maps (phase, history) to a single tagged outcome. It holds
// no session state, which makes it testable with scripted model clients.
type Extractor struct {
	client llm.Client
}

// New creates an Extractor on top of a model client.
func New(client llm.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract invokes the model once, offering the phase's schema as a
// callable tool, and classifies the outcome. A structured payload that
// fails validation is reported as ErrInvalidFacts, never silently
// accepted.
func (e *Extractor) Extract(ctx context.Context, phase domain.Phase, instruction string, history []domain.Message) (Result, error) {
	schema, ok := SchemaFor(phase)
	if !ok {
		return Result{}, fmt.Errorf("phase %s has no extraction schema", phase)
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages,
		llm.Message{Role: "system", Content: systemPrompt},
		llm.Message{Role: "system", Content: instruction},
	)
	for _, m := range history {
		messages = append(messages, llm.Message{Role: string(m.Role), Content: m.Content})
	}

	tools := []llm.Tool{{
		Name:        extractToolName,
		Description: fmt.Sprintf("Record the structured facts collected during the %s step of the assessment.", phase),
		Parameters:  schema.Parameters(),
	}}

	resp, err := e.client.Chat(ctx, messages, tools)
	if err != nil {
		return Result{}, fmt.Errorf("invoke model for phase %s: %w", phase, err)
	}

	for _, tc := range resp.ToolCalls {
		if tc.Function.Name != extractToolName {
			continue
		}
		var raw map[string]any
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &raw); err != nil {
			return Result{}, fmt.Errorf("%w: malformed tool arguments: %v", ErrInvalidFacts, err)
		}
		// Some models nest the payload under a "data" key.
		if nested, ok := raw["data"].(map[string]any); ok {
			raw = nested
		}
		facts, err := schema.Validate(raw)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: KindFacts, Facts: facts}, nil
	}

	if resp.Content == "" {
		return Result{}, fmt.Errorf("%w: model returned neither text nor a tool call", ErrInvalidFacts)
	}
	return Result{Kind: KindReply, Text: resp.Content}, nil
}
