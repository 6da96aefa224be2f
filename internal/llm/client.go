// Package llm wraps the external completion model behind a small client
// interface so the extractor can be tested with scripted responses.
package llm

import "context"

// Message is one entry of the prompt history sent to the model.
type Message struct {
	Role    string
	Content string
}

// Tool describes a function the model may invoke instead of replying
// with plain text. Parameters is a JSON-schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// FunctionCall is the model's invocation of a tool, with raw JSON
// arguments.
type FunctionCall struct {
	Name      string
	Arguments string
}

// ToolCall is a single tool invocation in a model response.
type ToolCall struct {
	ID       string
	Function FunctionCall
}

// Response is the model's answer: plain content, tool calls, or both.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// Client is a completion model that can optionally call tools.
type Client interface {
	Chat(ctx context.Context, messages []Message, tools []Tool) (Response, error)
}
