// Package generation is the boundary to hosted language models. A Client
// produces free text or schema-conforming JSON from a system instruction and
// a user payload, and drives tool calling over an accumulated message log.
package generation

import (
	"context"
	"errors"
)

// Sentinel errors for generation calls.
var (
	ErrGenerationFailed = errors.New("generation failed")
	ErrEmptyResponse    = errors.New("model returned an empty response")
	ErrSchemaViolation  = errors.New("response does not match schema")
	ErrUnknownProvider  = errors.New("unknown generation provider")
)

// Role identifies the author of a message log record.
type Role string

// Message roles.
const (
	RoleSystem Role = "system"
	RoleHuman  Role = "human"
	RoleAI     Role = "ai"
	RoleTool   Role = "tool"
)

// ToolCall is a model request to run a named tool with arguments.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Message is one record of a tool-calling conversation. AI records may carry
// ToolCalls; tool records carry the ToolCallID and Name they answer.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// System creates a system instruction record.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// Human creates a user record.
func Human(content string) Message {
	return Message{Role: RoleHuman, Content: content}
}

// AI creates a model record from a reply.
func AI(reply *Reply) Message {
	return Message{Role: RoleAI, Content: reply.Content, ToolCalls: reply.ToolCalls}
}

// ToolResult creates a tool-result record answering call.
func ToolResult(call ToolCall, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: call.ID, Name: call.Name}
}

// Tool describes a callable tool to the model.
type Tool struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters"`
}

// Reply is the model's answer in a tool-calling exchange. An empty ToolCalls
// slice means the model is done.
type Reply struct {
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// Request is a single-shot generation request. A non-nil Schema asks for
// JSON conforming to it.
type Request struct {
	System      string
	Prompt      string
	Schema      *Schema
	Temperature float32
}

// Client is implemented by every model provider.
type Client interface {
	// Generate returns the model's text for a single-shot request.
	Generate(ctx context.Context, req Request) (string, error)
	// GenerateWithTools sends the full message log and tool catalog and
	// returns either tool requests or final text.
	GenerateWithTools(ctx context.Context, messages []Message, tools []Tool) (*Reply, error)
}

func systemInstruction(messages []Message) string {
	var out string
	for _, m := range messages {
		if m.Role != RoleSystem {
			continue
		}
		if out != "" {
			out += "\n\n"
		}
		out += m.Content
	}
	return out
}
