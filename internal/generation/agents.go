package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/counsel/pkg/formatting"
)

// transcriptLimit caps how much of a single tool result is replayed to the
// model in the tool protocol prompt.
const transcriptLimit = 8000

const toolProtocolSpec = `Respond with a JSON object matching this exact structure:

{
  "tool_calls": [
    {"name": "<tool name>", "arguments": {"<argument>": "<value>"}}
  ],
  "response": "<text>"
}

Field constraints:
- tool_calls: Tools to run next, in the order they should run. Use an empty
  array when no more tools are needed.
- response: Your reasoning or, when tool_calls is empty, your final answer.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Only call tools listed in the catalog, with the arguments they declare`

type protocolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type protocolReply struct {
	ToolCalls []protocolCall `json:"tool_calls"`
	Response  string         `json:"response"`
}

type agentsClient struct {
	cfg    gaconfig.AgentConfig
	logger *slog.Logger
}

// NewAgents creates a Client backed by a go-agents agent configuration.
// Structured output is requested by appending the schema to the prompt and
// tool calling runs over a JSON protocol.
func NewAgents(cfg gaconfig.AgentConfig, logger *slog.Logger) Client {
	return &agentsClient{
		cfg:    cfg,
		logger: logger.With("provider", ProviderAgents),
	}
}

func (c *agentsClient) Generate(ctx context.Context, req Request) (string, error) {
	var sb strings.Builder
	sb.WriteString(req.System)
	sb.WriteString("\n\n")
	sb.WriteString(req.Prompt)

	if req.Schema != nil {
		sb.WriteString("\n\nRespond with valid JSON only, no markdown fencing, matching this JSON schema:\n\n")
		sb.WriteString(req.Schema.String())
	}

	return c.chat(ctx, sb.String())
}

func (c *agentsClient) GenerateWithTools(ctx context.Context, messages []Message, tools []Tool) (*Reply, error) {
	content, err := c.chat(ctx, composeToolPrompt(messages, tools))
	if err != nil {
		return nil, err
	}

	parsed, err := formatting.Parse[protocolReply](content)
	if err != nil {
		c.logger.DebugContext(ctx, "tool protocol reply was not json, treating as final text")
		return &Reply{Content: strings.TrimSpace(content)}, nil
	}

	reply := &Reply{Content: parsed.Response}
	for _, call := range parsed.ToolCalls {
		if call.Name == "" {
			continue
		}
		reply.ToolCalls = append(reply.ToolCalls, ToolCall{
			ID:        uuid.NewString(),
			Name:      call.Name,
			Arguments: call.Arguments,
		})
	}

	return reply, nil
}

func (c *agentsClient) chat(ctx context.Context, prompt string) (string, error) {
	a, err := agent.New(&c.cfg)
	if err != nil {
		return "", fmt.Errorf("%w: create agent: %w", ErrGenerationFailed, err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	content := resp.Content()
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

func composeToolPrompt(messages []Message, tools []Tool) string {
	var sb strings.Builder
	sb.WriteString(systemInstruction(messages))

	sb.WriteString("\n\nAvailable tools:\n")
	for _, t := range tools {
		fmt.Fprintf(&sb, "\n- %s: %s\n", t.Name, t.Description)
		if t.Parameters != nil {
			fmt.Fprintf(&sb, "  arguments schema: %s\n", compactJSON(t.Parameters))
		}
	}

	sb.WriteString("\n")
	sb.WriteString(toolProtocolSpec)
	sb.WriteString("\n\nConversation so far:\n")

	for _, m := range messages {
		switch m.Role {
		case RoleHuman:
			fmt.Fprintf(&sb, "\n[user]\n%s\n", m.Content)
		case RoleAI:
			fmt.Fprintf(&sb, "\n[assistant]\n%s\n", m.Content)
			for _, call := range m.ToolCalls {
				fmt.Fprintf(&sb, "requested %s(%s)\n", call.Name, compactJSON(call.Arguments))
			}
		case RoleTool:
			fmt.Fprintf(&sb, "\n[tool %s]\n%s\n", m.Name, clip(m.Content, transcriptLimit))
		}
	}

	return sb.String()
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// clip keeps at most n bytes of s, cut on a rune boundary.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s\n[... %d more characters]", s[:cut], utf8.RuneCountInString(s[cut:]))
}
