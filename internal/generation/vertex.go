package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/google/uuid"
)

type vertexClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewVertex creates a Client backed by Vertex AI. Structured output uses the
// native response schema and tool calling uses function declarations.
func NewVertex(ctx context.Context, cfg *VertexConfig, logger *slog.Logger) (Client, error) {
	if cfg.Project == "" || cfg.Location == "" {
		return nil, fmt.Errorf("vertex: project and location required")
	}

	client, err := genai.NewClient(ctx, cfg.Project, cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	return &vertexClient{
		client: client,
		model:  cfg.Model,
		logger: logger.With("provider", ProviderVertex, "model", cfg.Model),
	}, nil
}

func (c *vertexClient) Close() error {
	return c.client.Close()
}

func (c *vertexClient) Generate(ctx context.Context, req Request) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.System)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.Schema != nil {
		model.GenerationConfig.ResponseMIMEType = "application/json"
		model.GenerationConfig.ResponseSchema = toGenaiSchema(req.Schema)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	reply, err := readResponse(resp)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply.Content) == "" {
		return "", ErrEmptyResponse
	}
	return reply.Content, nil
}

func (c *vertexClient) GenerateWithTools(ctx context.Context, messages []Message, tools []Tool) (*Reply, error) {
	model := c.client.GenerativeModel(c.model)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0),
	}
	if system := systemInstruction(messages); system != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}

	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  toGenaiSchema(t.Parameters),
		})
	}
	model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}

	contents := toContents(messages)
	if len(contents) == 0 {
		return nil, fmt.Errorf("%w: no conversation to send", ErrGenerationFailed)
	}

	session := model.StartChat()
	session.History = contents[:len(contents)-1]

	resp, err := session.SendMessage(ctx, contents[len(contents)-1].Parts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	return readResponse(resp)
}

// toContents maps the message log onto alternating user and model turns.
// Consecutive records of the same turn are merged, so several tool results
// answering one model turn travel as a single user turn.
func toContents(messages []Message) []*genai.Content {
	var contents []*genai.Content

	appendPart := func(role string, part genai.Part) {
		if n := len(contents); n > 0 && contents[n-1].Role == role {
			contents[n-1].Parts = append(contents[n-1].Parts, part)
			return
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []genai.Part{part}})
	}

	for _, m := range messages {
		switch m.Role {
		case RoleHuman:
			appendPart("user", genai.Text(m.Content))
		case RoleAI:
			if m.Content != "" {
				appendPart("model", genai.Text(m.Content))
			}
			for _, call := range m.ToolCalls {
				appendPart("model", genai.FunctionCall{Name: call.Name, Args: call.Arguments})
			}
		case RoleTool:
			var response map[string]any
			if err := json.Unmarshal([]byte(m.Content), &response); err != nil {
				response = map[string]any{"content": m.Content}
			}
			appendPart("user", genai.FunctionResponse{Name: m.Name, Response: response})
		}
	}

	return contents
}

func readResponse(resp *genai.GenerateContentResponse) (*Reply, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrEmptyResponse
	}

	reply := &Reply{}
	var text strings.Builder

	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			reply.ToolCalls = append(reply.ToolCalls, ToolCall{
				ID:        uuid.NewString(),
				Name:      p.Name,
				Arguments: p.Args,
			})
		}
	}

	reply.Content = text.String()
	return reply, nil
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        toGenaiType(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
		Nullable:    s.Nullable,
		Items:       toGenaiSchema(s.Items),
	}

	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}

	return out
}

func toGenaiType(t string) genai.Type {
	switch t {
	case TypeObject:
		return genai.TypeObject
	case TypeArray:
		return genai.TypeArray
	case TypeNumber:
		return genai.TypeNumber
	case TypeInteger:
		return genai.TypeInteger
	case TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
