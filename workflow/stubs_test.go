package workflow_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/JaimeStill/counsel/internal/extracted"
	"github.com/JaimeStill/counsel/internal/generation"
	"github.com/JaimeStill/counsel/workflow"
)

const (
	extractionJSON = `{
  "clauses": [
    {"clause_type": "indemnification", "title": "Mutual Indemnity", "text": "Each party shall indemnify...", "section_reference": "Section 8.1"},
    {"clause_type": "termination", "title": "Termination for Convenience", "text": "Either party may terminate...", "section_reference": "Section 12"}
  ],
  "contract_type": "MSA",
  "parties": ["Acme Corp", "Globex Ltd"],
  "effective_date": "2024-01-01"
}`

	riskJSON = `{
  "overall_risk": "medium",
  "clause_assessments": [
    {"clause_type": "indemnification", "section_reference": "Section 8.1", "risk_level": "high", "risk_reasoning": "Uncapped", "key_concerns": ["no cap"], "recommendation": "Negotiate a cap"},
    {"clause_type": "termination", "section_reference": "Section 12", "risk_level": "low", "risk_reasoning": "Balanced", "key_concerns": [], "recommendation": "Accept"}
  ],
  "missing_clauses": ["force_majeure"],
  "summary_of_concerns": "Indemnity is uncapped."
}`

	summaryText = "1. Contract Overview: MSA between Acme Corp and Globex Ltd."
)

var discard = slog.New(slog.DiscardHandler)

func request(id, tool string) *generation.Reply {
	return &generation.Reply{ToolCalls: []generation.ToolCall{{
		ID:        id,
		Name:      tool,
		Arguments: map[string]any{"file_path": "/contracts/msa.pdf"},
	}}}
}

func answer(text string) *generation.Reply {
	return &generation.Reply{Content: text}
}

// stubClient scripts the reasoning turns of the parse loop and answers the
// structured steps by prompt.
type stubClient struct {
	mu sync.Mutex

	reason func(turn int, messages []generation.Message) (*generation.Reply, error)
	turns  int

	extraction string
	risk       string
	summary    string
	failOn     string
	failWith   error
	panicOn    string

	requests []generation.Request
}

func newStubClient(replies ...*generation.Reply) *stubClient {
	return &stubClient{
		reason: func(turn int, _ []generation.Message) (*generation.Reply, error) {
			if turn >= len(replies) {
				return answer("done"), nil
			}
			return replies[turn], nil
		},
		extraction: extractionJSON,
		risk:       riskJSON,
		summary:    summaryText,
	}
}

func (c *stubClient) GenerateWithTools(ctx context.Context, messages []generation.Message, tools []generation.Tool) (*generation.Reply, error) {
	c.mu.Lock()
	turn := c.turns
	c.turns++
	c.mu.Unlock()

	if len(tools) == 0 {
		return nil, errors.New("no tools offered")
	}
	return c.reason(turn, messages)
}

func (c *stubClient) Generate(ctx context.Context, req generation.Request) (string, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	stage := stageOf(req.Prompt)
	if stage == c.panicOn {
		panic("client exploded")
	}
	if stage == c.failOn {
		return "", c.failWith
	}

	switch stage {
	case "extract":
		return c.extraction, nil
	case "assess":
		return c.risk, nil
	case "summarise":
		return c.summary, nil
	}
	return "", errors.New("unexpected prompt")
}

func (c *stubClient) reasoningTurns() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.turns
}

func stageOf(prompt string) string {
	switch {
	case strings.HasPrefix(prompt, "Extract all key clauses"):
		return "extract"
	case strings.HasPrefix(prompt, "Assess the risk"):
		return "assess"
	case strings.HasPrefix(prompt, "Produce an executive summary"):
		return "summarise"
	}
	return ""
}

// stubTools answers tool calls from a per-tool script and records the
// execution order.
type stubTools struct {
	mu      sync.Mutex
	outputs map[string][]extracted.Output
	invoked []string
	panics  bool
}

func newStubTools() *stubTools {
	return &stubTools{outputs: make(map[string][]extracted.Output)}
}

func (t *stubTools) on(tool string, outs ...extracted.Output) *stubTools {
	t.outputs[tool] = append(t.outputs[tool], outs...)
	return t
}

func (t *stubTools) Tools() []generation.Tool {
	return []generation.Tool{
		{Name: "parse_pdf", Description: "pdf"},
		{Name: "parse_docx", Description: "docx"},
		{Name: "ocr_scanned_document", Description: "ocr"},
	}
}

func (t *stubTools) Invoke(ctx context.Context, call generation.ToolCall) extracted.Output {
	if t.panics {
		panic("tool exploded")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.invoked = append(t.invoked, call.Name)

	queue := t.outputs[call.Name]
	if len(queue) == 0 {
		return extracted.Output{Error: "no output scripted for " + call.Name}
	}
	out := queue[0]
	if len(queue) > 1 {
		t.outputs[call.Name] = queue[1:]
	}
	return out
}

func (t *stubTools) order() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.invoked...)
}

func text(s string, pages int, method string) extracted.Output {
	return extracted.Output{Result: extracted.Result{
		FullText:  s,
		Method:    method,
		PageCount: pages,
		CharCount: len(s),
	}}
}

func testConfig() workflow.Config {
	cfg := workflow.Config{}
	if err := cfg.Finalize(nil); err != nil {
		panic(err)
	}
	return cfg
}

func newPipeline(client *stubClient, tools *stubTools, mutate ...func(*workflow.Config)) (*workflow.Pipeline, error) {
	cfg := testConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	return workflow.New(&workflow.Runtime{
		Generation: client,
		Tools:      tools,
		Config:     cfg,
		Logger:     discard,
	})
}
