package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/JaimeStill/counsel/internal/generation"
	"github.com/JaimeStill/counsel/internal/infrastructure"
	"github.com/JaimeStill/counsel/workflow"
)

const (
	extractionJSON = `{"clauses":[{"clause_type":"confidentiality","title":"Non-Disclosure","text":"The Recipient shall hold all Confidential Information in strict confidence.","section_reference":"Section 2"}],"contract_type":"NDA","parties":["Acme Corp","Globex Ltd"],"effective_date":null}`
	riskJSON       = `{"overall_risk":"low","clause_assessments":[{"clause_type":"confidentiality","section_reference":"Section 2","risk_level":"low","risk_reasoning":"Standard mutual terms","key_concerns":[],"recommendation":"Accept"}],"missing_clauses":["governing_law"],"summary_of_concerns":"None material."}`
	summaryText    = "Contract Overview: mutual NDA between Acme Corp and Globex Ltd."
)

// scriptedClient asks for parse_docx once, then answers every structured
// step by prompt prefix.
type scriptedClient struct {
	mu    sync.Mutex
	path  string
	turns int
	parse bool
}

func (c *scriptedClient) GenerateWithTools(_ context.Context, _ []generation.Message, _ []generation.Tool) (*generation.Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns++

	if c.turns == 1 && c.parse {
		return &generation.Reply{ToolCalls: []generation.ToolCall{{
			ID:        "call-1",
			Name:      "parse_docx",
			Arguments: map[string]any{"file_path": c.path},
		}}}, nil
	}
	return &generation.Reply{Content: "A short mutual NDA."}, nil
}

func (c *scriptedClient) Generate(_ context.Context, req generation.Request) (string, error) {
	switch {
	case strings.HasPrefix(req.Prompt, "Extract all key clauses"):
		return extractionJSON, nil
	case strings.HasPrefix(req.Prompt, "Assess the risk"):
		return riskJSON, nil
	case strings.HasPrefix(req.Prompt, "Produce an executive summary"):
		return summaryText, nil
	}
	return "", errors.New("unexpected prompt")
}

func writeDOCX(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "nda.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create error: %v", err)
	}
	io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>MUTUAL NON-DISCLOSURE AGREEMENT</w:t></w:r></w:p>
<w:p><w:r><w:t>2. The Recipient shall hold all Confidential Information in strict confidence.</w:t></w:r></w:p>
</w:body></w:document>`)
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close error: %v", err)
	}
	return path
}

func writeConfig(t *testing.T) string {
	t.Helper()
	t.Setenv("COUNSEL_ENV", "")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("shutdown_timeout = \"5s\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func execute(t *testing.T, client generation.Client, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr, infrastructure.Options{
		LogOutput:  io.Discard,
		Generation: client,
	})
	return code, stdout.String(), stderr.String()
}

func TestUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, exitUsage},
		{"unknown command", []string{"review"}, exitUsage},
		{"missing path", []string{"analyze"}, exitUsage},
		{"two paths", []string{"analyze", "a.pdf", "b.pdf"}, exitUsage},
		{"unknown flag", []string{"analyze", "-fast", "a.pdf"}, exitUsage},
		{"help", []string{"help"}, exitOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _, _ := execute(t, &scriptedClient{}, tt.args...); code != tt.want {
				t.Errorf("exit code = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestAnalyzeText(t *testing.T) {
	path := writeDOCX(t)
	cfg := writeConfig(t)

	code, out, stderr := execute(t, &scriptedClient{path: path, parse: true}, "analyze", "-config", cfg, path)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s\nstdout: %s", code, stderr, out)
	}

	for _, want := range []string{
		"Analysing contract: " + path,
		"LEGAL CONTRACT ANALYSIS REPORT",
		"Contract Type: NDA",
		"[CONFIDENTIALITY] Non-Disclosure",
		"RISK ASSESSMENT",
		"governing_law",
		summaryText,
		"Analysis complete.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q", want)
		}
	}
	if strings.Contains(out, "✓ Completed") {
		t.Error("progress lines printed without -verbose")
	}
}

func TestAnalyzeVerbose(t *testing.T) {
	path := writeDOCX(t)
	cfg := writeConfig(t)

	code, out, _ := execute(t, &scriptedClient{path: path, parse: true}, "analyze", "-verbose", "-config", cfg, path)
	if code != exitOK {
		t.Fatalf("exit code = %d", code)
	}

	for _, node := range []string{workflow.NodeParser, workflow.NodeClauseExtractor, workflow.NodeRiskAssessor, workflow.NodeSummariser} {
		if !strings.Contains(out, "  ✓ Completed: "+node+"\n") {
			t.Errorf("stdout missing progress for %s", node)
		}
	}
}

func TestAnalyzeJSON(t *testing.T) {
	path := writeDOCX(t)
	cfg := writeConfig(t)

	code, out, _ := execute(t, &scriptedClient{path: path, parse: true}, "analyze", "-json", "-config", cfg, path)
	if code != exitOK {
		t.Fatalf("exit code = %d", code)
	}

	var result workflow.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, out)
	}
	if !result.State.Completed() || result.State.Summary != summaryText {
		t.Errorf("state = %+v", result.State)
	}
}

func TestAnalyzePipelineFailure(t *testing.T) {
	path := writeDOCX(t)
	cfg := writeConfig(t)

	code, out, _ := execute(t, &scriptedClient{path: path}, "analyze", "-config", cfg, path)
	if code != exitPipeline {
		t.Fatalf("exit code = %d, want %d", code, exitPipeline)
	}
	if !strings.Contains(out, "ANALYSIS FAILED") || !strings.Contains(out, "no text extracted") {
		t.Errorf("stdout = %s", out)
	}
}

func TestAnalyzeBlobWithoutStorage(t *testing.T) {
	cfg := writeConfig(t)

	code, _, stderr := execute(t, &scriptedClient{}, "analyze", "-blob", "-config", cfg, "inbox/nda.docx")
	if code != exitUsage {
		t.Fatalf("exit code = %d, want %d", code, exitUsage)
	}
	if !strings.Contains(stderr, "storage") {
		t.Errorf("stderr = %s", stderr)
	}
}

func TestAnalyzeBadConfig(t *testing.T) {
	code, _, stderr := execute(t, &scriptedClient{}, "analyze", "-config", filepath.Join(t.TempDir(), "missing.toml"), "a.pdf")
	if code != exitUsage {
		t.Fatalf("exit code = %d, want %d", code, exitUsage)
	}
	if !strings.Contains(stderr, "config load failed") {
		t.Errorf("stderr = %s", stderr)
	}
}
