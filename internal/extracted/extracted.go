// Package extracted holds the result shapes that extraction tools hand back
// to the parse step. It has no backend dependencies so the pipeline can be
// built and tested without OCR libraries.
package extracted

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrFileNotFound is returned when a tool is pointed at a missing file.
var ErrFileNotFound = errors.New("file not found")

// Extraction methods reported in results.
const (
	MethodPDFText = "pdf_text_extraction"
	MethodDOCX    = "docx_extraction"
	MethodOCR     = "ocr"
)

// Result is the output of a successful extraction. An empty FullText is not
// an error at this level.
type Result struct {
	FullText       string `json:"full_text"`
	Method         string `json:"method"`
	PageCount      int    `json:"page_count,omitempty"`
	ParagraphCount int    `json:"paragraph_count,omitempty"`
	CharCount      int    `json:"char_count"`
}

// Output is the payload handed back to the model for a tool call: either a
// Result or an error description.
type Output struct {
	Result
	Error string `json:"error,omitempty"`
}

// HasText reports whether the output carries non-blank extracted text.
func (o Output) HasText() bool {
	return o.Error == "" && strings.TrimSpace(o.FullText) != ""
}

// JSON renders the output as the tool record content.
func (o Output) JSON() string {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(data)
}

// Extension returns the lowercase extension of path including the dot.
func Extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
