package extraction

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const documentPart = "word/document.xml"

type docx struct {
	logger *slog.Logger
}

// NewDOCX creates the word-processor backend.
func NewDOCX(logger *slog.Logger) Backend {
	return &docx{logger: logger.With("backend", "parse_docx")}
}

func (d *docx) Name() string { return "parse_docx" }

func (d *docx) Description() string {
	return "Extract text from a Word document (.docx). Use this for .docx or .doc files."
}

func (d *docx) Formats() []string { return []string{".docx", ".doc"} }

// Extract reads the main document part of the container. Blank paragraphs
// are dropped and the rest are joined by blank lines.
func (d *docx) Extract(ctx context.Context, path string) (*Result, error) {
	if err := checkFile(path, d.Formats()); err != nil {
		return nil, err
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open container: %w", ErrExtractionFailed, err)
	}
	defer zr.Close()

	part, err := zr.Open(documentPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExtractionFailed, documentPart, err)
	}
	defer part.Close()

	paragraphs, err := readParagraphs(part)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	full := strings.Join(paragraphs, "\n\n")

	d.logger.InfoContext(ctx, "docx text extracted", "paragraphs", len(paragraphs), "chars", len(full))

	return &Result{
		FullText:       full,
		Method:         MethodDOCX,
		ParagraphCount: len(paragraphs),
		CharCount:      len(full),
	}, nil
}

func readParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
		runDepth   int
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				runDepth++
			case "t":
				inText = true
			case "tab":
				// w:tab outside a run is a tab-stop definition in w:pPr.
				if runDepth > 0 {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if runDepth > 0 {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				runDepth--
			case "t":
				inText = false
			case "p":
				if text := current.String(); strings.TrimSpace(text) != "" {
					paragraphs = append(paragraphs, text)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
