package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

type pdfText struct {
	logger *slog.Logger
}

// NewPDFText creates the selectable-text PDF backend.
func NewPDFText(logger *slog.Logger) Backend {
	return &pdfText{logger: logger.With("backend", "parse_pdf")}
}

func (p *pdfText) Name() string { return "parse_pdf" }

func (p *pdfText) Description() string {
	return "Extract text from a PDF document. Use this for .pdf files that contain selectable text (not scanned images)."
}

func (p *pdfText) Formats() []string { return []string{".pdf"} }

// Extract reads the text layer page by page. Pages are emitted as
// "--- Page N ---" blocks separated by blank lines.
func (p *pdfText) Extract(ctx context.Context, path string) (*Result, error) {
	if err := checkFile(path, p.Formats()); err != nil {
		return nil, err
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %w", ErrExtractionFailed, err)
	}
	defer f.Close()

	total := r.NumPage()
	if count, err := api.PageCountFile(path); err == nil {
		total = min(total, count)
	} else {
		p.logger.DebugContext(ctx, "pdfcpu page count unavailable", "error", err)
	}

	blocks := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		var text string
		if !page.V.IsNull() {
			text, err = page.GetPlainText(nil)
			if err != nil {
				return nil, fmt.Errorf("%w: page %d: %w", ErrExtractionFailed, i, err)
			}
		}
		blocks = append(blocks, pageBlock(i, text))
	}

	full := strings.Join(blocks, "\n\n")

	p.logger.InfoContext(ctx, "pdf text extracted", "pages", total, "chars", len(full))

	return &Result{
		FullText:  full,
		Method:    MethodPDFText,
		PageCount: total,
		CharCount: len(full),
	}, nil
}
