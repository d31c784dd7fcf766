package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/image"
	"golang.org/x/sync/errgroup"
)

type ocr struct {
	cfg    Config
	logger *slog.Logger
}

// NewOCR creates the OCR backend. PDF pages are rasterised with ImageMagick
// and every page image is recognised with Tesseract. Binaries built without
// cgo, or with the notesseract tag, get a backend whose every call reports
// ErrBackendUnavailable.
func NewOCR(cfg Config, logger *slog.Logger) Backend {
	return &ocr{cfg: cfg, logger: logger.With("backend", "ocr_scanned_document")}
}

func (o *ocr) Name() string { return "ocr_scanned_document" }

func (o *ocr) Description() string {
	return "Run OCR on a scanned PDF or an image (.pdf, .png, .jpg, .jpeg, .tiff, .tif). " +
		"Use this for images, or when parse_pdf returns little or no text."
}

func (o *ocr) Formats() []string {
	return []string{".pdf", ".png", ".jpg", ".jpeg", ".tiff", ".tif"}
}

func (o *ocr) Extract(ctx context.Context, path string) (*Result, error) {
	if err := checkFile(path, o.Formats()); err != nil {
		return nil, err
	}

	if !ocrAvailable {
		return nil, errOCRUnavailable
	}

	if Extension(path) != ".pdf" {
		text, err := recognise(o.cfg.OCRLanguages, ocrImage{path: path})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
		}
		text = strings.TrimSpace(text)
		return &Result{FullText: text, Method: MethodOCR, PageCount: 1, CharCount: len(text)}, nil
	}

	texts, err := o.recognisePDF(ctx, path)
	if err != nil {
		return nil, err
	}

	blocks := make([]string, 0, len(texts))
	for i, text := range texts {
		if text = strings.TrimSpace(text); text != "" {
			blocks = append(blocks, pageBlock(i+1, text))
		}
	}
	full := strings.Join(blocks, "\n\n")

	o.logger.InfoContext(ctx, "ocr completed", "pages", len(texts), "chars", len(full))

	return &Result{
		FullText:  full,
		Method:    MethodOCR,
		PageCount: len(texts),
		CharCount: len(full),
	}, nil
}

func (o *ocr) recognisePDF(ctx context.Context, path string) ([]string, error) {
	doc, err := document.OpenPDF(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %w", ErrExtractionFailed, err)
	}
	defer doc.Close()

	renderer, err := image.NewImageMagickRenderer(config.ImageConfig{
		Format:  "png",
		DPI:     o.cfg.OCRDPI,
		Options: map[string]any{"background": "white"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create renderer: %w", ErrBackendUnavailable, err)
	}

	pages, err := doc.ExtractAllPages()
	if err != nil {
		return nil, fmt.Errorf("%w: extract pages: %w", ErrExtractionFailed, err)
	}

	texts := make([]string, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workerCount(len(pages)))

	for i, page := range pages {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			data, err := page.ToImage(renderer, nil)
			if err != nil {
				return fmt.Errorf("render page %d: %w", i+1, err)
			}

			text, err := recognise(o.cfg.OCRLanguages, ocrImage{data: data})
			if err != nil {
				return fmt.Errorf("recognise page %d: %w", i+1, err)
			}

			texts[i] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	return texts, nil
}

// ocrImage is a page to recognise: a file on disk or encoded image bytes.
type ocrImage struct {
	path string
	data []byte
}

func (o *ocr) workerCount(pageCount int) int {
	limit := runtime.NumCPU()
	if o.cfg.OCRWorkers > 0 {
		limit = o.cfg.OCRWorkers
	}
	return max(min(limit, pageCount), 1)
}
