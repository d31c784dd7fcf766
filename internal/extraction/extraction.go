// Package extraction turns document files into raw text. Each Backend covers
// a family of formats and is exposed to the parse step as a named tool taking
// a single file_path argument.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/JaimeStill/counsel/internal/extracted"
)

// Sentinel errors for extraction operations.
var (
	ErrFileNotFound       = extracted.ErrFileNotFound
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	ErrUnknownTool        = errors.New("unknown tool")
	ErrInvalidArguments   = errors.New("invalid tool arguments")
	ErrExtractionFailed   = errors.New("extraction failed")
	ErrBackendUnavailable = errors.New("extraction backend unavailable")
)

// Extraction methods reported in results.
const (
	MethodPDFText = extracted.MethodPDFText
	MethodDOCX    = extracted.MethodDOCX
	MethodOCR     = extracted.MethodOCR
)

type (
	// Result is the output of a successful extraction.
	Result = extracted.Result
	// Output is the tool payload: a Result or an error description.
	Output = extracted.Output
)

// Backend extracts text from files of the formats it declares.
type Backend interface {
	// Name is the tool name the model calls.
	Name() string
	// Description tells the model when to choose this backend.
	Description() string
	// Formats lists lowercase extensions including the dot.
	Formats() []string
	Extract(ctx context.Context, path string) (*Result, error)
}

// Extension returns the lowercase extension of path including the dot.
func Extension(path string) string {
	return extracted.Extension(path)
}

func checkFile(path string, formats []string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("%w: stat %s: %w", ErrExtractionFailed, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}

	if ext := Extension(path); !slices.Contains(formats, ext) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return nil
}

func pageBlock(page int, text string) string {
	return fmt.Sprintf("--- Page %d ---\n%s", page, text)
}
