//go:build !cgo || notesseract

package extraction

import "fmt"

const ocrAvailable = false

var errOCRUnavailable = fmt.Errorf("%w: OCR dependencies not installed", ErrBackendUnavailable)

func recognise([]string, ocrImage) (string, error) {
	return "", errOCRUnavailable
}
