package documents

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/counsel/pkg/storage"
)

// Errors returned while staging inputs.
var (
	ErrNotFound          = errors.New("document not found")
	ErrFileTooLarge      = errors.New("file exceeds maximum upload size")
	ErrInvalidFile       = errors.New("invalid file")
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// MapHTTPStatus maps staging errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	}
	return storage.MapHTTPStatus(err)
}
