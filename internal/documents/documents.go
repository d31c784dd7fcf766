// Package documents stages contract inputs on local disk so the extraction
// tools can open them by path. Inputs come from a local path, an HTTP upload,
// or a blob storage key.
package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/JaimeStill/counsel/pkg/storage"
)

var extensions = []string{".pdf", ".docx", ".doc", ".png", ".jpg", ".jpeg", ".tiff", ".tif"}

// Extensions lists the accepted upload extensions.
func Extensions() []string {
	return slices.Clone(extensions)
}

// Supported reports whether filename has an accepted extension.
func Supported(filename string) bool {
	return slices.Contains(extensions, strings.ToLower(filepath.Ext(filename)))
}

// Source is a contract file readable at Path. Staged sources own a temporary
// directory that Close removes.
type Source struct {
	Path     string
	Filename string
	Size     int64
	dir      string
}

// Close removes the staging directory. It is a no-op for local sources.
func (s *Source) Close() error {
	if s == nil || s.dir == "" {
		return nil
	}
	dir := s.dir
	s.dir = ""
	return os.RemoveAll(dir)
}

// Local wraps an existing path without copying. The path is resolved to an
// absolute form but not otherwise checked; a missing file surfaces as a
// pipeline failure.
func Local(path string) (*Source, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidFile)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	src := &Source{Path: abs, Filename: filepath.Base(abs)}
	if info, err := os.Stat(abs); err == nil {
		src.Size = info.Size()
	}
	return src, nil
}

// FromUpload copies r into a new staging directory under filename. Reads
// beyond limit bytes fail with ErrFileTooLarge; limit <= 0 disables the cap.
func FromUpload(r io.Reader, filename string, limit int64) (*Source, error) {
	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." {
		return nil, fmt.Errorf("%w: missing filename", ErrInvalidFile)
	}
	if !Supported(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}

	dir, err := os.MkdirTemp("", "counsel-*")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	src := &Source{Path: filepath.Join(dir, name), Filename: name, dir: dir}

	n, err := write(src.Path, r, limit)
	if err != nil {
		src.Close()
		return nil, err
	}
	src.Size = n
	return src, nil
}

// FromBlob downloads key from store into a staging directory.
func FromBlob(ctx context.Context, store storage.System, key string, limit int64) (*Source, error) {
	body, err := store.Download(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	defer body.Close()

	return FromUpload(body, filepath.Base(key), limit)
}

func write(path string, r io.Reader, limit int64) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create staged file: %w", err)
	}
	defer f.Close()

	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	if limit > 0 && n > limit {
		return n, ErrFileTooLarge
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: empty file", ErrInvalidFile)
	}
	return n, f.Close()
}
