package storage_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/JaimeStill/counsel/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=counselstore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/counselstore;"

var discard = slog.New(slog.DiscardHandler)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr bool
	}{
		{"none", storage.Config{Provider: storage.ProviderNone}, false},
		{"azure", storage.Config{Provider: storage.ProviderAzure, Container: "contracts", ConnectionString: azuriteConnString}, false},
		{"azure invalid connection string", storage.Config{Provider: storage.ProviderAzure, ConnectionString: "not-a-connection-string"}, true},
		{"minio", storage.Config{Provider: storage.ProviderMinio, Container: "contracts", Endpoint: "127.0.0.1:9000", AccessKey: "minio", SecretKey: "minio123"}, false},
		{"unknown", storage.Config{Provider: "ftp"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, err := storage.New(context.Background(), &tt.cfg, discard)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if sys == nil {
				t.Fatal("New() returned nil system")
			}
		})
	}
}

func TestDisabled(t *testing.T) {
	sys, err := storage.New(context.Background(), &storage.Config{}, discard)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := sys.Download(context.Background(), "a.pdf"); !errors.Is(err, storage.ErrDisabled) {
		t.Errorf("Download error = %v, want ErrDisabled", err)
	}
	if _, err := sys.Exists(context.Background(), "a.pdf"); !errors.Is(err, storage.ErrDisabled) {
		t.Errorf("Exists error = %v, want ErrDisabled", err)
	}
}

func TestKeyValidation(t *testing.T) {
	configs := map[string]storage.Config{
		"azure": {Provider: storage.ProviderAzure, Container: "contracts", ConnectionString: azuriteConnString},
		"minio": {Provider: storage.ProviderMinio, Container: "contracts", Endpoint: "127.0.0.1:9000", AccessKey: "minio", SecretKey: "minio123"},
	}

	keys := []struct {
		key  string
		want error
	}{
		{"", storage.ErrEmptyKey},
		{"../etc/passwd", storage.ErrInvalidKey},
		{"contracts/../../secret.pdf", storage.ErrInvalidKey},
	}

	for name, cfg := range configs {
		sys, err := storage.New(context.Background(), &cfg, discard)
		if err != nil {
			t.Fatalf("%s: New() error = %v", name, err)
		}

		for _, k := range keys {
			t.Run(fmt.Sprintf("%s %q", name, k.key), func(t *testing.T) {
				if _, err := sys.Download(context.Background(), k.key); !errors.Is(err, k.want) {
					t.Errorf("Download error = %v, want %v", err, k.want)
				}
				if _, err := sys.Exists(context.Background(), k.key); !errors.Is(err, k.want) {
					t.Errorf("Exists error = %v, want %v", err, k.want)
				}
			})
		}
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ErrNotFound maps to 404", storage.ErrNotFound, http.StatusNotFound},
		{"ErrEmptyKey maps to 400", storage.ErrEmptyKey, http.StatusBadRequest},
		{"ErrInvalidKey maps to 400", storage.ErrInvalidKey, http.StatusBadRequest},
		{"ErrDisabled maps to 501", storage.ErrDisabled, http.StatusNotImplemented},
		{"wrapped ErrNotFound maps to 404", fmt.Errorf("operation failed: %w", storage.ErrNotFound), http.StatusNotFound},
		{"unknown error maps to 500", fmt.Errorf("unexpected failure"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storage.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
