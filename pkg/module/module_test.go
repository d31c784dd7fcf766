package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/counsel/pkg/module"
)

func echoPath(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(r.URL.Path))
}

func TestNewValidatesPrefix(t *testing.T) {
	tests := []struct {
		prefix  string
		wantErr bool
	}{
		{"/api", false},
		{"", true},
		{"api", true},
		{"/api/v1", true},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			_, err := module.New(tt.prefix)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%q) error = %v, wantErr %v", tt.prefix, err, tt.wantErr)
			}
		})
	}
}

func TestRouter(t *testing.T) {
	m, err := module.New("/api")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	var wrapped bool
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped = true
			next.ServeHTTP(w, r)
		})
	})

	m.Register(module.Group{
		Prefix: "/analyses",
		Routes: []module.Route{
			{Method: "GET", Pattern: "/{id}", Handler: echoPath},
		},
		Children: []module.Group{{
			Prefix: "/blob",
			Routes: []module.Route{{Method: "POST", Pattern: "", Handler: echoPath}},
		}},
	})

	router := module.NewRouter()
	router.Mount(m)
	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"module route strips prefix", "GET", "/api/analyses/42", http.StatusOK, "/analyses/42"},
		{"trailing slash normalized", "GET", "/api/analyses/42/", http.StatusOK, "/analyses/42"},
		{"child group", "POST", "/api/analyses/blob", http.StatusOK, "/analyses/blob"},
		{"native fallback", "GET", "/healthz", http.StatusOK, "ok"},
		{"unknown path", "GET", "/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body: got %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}

	if !wrapped {
		t.Error("module middleware did not run")
	}
}
