// internal/api/client_test.go
package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fairwaylabs/sgrid/pkg/core"
)

func TestNew(t *testing.T) {
	c := New("http://localhost:5000", "secret123")

	if c == nil {
		t.Fatal("New returned nil")
	}
	if c.baseURL != "http://localhost:5000" {
		t.Errorf("expected baseURL=http://localhost:5000, got %s", c.baseURL)
	}
	if c.apiKey != "secret123" {
		t.Errorf("expected apiKey=secret123, got %s", c.apiKey)
	}
	if c.httpClient == nil {
		t.Error("httpClient is nil")
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:5000/", "secret")
	if c.baseURL != "http://localhost:5000" {
		t.Errorf("expected trailing slash trimmed, got %s", c.baseURL)
	}
}

func TestHealthcheck_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthcheck" {
			t.Errorf("expected path /healthcheck, got %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(server.URL, "")
	if err := c.Healthcheck(); err != nil {
		t.Errorf("Healthcheck failed: %v", err)
	}
}

func TestHealthcheck_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL, "")
	if err := c.Healthcheck(); err == nil {
		t.Error("expected error for 500 response")
	}
}

type received struct {
	fields  map[string]string
	content string
}

func uploadServer(t *testing.T, status int, got *received) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/grids" {
			t.Errorf("expected path /api/v1/grids, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
			return
		}

		got.fields = map[string]string{}
		for _, key := range []string{"secret", "filename", "kind", "strokesGained", "dispersion", "tag"} {
			got.fields[key] = r.FormValue(key)
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("failed to get file: %v", err)
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		got.content = string(content)

		w.WriteHeader(status)
	}))
}

func TestUploadBytes_Success(t *testing.T) {
	var got received
	server := uploadServer(t, http.StatusCreated, &got)
	defer server.Close()

	c := New(server.URL, "mysecret")
	meta := core.UploadMetadata{
		Kind:          core.GridTarget,
		StrokesGained: 0.125,
		Dispersion:    12,
		Tag:           "hole-7",
	}

	if err := c.UploadBytes("grid.geojson", []byte(`{"type":"FeatureCollection"}`), meta); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	want := map[string]string{
		"secret":        "mysecret",
		"filename":      "grid.geojson",
		"kind":          "target",
		"strokesGained": "0.125000",
		"dispersion":    "12.000000",
		"tag":           "hole-7",
	}
	for key, value := range want {
		if got.fields[key] != value {
			t.Errorf("expected %s=%s, got %s", key, value, got.fields[key])
		}
	}
	if got.content != `{"type":"FeatureCollection"}` {
		t.Errorf("unexpected file content %q", got.content)
	}
}

func TestUpload_File(t *testing.T) {
	var got received
	server := uploadServer(t, http.StatusOK, &got)
	defer server.Close()

	path := filepath.Join(t.TempDir(), "evaluations.json.gz")
	if err := os.WriteFile(path, []byte("archive"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	c := New(server.URL, "secret")
	if err := c.Upload(path, core.UploadMetadata{Kind: core.GridOutcome}); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if got.fields["filename"] != "evaluations.json.gz" {
		t.Errorf("expected filename=evaluations.json.gz, got %s", got.fields["filename"])
	}
	if got.content != "archive" {
		t.Errorf("expected file content 'archive', got %q", got.content)
	}
}

func TestUpload_FileNotFound(t *testing.T) {
	c := New("http://localhost:5000", "secret")
	if err := c.Upload("/nonexistent/file.json.gz", core.UploadMetadata{}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestUpload_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := New(server.URL, "wrong-secret")
	if err := c.UploadBytes("grid.geojson", []byte("{}"), core.UploadMetadata{}); err == nil {
		t.Error("expected error for 403 response")
	}
}
