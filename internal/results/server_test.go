package results

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestParseByteRange(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		size      int64
		wantStart int64
		wantEnd   int64
		wantOK    bool
		wantErr   bool
	}{
		{"no header", "", 100, 0, 0, false, false},
		{"full range", "bytes=0-99", 100, 0, 99, true, false},
		{"open ended", "bytes=50-", 100, 50, 99, true, false},
		{"suffix range", "bytes=-10", 100, 90, 99, true, false},
		{"suffix longer than file", "bytes=-200", 100, 0, 99, true, false},
		{"end past size clamped", "bytes=0-500", 100, 0, 99, true, false},
		{"first of multiple", "bytes=0-9,20-29", 100, 0, 9, true, false},
		{"start past size", "bytes=100-", 100, 0, 0, false, true},
		{"start after end", "bytes=50-10", 100, 0, 0, false, true},
		{"wrong unit", "lines=0-10", 100, 0, 0, false, false},
		{"garbage", "bytes=abc-def", 100, 0, 0, false, false},
		{"no dash", "bytes=5", 100, 0, 0, false, false},
		{"zero suffix", "bytes=-0", 100, 0, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng, ok, err := parseByteRange(tt.header, tt.size)
			if tt.wantErr {
				if err != errRangeUnsatisfiable {
					t.Fatalf("err = %v, want errRangeUnsatisfiable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if rng.start != tt.wantStart || rng.end != tt.wantEnd {
				t.Errorf("range = %d-%d, want %d-%d", rng.start, rng.end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"manifest.mpd", true},
		{"segment-0-00001.m4s", true},
		{"init-0.m4s", true},
		{"", false},
		{".", false},
		{"..", false},
		{"../manifest.mpd", false},
		{"sub/file.mpd", false},
		{"..\\file.mpd", false},
	}
	for _, tt := range tests {
		if got := ValidName(tt.name); got != tt.want {
			t.Errorf("ValidName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(root, logger), root
}

func writeArtifact(t *testing.T, root, taskID, name string, content []byte) {
	t.Helper()
	dir := filepath.Join(root, taskID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestServeArtifact_Full(t *testing.T) {
	srv, root := testServer(t)
	writeArtifact(t, root, "t1", "manifest.mpd", []byte("<MPD/>"))

	req := httptest.NewRequest(http.MethodGet, "/highlights/t1/manifest.mpd", nil)
	rr := httptest.NewRecorder()
	if err := srv.ServeArtifact(rr, req, "t1", "manifest.mpd"); err != nil {
		t.Fatal(err)
	}

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/dash+xml" {
		t.Errorf("Content-Type = %q, want application/dash+xml", got)
	}
	if got := rr.Header().Get("Accept-Ranges"); got != "bytes" {
		t.Errorf("Accept-Ranges = %q, want bytes", got)
	}
	if rr.Body.String() != "<MPD/>" {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestServeArtifact_RangeRequest(t *testing.T) {
	srv, root := testServer(t)
	writeArtifact(t, root, "t1", "segment-0-00001.m4s", []byte("0123456789"))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Range", "bytes=2-5")
	rr := httptest.NewRecorder()
	if err := srv.ServeArtifact(rr, req, "t1", "segment-0-00001.m4s"); err != nil {
		t.Fatal(err)
	}

	if rr.Code != http.StatusPartialContent {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusPartialContent)
	}
	if got := rr.Body.String(); got != "2345" {
		t.Errorf("body = %q, want 2345", got)
	}
	if got := rr.Header().Get("Content-Range"); got != "bytes 2-5/10" {
		t.Errorf("Content-Range = %q", got)
	}
}

func TestServeArtifact_UnsatisfiableRange(t *testing.T) {
	srv, root := testServer(t)
	writeArtifact(t, root, "t1", "manifest.mpd", []byte("0123456789"))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Range", "bytes=100-")
	rr := httptest.NewRecorder()
	if err := srv.ServeArtifact(rr, req, "t1", "manifest.mpd"); err != nil {
		t.Fatal(err)
	}

	if rr.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusRequestedRangeNotSatisfiable)
	}
	if got := rr.Header().Get("Content-Range"); got != "bytes */10" {
		t.Errorf("Content-Range = %q, want bytes */10", got)
	}
}

func TestServeArtifact_InvalidRangeServesFullBody(t *testing.T) {
	srv, root := testServer(t)
	writeArtifact(t, root, "t1", "manifest.mpd", []byte("0123456789"))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Range", "lines=1-2")
	rr := httptest.NewRecorder()
	if err := srv.ServeArtifact(rr, req, "t1", "manifest.mpd"); err != nil {
		t.Fatal(err)
	}

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
	if rr.Body.Len() != 10 {
		t.Errorf("body length = %d, want 10", rr.Body.Len())
	}
}

func TestServeArtifact_MissingFile(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()
	if err := srv.ServeArtifact(rr, req, "t1", "manifest.mpd"); err != nil {
		t.Fatal(err)
	}

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestServeArtifact_TraversalName(t *testing.T) {
	srv, root := testServer(t)
	// A file outside any task directory must stay unreachable.
	if err := os.WriteFile(filepath.Join(root, "secret.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()
	if err := srv.ServeArtifact(rr, req, "t1", "../secret.txt"); err != nil {
		t.Fatal(err)
	}

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
