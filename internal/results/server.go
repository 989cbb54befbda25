// Package results serves a completed task's streaming artifacts (manifest
// and media segments) out of that task's output directory. Requested names
// are validated so a request can never escape its task directory.
package results

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

func init() {
	// DASH types are not in the default mime table on every platform.
	mime.AddExtensionType(".mpd", "application/dash+xml")
	mime.AddExtensionType(".m4s", "video/iso.segment")
}

type Server struct {
	outputRoot string
	logger     *slog.Logger
}

func NewServer(outputRoot string, logger *slog.Logger) *Server {
	return &Server{outputRoot: outputRoot, logger: logger}
}

// ValidName reports whether name is a plain local filename, the only shape
// the packager ever writes.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, "/\\") {
		return false
	}
	return filepath.Base(name) == name
}

// ServeArtifact streams one file from the task's output directory,
// honoring single byte-range requests for segment seeking.
func (s *Server) ServeArtifact(w http.ResponseWriter, r *http.Request, taskID, filename string) error {
	if !ValidName(filename) {
		http.Error(w, "invalid filename", http.StatusBadRequest)
		return nil
	}

	filePath := filepath.Join(s.outputRoot, taskID, filename)
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "file not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("open artifact: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat artifact: %w", err)
	}

	size := stat.Size()
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentType)

	rng, ok, err := parseByteRange(r.Header.Get("Range"), size)
	if err != nil {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	}

	if !ok {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
		w.WriteHeader(http.StatusOK)
		io.Copy(w, file)
		return nil
	}

	w.Header().Set("Content-Length", fmt.Sprintf("%d", rng.length()))
	w.Header().Set("Content-Range", rng.contentRange(size))
	w.WriteHeader(http.StatusPartialContent)

	if _, err := file.Seek(rng.start, io.SeekStart); err != nil {
		return fmt.Errorf("seek artifact: %w", err)
	}

	io.CopyN(w, file, rng.length())
	return nil
}
