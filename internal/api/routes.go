package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fragfeed/fragfeed/internal/config"
	"github.com/fragfeed/fragfeed/internal/pipeline"
	"github.com/fragfeed/fragfeed/internal/task"
)

// Submitter enqueues accepted tasks for background processing.
type Submitter interface {
	Submit(sub pipeline.Submission) error
}

// ArtifactServer streams files from a task's output directory.
type ArtifactServer interface {
	ServeArtifact(w http.ResponseWriter, r *http.Request, taskID, filename string) error
}

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.AuthToken, cfg.Logger))

		r.Post("/upload", uploadHandler(cfg))
		r.Get("/status/{taskID}", statusHandler(cfg))
		r.Get("/highlights/{taskID}/{filename}", highlightsHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

func uploadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)

		file, header, err := r.FormFile("video")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "no video file provided", "BAD_REQUEST")
			return
		}
		defer file.Close()

		playerName := r.FormValue("player_name")
		if header.Filename == "" || strings.TrimSpace(playerName) == "" {
			WriteError(w, http.StatusBadRequest, "player name or video file missing", "BAD_REQUEST")
			return
		}

		taskID := task.NewID()
		sourcePath := filepath.Join(cfg.UploadDir, taskID+uploadExt(header.Filename))

		dst, err := os.Create(sourcePath)
		if err != nil {
			cfg.Logger.Error("cannot store upload", "error", err)
			WriteError(w, http.StatusInternalServerError, "cannot store upload", "INTERNAL_ERROR")
			return
		}
		if _, err := io.Copy(dst, file); err != nil {
			dst.Close()
			os.Remove(sourcePath)
			cfg.Logger.Error("upload write failed", "error", err)
			WriteError(w, http.StatusInternalServerError, "cannot store upload", "INTERNAL_ERROR")
			return
		}
		dst.Close()

		cfg.Registry.Create(taskID)
		err = cfg.Pool.Submit(pipeline.Submission{
			TaskID:     taskID,
			SourcePath: sourcePath,
			PlayerName: playerName,
		})
		if err != nil {
			os.Remove(sourcePath)
			if errors.Is(err, pipeline.ErrQueueFull) {
				cfg.Registry.Fail(taskID, "server busy, submission rejected")
				WriteError(w, http.StatusServiceUnavailable, "server busy, try again later", "QUEUE_FULL")
				return
			}
			cfg.Registry.Fail(taskID, "submission failed")
			cfg.Logger.Error("task submission failed", "error", err)
			WriteError(w, http.StatusInternalServerError, "submission failed", "INTERNAL_ERROR")
			return
		}

		cfg.Logger.Info("task submitted",
			"task_id", taskID,
			"player", playerName,
			"upload_bytes", header.Size,
		)
		WriteJSON(w, http.StatusAccepted, UploadResponse{Success: true, TaskID: taskID})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := cfg.Registry.Get(chi.URLParam(r, "taskID"))
		WriteJSON(w, http.StatusOK, RecordToResponse(rec))
	}
}

func highlightsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID := chi.URLParam(r, "taskID")
		filename := chi.URLParam(r, "filename")

		// Interim artifacts are never exposed: only completed tasks serve
		// files.
		if rec := cfg.Registry.Get(taskID); rec.Status != task.StatusCompleted {
			http.NotFound(w, r)
			return
		}

		if err := cfg.Results.ServeArtifact(w, r, taskID, filename); err != nil {
			cfg.Logger.Error("artifact serving failed", "task_id", taskID, "error", err)
			WriteError(w, http.StatusInternalServerError, "cannot serve file", "INTERNAL_ERROR")
		}
	}
}

// uploadExt returns a safe extension for the stored upload, defaulting to
// .mp4 when the client name has none.
func uploadExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if ext == "" || strings.ContainsAny(ext, "/\\") {
		return ".mp4"
	}
	return ext
}
