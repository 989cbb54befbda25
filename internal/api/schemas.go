package api

import "github.com/fragfeed/fragfeed/internal/task"

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type UploadResponse struct {
	Success bool   `json:"success"`
	TaskID  string `json:"task_id"`
}

// StatusResponse mirrors the task record. VideoPath carries the manifest
// locator for completed tasks, Message the reason for failed ones.
type StatusResponse struct {
	Status    string `json:"status"`
	VideoPath string `json:"video_path,omitempty"`
	Message   string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

func RecordToResponse(rec task.Record) StatusResponse {
	return StatusResponse{
		Status:    rec.Status,
		VideoPath: rec.Result,
		Message:   rec.Message,
	}
}
