// Package task tracks highlight-generation tasks for the life of the server
// process. Records are held in memory only; history does not survive a
// restart.
package task

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusNotFound   = "not_found"
)

// Record is the externally visible state of one task. Result holds the
// manifest locator for completed tasks, Message the failure reason for
// failed ones.
type Record struct {
	ID        string
	Status    string
	Result    string
	Message   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Terminal reports whether the record has reached a final state.
func (r Record) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// Registry is a process-wide map from task ID to Record. Each record is
// written by exactly one pipeline worker; updates replace the whole record
// under the lock so concurrent readers observe either the prior or the new
// state, never a partial one.
type Registry struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewRegistry() *Registry {
	return &Registry{records: make(map[string]Record)}
}

// NewID returns a fresh opaque task identifier.
func NewID() string {
	return uuid.NewString()
}

// Create inserts a record in the processing state.
func (r *Registry) Create(id string) {
	now := time.Now()
	r.mu.Lock()
	r.records[id] = Record{
		ID:        id,
		Status:    StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.mu.Unlock()
}

// Get returns the record for id, or a not_found sentinel for unknown
// identifiers. It never returns an error.
func (r *Registry) Get(id string) Record {
	r.mu.RLock()
	rec, ok := r.records[id]
	r.mu.RUnlock()
	if !ok {
		return Record{ID: id, Status: StatusNotFound}
	}
	return rec
}

// Complete transitions the task to completed with the given result locator.
// A task already in a terminal state is left untouched.
func (r *Registry) Complete(id, result string) {
	r.setTerminal(id, StatusCompleted, result, "")
}

// Fail transitions the task to failed with a human-readable reason.
// A task already in a terminal state is left untouched.
func (r *Registry) Fail(id, message string) {
	r.setTerminal(id, StatusFailed, "", message)
}

func (r *Registry) setTerminal(id, status, result, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || rec.Terminal() {
		return
	}

	rec.Status = status
	rec.Result = result
	rec.Message = message
	rec.UpdatedAt = time.Now()
	r.records[id] = rec
}

// Len returns the number of tracked tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
