package history

import (
	"context"
	"time"
)

// Status is the detection outcome stored on a record.
type Status string

const (
	StatusPending Status = "pending"
	StatusReal    Status = "real"
	StatusFake    Status = "fake"
	StatusError   Status = "error"
)

// Record is one row of detection history. Exactly one of UserID and
// SessionID owns the record.
type Record struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id,omitempty"`
	SessionID     string         `json:"session_id,omitempty"`
	FileURL       string         `json:"file_url"`
	Filename      string         `json:"filename"`
	FileType      string         `json:"file_type"`
	FileSize      int64          `json:"file_size"`
	FileExtension string         `json:"file_extension"`
	Status        Status         `json:"detection_result"`
	Confidence    int            `json:"confidence_score"`
	Metadata      map[string]any `json:"detection_metadata,omitempty"`
	FileAvailable bool           `json:"is_file_available"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// InsertInput is the input for creating a detection record.
type InsertInput struct {
	UserID        string
	SessionID     string
	FileURL       string
	Filename      string
	FileType      string
	FileSize      int64
	FileExtension string
}

// Writer is the subset of the service the intake pipeline needs.
type Writer interface {
	Insert(ctx context.Context, input InsertInput) (Record, error)
	UpdateResult(ctx context.Context, id string, status Status, confidence int, metadata map[string]any) error
}
