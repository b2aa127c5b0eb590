package records

import (
	"time"
)

// ID tipe untuk Record
type RecordID string

// Status enum
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ContentKind enum: strategi analisis per jenis file
type ContentKind string

const (
	KindText  ContentKind = "text"
	KindImage ContentKind = "image"
)

// NoSummaryFallback is persisted when the provider returns empty output.
const NoSummaryFallback = "No summary available."

// Aggregate Root: Record
// OwnerID, FileName and ContentKey are immutable after creation; only the
// repository lifecycle operations touch Status/Summary.
type Record struct {
	ID         RecordID   `json:"id"`
	OwnerID    string     `json:"owner_id"`
	FileName   string     `json:"file_name"`
	ContentKey string     `json:"-"`
	Summary    string     `json:"summary,omitempty"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	AnalyzedAt *time.Time `json:"analyzed_at,omitempty"`
}
