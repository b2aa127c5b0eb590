package records

import (
	"context"
	"io"
	"time"
)

// Repository port (interface untuk persistence)
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	// Get returns ErrNotFound when no record exists with the id.
	Get(ctx context.Context, id RecordID) (*Record, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*Record, error)

	// MarkProcessing claims the record for analysis: pending → processing,
	// conditional on the current status still being pending. A lost claim
	// returns ErrAlreadyProcessing so concurrent callers fail fast instead
	// of burning a second provider call.
	MarkProcessing(ctx context.Context, id RecordID) error
	MarkFailed(ctx context.Context, id RecordID) error
	// Complete commits processing → completed together with the summary.
	Complete(ctx context.Context, id RecordID, summary string, analyzedAt time.Time) error
}

// ContentStore port (interface untuk penyimpanan isi file)
type ContentStore interface {
	Save(ctx context.Context, ownerID, fileName string, r io.Reader) (key string, size int64, err error)
	// ReadText reads the object as UTF-8 text; invalid encoding is an error.
	ReadText(ctx context.Context, key string) (string, error)
	ReadBytes(ctx context.Context, key string) ([]byte, error)
}
