package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/bryanwahyu/mediscribe/internal/domain/records"
)

// RecordRepository is an in-memory Repository used in tests and local dev.
// Claim semantics match the SQL repos: MarkProcessing succeeds for exactly
// one caller per pending record.
type RecordRepository struct {
	mu   sync.RWMutex
	data map[domain.RecordID]*domain.Record
}

func NewRecordRepository() *RecordRepository {
	return &RecordRepository{data: make(map[domain.RecordID]*domain.Record)}
}

func (r *RecordRepository) Create(ctx context.Context, rec *domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.data[rec.ID] = &cp
	return nil
}

func (r *RecordRepository) Get(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *RecordRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Record
	for _, rec := range r.data {
		if rec.OwnerID == ownerID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *RecordRepository) MarkProcessing(ctx context.Context, id domain.RecordID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	if rec.Status != domain.StatusPending {
		return domain.ErrAlreadyProcessing
	}
	rec.Status = domain.StatusProcessing
	return nil
}

func (r *RecordRepository) MarkFailed(ctx context.Context, id domain.RecordID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	rec.Status = domain.StatusFailed
	return nil
}

func (r *RecordRepository) Complete(ctx context.Context, id domain.RecordID, summary string, analyzedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	rec.Status = domain.StatusCompleted
	rec.Summary = summary
	t := analyzedAt
	rec.AnalyzedAt = &t
	return nil
}
