package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/mediscribe/internal/domain/records"
)

type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create insert record baru (status pending)
func (r *RecordRepository) Create(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO health_records
(id, owner_id, file_name, content_key, summary, status, created_at, analyzed_at)
VALUES (?,?,?,?,?,?,?,?);
`
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		rec.ID, rec.OwnerID, rec.FileName, rec.ContentKey,
		nullString(rec.Summary), rec.Status, created, nullTime(rec.AnalyzedAt),
	)
	return err
}

// Get by ID
func (r *RecordRepository) Get(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	const q = `
SELECT id, owner_id, file_name, content_key, summary, status, created_at, analyzed_at
FROM health_records
WHERE id=? LIMIT 1;
`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return rec, err
}

// ListByOwner: record terakhir milik satu user
func (r *RecordRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, owner_id, file_name, content_key, summary, status, created_at, analyzed_at
FROM health_records
WHERE owner_id=? ORDER BY created_at DESC, id DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MarkProcessing claims the record for analysis. The WHERE status='pending'
// guard is what makes concurrent analyze calls mutually exclusive: only one
// UPDATE can move the row out of pending.
func (r *RecordRepository) MarkProcessing(ctx context.Context, id domain.RecordID) error {
	const q = `
UPDATE health_records
SET status = ?
WHERE id = ? AND status = ?;`
	res, err := r.db.ExecContext(ctx, q, domain.StatusProcessing, id, domain.StatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Claim lost: either the row is gone or another call moved it first.
		var status string
		err := r.db.QueryRowContext(ctx,
			`SELECT status FROM health_records WHERE id=? LIMIT 1;`, id).Scan(&status)
		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		return domain.ErrAlreadyProcessing
	}
	return nil
}

// MarkFailed: analisis gagal, biar kelihatan di dashboard operator
func (r *RecordRepository) MarkFailed(ctx context.Context, id domain.RecordID) error {
	const q = `
UPDATE health_records
SET status = ?
WHERE id = ?;`
	_, err := r.db.ExecContext(ctx, q, domain.StatusFailed, id)
	return err
}

// Complete commits summary + completed status in one statement.
func (r *RecordRepository) Complete(ctx context.Context, id domain.RecordID, summary string, analyzedAt time.Time) error {
	const q = `
UPDATE health_records
SET status = ?,
    summary = ?,
    analyzed_at = ?
WHERE id = ?;`
	_, err := r.db.ExecContext(ctx, q, domain.StatusCompleted, summary, analyzedAt, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.Record, error) {
	var rec domain.Record
	var summary sql.NullString
	var analyzed sql.NullTime
	if err := row.Scan(
		&rec.ID, &rec.OwnerID, &rec.FileName, &rec.ContentKey,
		&summary, &rec.Status, &rec.CreatedAt, &analyzed,
	); err != nil {
		return nil, err
	}
	rec.Summary = summary.String
	if analyzed.Valid {
		t := analyzed.Time
		rec.AnalyzedAt = &t
	}
	return &rec, nil
}
