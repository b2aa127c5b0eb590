package postgres

import (
    "context"
    "database/sql"
    "time"

    domain "github.com/bryanwahyu/mediscribe/internal/domain/users"
)

type UserRepository struct{ db *sql.DB }

func NewUserRepository(db *sql.DB) *UserRepository { return &UserRepository{db: db} }

// Save upsert user waktu sign-in
func (r *UserRepository) Save(ctx context.Context, u *domain.User) error {
    const q = `
INSERT INTO users (id, email, name, provider, provider_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
 email = EXCLUDED.email,
 name = EXCLUDED.name;`

    created := u.CreatedAt
    if created.IsZero() { created = time.Now() }
    _, err := r.db.ExecContext(ctx, q, u.ID, u.Email, u.Name, u.Provider, u.ProviderID, created)
    return err
}

func (r *UserRepository) Get(ctx context.Context, id domain.UserID) (*domain.User, error) {
    const q = `
SELECT id, email, name, provider, provider_id, created_at
FROM users
WHERE id=$1 LIMIT 1;`
    return scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *UserRepository) GetByProviderID(ctx context.Context, provider domain.Provider, providerID string) (*domain.User, error) {
    const q = `
SELECT id, email, name, provider, provider_id, created_at
FROM users
WHERE provider=$1 AND provider_id=$2 LIMIT 1;`
    return scanUser(r.db.QueryRowContext(ctx, q, provider, providerID))
}

func scanUser(row *sql.Row) (*domain.User, error) {
    var u domain.User
    if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Provider, &u.ProviderID, &u.CreatedAt); err != nil {
        if err == sql.ErrNoRows {
            return nil, domain.ErrNotFound
        }
        return nil, err
    }
    return &u, nil
}
