package memory

import (
	"context"
	"sync"

	domain "github.com/bryanwahyu/mediscribe/internal/domain/users"
)

// UserRepository is an in-memory users.Repository for tests and local dev.
type UserRepository struct {
	mu   sync.RWMutex
	data map[domain.UserID]*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{data: make(map[domain.UserID]*domain.User)}
}

func (r *UserRepository) Save(ctx context.Context, u *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.data[u.ID] = &cp
	return nil
}

func (r *UserRepository) Get(ctx context.Context, id domain.UserID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByProviderID(ctx context.Context, provider domain.Provider, providerID string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.data {
		if u.Provider == provider && u.ProviderID == providerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}
