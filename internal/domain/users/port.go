package users

import (
	"context"
	"errors"
)

// ErrNotFound: user tidak ada di store.
var ErrNotFound = errors.New("user not found")

// Repository port for user lookup and upsert-on-sign-in.
type Repository interface {
	Get(ctx context.Context, id UserID) (*User, error)
	GetByProviderID(ctx context.Context, provider Provider, providerID string) (*User, error)
	Save(ctx context.Context, u *User) error
}
