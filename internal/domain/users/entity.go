package users

import "time"

// UserID identifier type
type UserID string

// Provider enum: identity provider yang dipakai waktu sign-in
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderApple  Provider = "apple"
)

// User represents an authenticated account that owns health records.
type User struct {
	ID         UserID    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Provider   Provider  `json:"provider"`
	ProviderID string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
