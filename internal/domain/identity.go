package domain

import "time"

// Identity is a registered account. Email is the login handle and the
// token subject; it is unique across all identities.
type Identity struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
