package auth

import (
	"errors"
	"time"
)

// SigningKey holds the process-wide HMAC secret and token lifetime. It is
// built once at startup and never mutated, so it is safe to share between
// goroutines without locking.
type SigningKey struct {
	secret []byte
	ttl    time.Duration
}

// NewSigningKey validates and copies the secret.
func NewSigningKey(secret string, ttl time.Duration) (*SigningKey, error) {
	if secret == "" {
		return nil, errors.New("signing secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}
	return &SigningKey{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the lifetime applied to newly issued tokens.
func (k *SigningKey) TTL() time.Duration {
	return k.ttl
}
