package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/phonebook/internal/domain"
	"github.com/spec-kit/phonebook/internal/repository"
)

// IdentityStore is the lookup the resolver needs from persistence.
type IdentityStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
}

// IdentityResolver maps a login handle to its stored identity.
type IdentityResolver struct {
	store IdentityStore
}

// NewIdentityResolver constructs a resolver over the given store.
func NewIdentityResolver(store IdentityStore) *IdentityResolver {
	return &IdentityResolver{store: store}
}

// Resolve returns ErrUnknownIdentity when no identity owns the handle.
func (r *IdentityResolver) Resolve(ctx context.Context, handle string) (*domain.Identity, error) {
	if handle == "" {
		return nil, ErrUnknownIdentity
	}
	identity, err := r.store.GetByEmail(ctx, handle)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownIdentity
		}
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	return identity, nil
}
