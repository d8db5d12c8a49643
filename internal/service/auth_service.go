package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/phonebook/internal/auth"
	"github.com/spec-kit/phonebook/internal/domain"
	"github.com/spec-kit/phonebook/internal/repository"
	apperrors "github.com/spec-kit/phonebook/pkg/util/errorutil"
)

// dummyPassword is hashed once at startup so logins for unknown handles
// still pay for a bcrypt comparison.
const dummyPassword = "phonebook-unknown-identity"

// LoginResult is returned by a successful login.
type LoginResult struct {
	Identity  *domain.Identity
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	identities repository.IdentityRepository
	resolver   *auth.IdentityResolver
	tokens     *auth.TokenCodec
	bcryptCost int
	dummyHash  string
}

// NewAuthService builds the service.
func NewAuthService(identities repository.IdentityRepository, tokens *auth.TokenCodec, bcryptCost int) (*AuthService, error) {
	dummyHash, err := auth.HashPassword(dummyPassword, bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &AuthService{
		identities: identities,
		resolver:   auth.NewIdentityResolver(identities),
		tokens:     tokens,
		bcryptCost: bcryptCost,
		dummyHash:  dummyHash,
	}, nil
}

// Register creates a new identity. Uniqueness of the handle is decided by
// the store in the same step as the insert.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.Identity, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewValidationError("password cannot be used", map[string]any{"password": err.Error()})
	}

	identity := &domain.Identity{
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewDuplicateHandle(email)
		}
		return nil, fmt.Errorf("create identity: %w", err)
	}
	return identity, nil
}

// Login verifies credentials and issues a bearer token. An unknown handle
// and a wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	identity, err := s.resolver.Resolve(ctx, email)
	if err != nil {
		if !errors.Is(err, auth.ErrUnknownIdentity) {
			return nil, fmt.Errorf("login: %w", err)
		}
		auth.VerifyPassword(password, s.dummyHash)
		return nil, apperrors.NewInvalidCredentials()
	}

	if !auth.VerifyPassword(password, identity.PasswordHash) {
		return nil, apperrors.NewInvalidCredentials()
	}

	token, exp, err := s.tokens.Issue(identity.Email, auth.TokenClaims{IdentityID: identity.ID})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Identity: identity, Token: token, ExpiresAt: exp}, nil
}

// Tokens exposes the codec for the request authenticator.
func (s *AuthService) Tokens() *auth.TokenCodec {
	return s.tokens
}

// Resolver exposes the identity resolver for the request authenticator.
func (s *AuthService) Resolver() *auth.IdentityResolver {
	return s.resolver
}
