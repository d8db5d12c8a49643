package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	principalKey = "auth_principal"
	bearerPrefix = "Bearer "
)

// Capability is a permission granted to an authenticated principal.
type Capability string

const (
	CapabilityContacts  Capability = "contacts"
	CapabilityAddresses Capability = "addresses"
)

// DefaultCapabilities is the set every registered identity receives.
var DefaultCapabilities = []Capability{CapabilityContacts, CapabilityAddresses}

// Principal represents the authenticated caller of one request.
type Principal struct {
	IdentityID   int64
	Handle       string
	Capabilities []Capability
}

// Can reports whether the principal holds capability.
func (p *Principal) Can(capability Capability) bool {
	for _, granted := range p.Capabilities {
		if granted == capability {
			return true
		}
	}
	return false
}

// Authenticator attaches a principal to requests carrying a valid bearer
// token. It never rejects a request; RequireAuthenticated does that.
type Authenticator struct {
	tokens   *TokenCodec
	resolver *IdentityResolver
	logger   *zap.Logger
}

// NewAuthenticator constructs middleware.
func NewAuthenticator(tokens *TokenCodec, resolver *IdentityResolver, logger *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, resolver: resolver, logger: logger}
}

// Handle is the fiber middleware entrypoint.
func (a *Authenticator) Handle(c *fiber.Ctx) error {
	if _, ok := PrincipalFromContext(c); ok {
		return c.Next()
	}

	token, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return c.Next()
	}

	principal, err := a.Authenticate(c.UserContext(), token)
	if err != nil {
		a.logFailure(c, err)
		return c.Next()
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// Authenticate turns a raw bearer token into a principal: extract the
// subject, resolve it, then bind the token to the resolved identity.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*Principal, error) {
	subject, err := a.tokens.ExtractSubject(token)
	if err != nil {
		return nil, err
	}

	identity, err := a.resolver.Resolve(ctx, subject)
	if err != nil {
		return nil, err
	}

	if !a.tokens.ValidateForPrincipal(token, identity.Email) {
		return nil, ErrSubjectMismatch
	}

	return &Principal{
		IdentityID:   identity.ID,
		Handle:       identity.Email,
		Capabilities: DefaultCapabilities,
	}, nil
}

func (a *Authenticator) logFailure(c *fiber.Ctx, err error) {
	fields := []zap.Field{zap.String("path", c.Path()), zap.Error(err)}
	switch {
	case errors.Is(err, ErrMalformedToken), errors.Is(err, ErrBadSignature),
		errors.Is(err, ErrExpired), errors.Is(err, ErrSubjectMismatch),
		errors.Is(err, ErrUnknownIdentity):
		a.logger.Debug("bearer token not accepted", fields...)
	default:
		a.logger.Warn("bearer token could not be checked", fields...)
	}
}

// BearerToken extracts the token from an Authorization header value. The
// prefix match is case-sensitive with exactly one space.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := header[len(bearerPrefix):]
	if token == "" {
		return "", false
	}
	return token, true
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal != nil
}
