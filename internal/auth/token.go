package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ClaimKey names one of the claims a token carries.
type ClaimKey string

const (
	ClaimSubject    ClaimKey = "sub"
	ClaimIdentityID ClaimKey = "identityId"
)

// TokenClaims is the application payload embedded in every token.
type TokenClaims struct {
	IdentityID int64
}

// DecodedToken is the verified content of a token.
type DecodedToken struct {
	Subject    string
	IdentityID int64
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

type jwtClaims struct {
	IdentityID int64 `json:"identityId"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 bearer tokens.
type TokenCodec struct {
	key *SigningKey
	now func() time.Time
}

// CodecOption customizes a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock replaces the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

// NewTokenCodec builds a codec bound to the process signing key.
func NewTokenCodec(key *SigningKey, opts ...CodecOption) *TokenCodec {
	codec := &TokenCodec{key: key, now: time.Now}
	for _, opt := range opts {
		opt(codec)
	}
	return codec
}

// TTL returns the lifetime of issued tokens.
func (c *TokenCodec) TTL() time.Duration {
	return c.key.ttl
}

// Issue signs a token for subject carrying claims. The returned time is the
// token's expiry as encoded (second precision).
func (c *TokenCodec) Issue(subject string, claims TokenClaims) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("token subject must not be empty")
	}
	if claims.IdentityID <= 0 {
		return "", time.Time{}, errors.New("token claims must carry an identity id")
	}

	issuedAt := c.now()
	payload := &jwtClaims{
		IdentityID: claims.IdentityID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.key.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	tokenString, err := token.SignedString(c.key.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return tokenString, payload.ExpiresAt.Time, nil
}

// Decode verifies the signature and then, as a separate step, the expiry.
// It returns ErrMalformedToken, ErrBadSignature or ErrExpired.
func (c *TokenCodec) Decode(tokenStr string) (*DecodedToken, error) {
	claims := &jwtClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return c.key.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenUnverifiable) {
			return nil, ErrBadSignature
		}
		return nil, ErrMalformedToken
	}

	if claims.Subject == "" || claims.IdentityID <= 0 || claims.ExpiresAt == nil {
		return nil, ErrMalformedToken
	}

	if !c.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrExpired
	}

	decoded := &DecodedToken{
		Subject:    claims.Subject,
		IdentityID: claims.IdentityID,
		ExpiresAt:  claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		decoded.IssuedAt = claims.IssuedAt.Time
	}
	return decoded, nil
}

// ExtractClaim decodes the token and returns a single claim: a string for
// ClaimSubject, an int64 for ClaimIdentityID.
func (c *TokenCodec) ExtractClaim(tokenStr string, key ClaimKey) (any, error) {
	decoded, err := c.Decode(tokenStr)
	if err != nil {
		return nil, err
	}
	switch key {
	case ClaimSubject:
		return decoded.Subject, nil
	case ClaimIdentityID:
		return decoded.IdentityID, nil
	default:
		return nil, fmt.Errorf("unknown claim %q", key)
	}
}

// ExtractSubject returns the login handle the token was issued for.
func (c *TokenCodec) ExtractSubject(tokenStr string) (string, error) {
	value, err := c.ExtractClaim(tokenStr, ClaimSubject)
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

// ExtractIdentityID returns the numeric identity id claim.
func (c *TokenCodec) ExtractIdentityID(tokenStr string) (int64, error) {
	value, err := c.ExtractClaim(tokenStr, ClaimIdentityID)
	if err != nil {
		return 0, err
	}
	return value.(int64), nil
}

// ValidateForPrincipal is true only for a verified, unexpired token whose
// subject equals expectedSubject exactly.
func (c *TokenCodec) ValidateForPrincipal(tokenStr, expectedSubject string) bool {
	decoded, err := c.Decode(tokenStr)
	if err != nil {
		return false
	}
	return decoded.Subject == expectedSubject
}
