package auth

import "errors"

// Token failures. None of these reach API callers; the authenticator turns
// them into "no principal attached".
var (
	ErrMalformedToken  = errors.New("malformed token")
	ErrBadSignature    = errors.New("token signature mismatch")
	ErrExpired         = errors.New("token expired")
	ErrSubjectMismatch = errors.New("token subject does not match principal")
)

var (
	// ErrUnknownIdentity is returned by the resolver for handles with no
	// stored identity.
	ErrUnknownIdentity = errors.New("unknown identity")
	// ErrOwnershipDenied is reported to callers as not-found.
	ErrOwnershipDenied = errors.New("ownership denied")
)
