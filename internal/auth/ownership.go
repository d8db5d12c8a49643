package auth

// Decision is the outcome of an ownership check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "ALLOW"
	}
	return "DENY"
}

// Authorize allows access only when the principal owns the record.
func Authorize(ownerID, principalID int64) Decision {
	if ownerID == principalID {
		return Allow
	}
	return Deny
}

// EnforceOwnership returns ErrOwnershipDenied unless principalID owns the record.
func EnforceOwnership(ownerID, principalID int64) error {
	if Authorize(ownerID, principalID) == Deny {
		return ErrOwnershipDenied
	}
	return nil
}
