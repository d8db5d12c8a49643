package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/phonebook/pkg/util/errorutil"
)

// RequireAuthenticated rejects requests that reached a protected route
// without a principal. Every failure looks the same to the caller.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthenticated()
		}
		return c.Next()
	}
}

// RequireCapability ensures the principal was granted capability. A
// missing principal is reported as unauthenticated.
func RequireCapability(capability Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated()
		}
		if !principal.Can(capability) {
			return apperrors.NewDomainError("FORBIDDEN", "capability required", fiber.StatusForbidden,
				map[string]any{"capability": string(capability)})
		}
		return c.Next()
	}
}
