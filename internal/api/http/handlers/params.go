package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/phonebook/internal/api/dto"
	"github.com/spec-kit/phonebook/internal/auth"
	"github.com/spec-kit/phonebook/internal/domain"
	apperrors "github.com/spec-kit/phonebook/pkg/util/errorutil"
)

// principal returns the caller. Routes using it are mounted behind
// auth.RequireAuthenticated, so a miss is still answered as 401.
func principal(c *fiber.Ctx) (*auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthenticated()
	}
	return p, nil
}

// pathID parses the :id parameter. A value that cannot be an id is
// reported like any other missing resource.
func pathID(c *fiber.Ctx, resource string) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewNotFound(resource)
	}
	return id, nil
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil
	}
	return &value
}

func pageRequest(c *fiber.Ctx) domain.PageRequest {
	return domain.PageRequest{
		Page: c.QueryInt("page", 0),
		Size: c.QueryInt("size", domain.DefaultPageSize),
	}.Normalize()
}

func bind(c *fiber.Ctx, payload dto.Validatable) error {
	if err := c.BodyParser(payload); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(payload)
}
