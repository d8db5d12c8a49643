package auth

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/phonebook/internal/domain"
	"github.com/spec-kit/phonebook/internal/repository"
	apperrors "github.com/spec-kit/phonebook/pkg/util/errorutil"
)

type authFixture struct {
	app   *fiber.App
	codec *TokenCodec
	clock *fakeClock
	alice *domain.Identity
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	identities := repository.NewMemoryIdentityRepository()
	alice := &domain.Identity{Email: "alice@example.com", PasswordHash: "unused"}
	require.NoError(t, identities.Create(context.Background(), alice))

	clock := newFakeClock()
	codec := newTestCodec(t, "middleware-secret", time.Hour, clock)
	authenticator := NewAuthenticator(codec, NewIdentityResolver(identities), zap.NewNop())

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		de := apperrors.ToDomainError(err)
		return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code})
	}})
	app.Use(authenticator.Handle)
	app.Get("/open", func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return c.SendString("anonymous")
		}
		return c.SendString(principal.Handle)
	})
	app.Get("/protected", RequireAuthenticated(), func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		return c.JSON(fiber.Map{"id": principal.IdentityID})
	})

	return &authFixture{app: app, codec: codec, clock: clock, alice: alice}
}

func (f *authFixture) get(t *testing.T, path, authorization string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthenticatorAttachesPrincipal(t *testing.T) {
	f := newAuthFixture(t)
	token, _, err := f.codec.Issue(f.alice.Email, TokenClaims{IdentityID: f.alice.ID})
	require.NoError(t, err)

	status, body := f.get(t, "/open", "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alice@example.com", body)

	status, _ = f.get(t, "/protected", "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestAuthenticatorNeverRejects(t *testing.T) {
	f := newAuthFixture(t)
	valid, _, err := f.codec.Issue(f.alice.Email, TokenClaims{IdentityID: f.alice.ID})
	require.NoError(t, err)
	ghost, _, err := f.codec.Issue("ghost@example.com", TokenClaims{IdentityID: 99})
	require.NoError(t, err)

	headers := map[string]string{
		"no header":           "",
		"lowercase scheme":    "bearer " + valid,
		"double space":        "Bearer  " + valid,
		"basic scheme":        "Basic YWxpY2U6cHc=",
		"empty token":         "Bearer ",
		"garbage token":       "Bearer not.a.jwt",
		"unknown subject":     "Bearer " + ghost,
		"truncated signature": "Bearer " + valid[:len(valid)-4],
	}
	for name, header := range headers {
		t.Run(name, func(t *testing.T) {
			status, body := f.get(t, "/open", header)
			assert.Equal(t, fiber.StatusOK, status)
			assert.Equal(t, "anonymous", body)

			status, body = f.get(t, "/protected", header)
			assert.Equal(t, fiber.StatusUnauthorized, status)
			assert.JSONEq(t, `{"code":"UNAUTHENTICATED"}`, body)
		})
	}
}

func TestAuthenticatorExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	token, _, err := f.codec.Issue(f.alice.Email, TokenClaims{IdentityID: f.alice.ID})
	require.NoError(t, err)

	f.clock.Advance(time.Hour + time.Second)

	status, _ := f.get(t, "/protected", "Bearer "+token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestAuthenticateReportsCause(t *testing.T) {
	identities := repository.NewMemoryIdentityRepository()
	alice := &domain.Identity{Email: "alice@example.com"}
	require.NoError(t, identities.Create(context.Background(), alice))
	codec := newTestCodec(t, "secret", time.Hour, newFakeClock())
	authenticator := NewAuthenticator(codec, NewIdentityResolver(identities), zap.NewNop())
	ctx := context.Background()

	_, err := authenticator.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrMalformedToken)

	ghost, _, err := codec.Issue("ghost@example.com", TokenClaims{IdentityID: 5})
	require.NoError(t, err)
	_, err = authenticator.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, ErrUnknownIdentity)

	token, _, err := codec.Issue(alice.Email, TokenClaims{IdentityID: alice.ID})
	require.NoError(t, err)
	principal, err := authenticator.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, principal.IdentityID)
	assert.True(t, principal.Can(CapabilityContacts))
}

type foldingStore struct {
	identity *domain.Identity
}

func (s foldingStore) GetByEmail(context.Context, string) (*domain.Identity, error) {
	return s.identity, nil
}

func TestAuthenticateRejectsSubjectResolvedToAnotherIdentity(t *testing.T) {
	codec := newTestCodec(t, "secret", time.Hour, newFakeClock())
	// A store that resolves any handle to bob, e.g. through a case-folding collation.
	store := foldingStore{identity: &domain.Identity{ID: 2, Email: "bob@example.com"}}
	authenticator := NewAuthenticator(codec, NewIdentityResolver(store), zap.NewNop())

	token, _, err := codec.Issue("BOB@example.com", TokenClaims{IdentityID: 2})
	require.NoError(t, err)

	_, err = authenticator.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrSubjectMismatch)
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc.def.ghi")
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)

	for _, header := range []string{"", "Bearer", "Bearer ", "bearer abc", "BEARER abc", "Token abc"} {
		_, ok := BearerToken(header)
		assert.False(t, ok, "header %q", header)
	}
}

func TestRequireCapability(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	app.Use(func(c *fiber.Ctx) error {
		if c.Get("X-Test-Principal") != "" {
			c.Locals(principalKey, &Principal{IdentityID: 1, Capabilities: []Capability{CapabilityContacts}})
		}
		return c.Next()
	})
	app.Get("/contacts", RequireCapability(CapabilityContacts), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/addresses", RequireCapability(CapabilityAddresses), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	cases := []struct {
		path      string
		principal bool
		want      int
	}{
		{"/contacts", true, fiber.StatusOK},
		{"/addresses", true, fiber.StatusForbidden},
		{"/contacts", false, fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(fiber.MethodGet, tc.path, nil)
		if tc.principal {
			req.Header.Set("X-Test-Principal", "1")
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode, tc.path)
	}
}
