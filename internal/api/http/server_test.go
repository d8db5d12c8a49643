package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/phonebook/internal/api/http/handlers"
	"github.com/spec-kit/phonebook/internal/auth"
	"github.com/spec-kit/phonebook/internal/events"
	"github.com/spec-kit/phonebook/internal/observability"
	"github.com/spec-kit/phonebook/internal/repository"
	"github.com/spec-kit/phonebook/internal/service"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	t     *testing.T
	app   *fiber.App
	clock *testClock
}

func newTestServer(t *testing.T, ttl time.Duration) *testServer {
	t.Helper()
	clock := &testClock{now: time.Now()}
	key, err := auth.NewSigningKey("http-test-secret", ttl)
	require.NoError(t, err)
	codec := auth.NewTokenCodec(key, auth.WithClock(clock.Now))

	identities := repository.NewMemoryIdentityRepository()
	contacts := repository.NewMemoryContactRepository()
	addresses := repository.NewMemoryAddressRepository(contacts)

	authService, err := service.NewAuthService(identities, codec, bcrypt.MinCost)
	require.NoError(t, err)
	logger := zap.NewNop()
	contactService := service.NewContactService(service.ContactDependencies{
		ContactRepo: contacts,
		AddressRepo: addresses,
		Dispatcher:  events.NewInMemoryDispatcher(),
		Logger:      logger,
	})

	metrics := observability.NewMetrics()
	app := NewServer(ServerConfig{AppName: "phonebook-test", Logger: logger, Metrics: metrics, RequestTimeout: 5 * time.Second},
		RouteConfig{
			Health:        handlers.NewHealthHandler("phonebook", "test", nil, nil, metrics),
			Auth:          handlers.NewAuthHandler(authService),
			Contacts:      handlers.NewContactsHandler(contactService),
			Addresses:     handlers.NewAddressesHandler(service.NewAddressService(addresses)),
			Authenticator: auth.NewAuthenticator(authService.Tokens(), authService.Resolver(), logger),
			Title:         "phonebook",
			Version:       "test",
		})
	return &testServer{t: t, app: app, clock: clock}
}

func (s *testServer) do(method, path, token string, payload any) (int, []byte) {
	s.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(s.t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp.StatusCode, out
}

func (s *testServer) register(email, password string) int64 {
	s.t.Helper()
	status, body := s.do(fiber.MethodPost, "/api/register", "", map[string]string{"email": email, "password": password})
	require.Equal(s.t, fiber.StatusCreated, status, string(body))
	var resp struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(s.t, json.Unmarshal(body, &resp))
	return resp.Data.ID
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	status, body := s.do(fiber.MethodPost, "/api/login", "", map[string]string{"email": email, "password": password})
	require.Equal(s.t, fiber.StatusOK, status, string(body))
	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(s.t, json.Unmarshal(body, &resp))
	require.NotEmpty(s.t, resp.Data.Token)
	return resp.Data.Token
}

func contactPayload(name string) map[string]any {
	return map[string]any{"name": name, "phone": "081234567890", "email": "c@example.com", "street": "Main St"}
}

func createdID(t *testing.T, body []byte) int64 {
	t.Helper()
	var resp struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotZero(t, resp.Data.ID)
	return resp.Data.ID
}

func TestOwnershipIsolationEndToEnd(t *testing.T) {
	s := newTestServer(t, time.Hour)
	s.register("alice@example.com", "pw12345678")
	s.register("bob@example.com", "pw87654321")
	aliceToken := s.login("alice@example.com", "pw12345678")
	bobToken := s.login("bob@example.com", "pw87654321")

	status, body := s.do(fiber.MethodPost, "/api/contacts", aliceToken, contactPayload("Carol"))
	require.Equal(t, fiber.StatusCreated, status, string(body))
	contactPath := "/api/contacts/" + strconv.FormatInt(createdID(t, body), 10)

	status, body = s.do(fiber.MethodGet, contactPath, aliceToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "Carol")

	missingStatus, missingBody := s.do(fiber.MethodGet, "/api/contacts/999999", bobToken, nil)
	require.Equal(t, fiber.StatusNotFound, missingStatus)

	for _, method := range []string{fiber.MethodGet, fiber.MethodDelete} {
		status, body = s.do(method, contactPath, bobToken, nil)
		assert.Equal(t, missingStatus, status, method)
		assert.Equal(t, string(missingBody), string(body), method)
	}
	status, body = s.do(fiber.MethodPut, contactPath, bobToken, contactPayload("Mallory"))
	assert.Equal(t, missingStatus, status)
	assert.Equal(t, string(missingBody), string(body))

	status, body = s.do(fiber.MethodGet, "/api/contacts", bobToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"data":[],"current_page":0,"total_page":0,"size":10,"total":0}`, string(body))

	status, body = s.do(fiber.MethodGet, contactPath, aliceToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "Carol")
	assert.NotContains(t, string(body), "Mallory")

	status, body = s.do(fiber.MethodPost, "/api/contacts", bobToken, contactPayload("Eve"))
	require.Equal(t, fiber.StatusCreated, status, string(body))
	bobContactPath := "/api/contacts/" + strconv.FormatInt(createdID(t, body), 10)

	status, _ = s.do(fiber.MethodGet, bobContactPath, aliceToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, body = s.do(fiber.MethodGet, bobContactPath, s.login("bob@example.com", "pw87654321"), nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "Eve")
}

func TestContactListBeyondLastPageIsEmpty(t *testing.T) {
	s := newTestServer(t, time.Hour)
	s.register("alice@example.com", "pw12345678")
	token := s.login("alice@example.com", "pw12345678")
	for _, name := range []string{"Ann", "Ben", "Cat"} {
		status, body := s.do(fiber.MethodPost, "/api/contacts", token, contactPayload(name))
		require.Equal(t, fiber.StatusCreated, status, string(body))
	}

	for _, query := range []string{"?page=5&size=2", "?page=92233720368547759&size=100"} {
		status, body := s.do(fiber.MethodGet, "/api/contacts"+query, token, nil)
		require.Equal(t, fiber.StatusOK, status, string(body))
		var resp struct {
			Data  []json.RawMessage `json:"data"`
			Total int               `json:"total"`
		}
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.Empty(t, resp.Data, query)
		assert.Equal(t, 3, resp.Total, query)
	}
}

func TestContactSearchMatchesWildcardsLiterally(t *testing.T) {
	s := newTestServer(t, time.Hour)
	s.register("alice@example.com", "pw12345678")
	token := s.login("alice@example.com", "pw12345678")
	status, body := s.do(fiber.MethodPost, "/api/contacts", token, contactPayload("Ann"))
	require.Equal(t, fiber.StatusCreated, status, string(body))

	status, body = s.do(fiber.MethodGet, "/api/contacts?name=%25", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"data":[],"current_page":0,"total_page":0,"size":10,"total":0}`, string(body))

	status, body = s.do(fiber.MethodGet, "/api/contacts?name=An", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "Ann")
}

func TestProtectedRoutesRequirePrincipal(t *testing.T) {
	s := newTestServer(t, time.Hour)

	status, first := s.do(fiber.MethodGet, "/api/contacts", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, status)

	for _, token := range []string{"garbage", "a.b.c"} {
		status, body := s.do(fiber.MethodGet, "/api/contacts", token, nil)
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, string(first), string(body))
	}

	status, _ = s.do(fiber.MethodGet, "/api-docs", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = s.do(fiber.MethodGet, "/api-docs", "garbage", nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestExpiredTokenIsTreatedAsAnonymous(t *testing.T) {
	s := newTestServer(t, time.Second)
	s.register("alice@example.com", "pw12345678")
	token := s.login("alice@example.com", "pw12345678")

	status, _ := s.do(fiber.MethodGet, "/api/contacts", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	s.clock.Advance(2 * time.Second)
	status, body := s.do(fiber.MethodGet, "/api/contacts", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, string(body), "UNAUTHENTICATED")
}

func TestLoginFailuresLookIdentical(t *testing.T) {
	s := newTestServer(t, time.Hour)
	s.register("alice@example.com", "pw12345678")

	wrongStatus, wrongBody := s.do(fiber.MethodPost, "/api/login", "", map[string]string{"email": "alice@example.com", "password": "wrong-password"})
	unknownStatus, unknownBody := s.do(fiber.MethodPost, "/api/login", "", map[string]string{"email": "ghost@example.com", "password": "pw12345678"})

	assert.Equal(t, fiber.StatusUnauthorized, wrongStatus)
	assert.Equal(t, wrongStatus, unknownStatus)
	assert.Equal(t, string(wrongBody), string(unknownBody))
}

func TestRegistrationErrors(t *testing.T) {
	s := newTestServer(t, time.Hour)
	s.register("alice@example.com", "pw12345678")

	status, body := s.do(fiber.MethodPost, "/api/register", "", map[string]string{"email": "alice@example.com", "password": "pw00000000"})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Contains(t, string(body), "DUPLICATE_HANDLE")

	status, body = s.do(fiber.MethodPost, "/api/register", "", map[string]string{"email": "nope", "password": "short"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(body), "VALIDATION_FAILED")

	status, _ = s.do(fiber.MethodPost, "/api/register", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestContactWithAddress(t *testing.T) {
	s := newTestServer(t, time.Hour)
	s.register("alice@example.com", "pw12345678")
	token := s.login("alice@example.com", "pw12345678")

	payload := contactPayload("Dave")
	payload["address_id"] = 4242
	status, body := s.do(fiber.MethodPost, "/api/contacts", token, payload)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(body), "address_id")

	status, body = s.do(fiber.MethodPost, "/api/addresses", token, map[string]string{
		"city": "Surabaya", "province": "East Java", "country": "Indonesia", "postal_code": "60111",
	})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	payload["address_id"] = createdID(t, body)

	status, body = s.do(fiber.MethodPost, "/api/contacts", token, payload)
	require.Equal(t, fiber.StatusCreated, status, string(body))

	status, body = s.do(fiber.MethodGet, "/api/addresses?city=Sura", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"total":1`)
}

func TestHealthAndRequestID(t *testing.T) {
	s := newTestServer(t, time.Hour)

	req := httptest.NewRequest(fiber.MethodGet, "/health/ready", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

	status, body := s.do(fiber.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Contains(t, string(body), "NOT_FOUND")

	status, body = s.do(fiber.MethodGet, "/metrics", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "/health/ready")
}
