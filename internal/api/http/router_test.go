package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookreviewhub/backend/internal/api/http/handlers"
	"github.com/bookreviewhub/backend/internal/auth"
	"github.com/bookreviewhub/backend/internal/cache"
	"github.com/bookreviewhub/backend/internal/config"
	"github.com/bookreviewhub/backend/internal/domain"
	"github.com/bookreviewhub/backend/internal/events"
	"github.com/bookreviewhub/backend/internal/observability"
	"github.com/bookreviewhub/backend/internal/repository"
	"github.com/bookreviewhub/backend/internal/service"
)

type testServer struct {
	app       *fiber.App
	repo      repository.UserRepository
	auth      *service.AuthService
	readiness *fakeDependency
	metrics   *observability.Metrics
}

type fakeDependency struct {
	enabled bool
	err     error
}

func (f *fakeDependency) Enabled() bool { return f.enabled }
func (f *fakeDependency) Ping(ctx context.Context) error { return f.err }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:     "router-test-secret",
		JWTExpiration: time.Hour,
		BcryptCost:    4,
	}}
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	repo := repository.NewMemoryUserRepository()

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:   repo,
		Dispatcher: events.NewInMemoryDispatcher(),
	}, logger)
	loader := cache.NewIdentityCache(nil, repo, 0, logger)
	readiness := &fakeDependency{}

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, MiddlewareConfig{Timeout: 5 * time.Second, AllowedOrigin: "http://localhost:3000"})
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("bookreview-auth", "test", metrics, map[string]handlers.Dependency{"postgres": readiness}),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(authService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), loader, logger, PublicPrefixes...),
	})
	app.Get("/api/boom", func(c *fiber.Ctx) error { panic("kaboom") })
	app.Get("/api/fail", func(c *fiber.Ctx) error { return errors.New("dial tcp 10.0.0.3:5432: refused") })

	return &testServer{app: app, repo: repo, auth: authService, readiness: readiness, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func aliceBody() map[string]interface{} {
	return map[string]interface{}{
		"username":  "alice",
		"password":  "p@ss",
		"email":     "a@x.com",
		"firstName": "A",
		"lastName":  "L",
	}
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, status, body)
	data := body["data"].(map[string]interface{})
	return data["token"].(string)
}

func TestAliceScenario(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/auth/register", aliceBody(), "")
	require.Equal(t, http.StatusCreated, status)
	assert.EqualValues(t, 201, body["status"])
	assert.Equal(t, "User registered successfully!", body["message"])
	assert.Nil(t, body["data"])
	assert.NotEmpty(t, body["timestamp"])

	status, body = s.do(t, http.MethodPost, "/api/auth/register", aliceBody(), "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Username is already taken", body["message"])
	assert.Equal(t, "Bad Request", body["error"])
	assert.Equal(t, "/api/auth/register", body["path"])

	status, body = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "p@ss"}, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Login successful!", body["message"])
	token := body["data"].(map[string]interface{})["token"].(string)
	assert.NotEmpty(t, token)

	status, body = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Bad credentials", body["message"])

	status, unknown := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "mallory", "password": "p@ss"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, body["message"], unknown["message"])

	status, body = s.do(t, http.MethodGet, "/api/users/me", nil, token)
	require.Equal(t, http.StatusOK, status)
	profile := body["data"].(map[string]interface{})
	assert.Equal(t, "alice", profile["username"])
	assert.Equal(t, "USER", profile["role"])
	assert.NotContains(t, profile, "password")
	assert.NotContains(t, profile, "passwordHash")
	assert.NotNil(t, profile["lastLoginAt"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.do(t, http.MethodPost, "/api/auth/register", aliceBody(), "")
	require.Equal(t, http.StatusCreated, status)

	other := aliceBody()
	other["username"] = "alice2"
	status, body := s.do(t, http.MethodPost, "/api/auth/register", other, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email is already registered", body["message"])
}

func TestRegisterValidationFailures(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "bob",
		"email":    "not-an-email",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "must be a well-formed email address", body["email"])
	assert.Equal(t, "must not be blank", body["password"])
	assert.Equal(t, "must not be blank", body["firstName"])
	assert.Equal(t, "must not be blank", body["lastName"])
	assert.NotContains(t, body, "username")
	assert.NotContains(t, body, "middleName")
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/auth/login", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Malformed request body", body["message"])
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/api/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", body["error"])
}

func TestProtectedRouteRejectsBadTokens(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.do(t, http.MethodPost, "/api/auth/register", aliceBody(), "")
	require.Equal(t, http.StatusCreated, status)

	status, body := s.do(t, http.MethodGet, "/api/users/me", nil, "not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid JWT token", body["error"])

	forged, _, err := auth.NewTokenManager("someone-else", time.Hour).GenerateToken(&domain.User{Username: "alice"})
	require.NoError(t, err)
	status, body = s.do(t, http.MethodGet, "/api/users/me", nil, forged)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid JWT token", body["error"])
}

func TestAdminRoute(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.do(t, http.MethodPost, "/api/auth/register", aliceBody(), "")
	require.Equal(t, http.StatusCreated, status)

	hash, err := auth.HashPassword("rootpw", 4)
	require.NoError(t, err)
	require.NoError(t, s.repo.Create(context.Background(), &domain.User{
		Username:     "root",
		PasswordHash: hash,
		Email:        "root@x.com",
		Role:         domain.RoleAdmin,
		Status:       domain.UserStatusActive,
		FirstName:    "R",
		LastName:     "T",
	}))

	userToken := s.login(t, "alice", "p@ss")
	status, body := s.do(t, http.MethodGet, "/api/admin/users/alice", nil, userToken)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Access Denied", body["error"])

	adminToken := s.login(t, "root", "rootpw")
	status, body = s.do(t, http.MethodGet, "/api/admin/users/alice", nil, adminToken)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "a@x.com", body["data"].(map[string]interface{})["email"])

	status, body = s.do(t, http.MethodGet, "/api/admin/users/ghost", nil, adminToken)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", body["message"])
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/api/auth/login", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "Method not allowed", body["message"])
	assert.EqualValues(t, 405, body["status"])
}

func TestInternalErrorsAreGeneric(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/boom", "/api/fail"} {
		status, body := s.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusInternalServerError, status, path)
		assert.Equal(t, "An unexpected error occurred", body["message"], path)
		assert.Equal(t, "Internal Server Error", body["error"], path)
		assert.Equal(t, path, body["path"])
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/health/live", nil, "garbage-token")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = s.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "disabled", body["dependencies"].(map[string]interface{})["postgres"])

	s.readiness.enabled = true
	s.readiness.err = errors.New("down")
	status, body = s.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unavailable", body["dependencies"].(map[string]interface{})["postgres"])

	status, body = s.do(t, http.MethodGet, "/health/metrics", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["requests"])
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestRegisterPasswordOverBcryptLimit(t *testing.T) {
	s := newTestServer(t)

	body := aliceBody()
	body["password"] = strings.Repeat("é", 40)
	status, resp := s.do(t, http.MethodPost, "/api/auth/register", body, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "must be at most 72 bytes", resp["password"])

	body["password"] = strings.Repeat("é", 36)
	status, _ = s.do(t, http.MethodPost, "/api/auth/register", body, "")
	assert.Equal(t, http.StatusCreated, status)
}

func TestErrorMetricsKeyedByRoute(t *testing.T) {
	s := newTestServer(t)
	hash, err := auth.HashPassword("rootpw", 4)
	require.NoError(t, err)
	require.NoError(t, s.repo.Create(context.Background(), &domain.User{
		Username:     "root",
		PasswordHash: hash,
		Email:        "root@x.com",
		Role:         domain.RoleAdmin,
		Status:       domain.UserStatusActive,
		FirstName:    "R",
		LastName:     "T",
	}))
	token := s.login(t, "root", "rootpw")

	for _, name := range []string{"ghost1", "ghost2", "ghost3"} {
		status, _ := s.do(t, http.MethodGet, "/api/admin/users/"+name, nil, token)
		require.Equal(t, http.StatusNotFound, status)
	}

	errs := s.metrics.Snapshot().Errors
	assert.Equal(t, int64(3), errs["/api/admin/users/:username|GET|NOT_FOUND"])
	for key := range errs {
		assert.NotContains(t, key, "ghost")
	}
}

func TestWildcardOriginDoesNotPanic(t *testing.T) {
	app := fiber.New()
	assert.NotPanics(t, func() {
		RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), MiddlewareConfig{AllowedOrigin: "*"})
	})
}
