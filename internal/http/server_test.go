package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LDK/javascriv-api/internal/auth"
	"github.com/LDK/javascriv-api/internal/config"
	"github.com/LDK/javascriv-api/internal/domain/user"
	"github.com/LDK/javascriv-api/internal/projects"
	"github.com/LDK/javascriv-api/internal/realtime"
	"github.com/LDK/javascriv-api/internal/repository"
	apperrors "github.com/LDK/javascriv-api/pkg/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noUsers struct{}

func (noUsers) Create(context.Context, repository.Tx, user.CreateUserInput) (*user.User, error) {
	return nil, apperrors.Conflict("taken")
}

func (noUsers) GetByID(context.Context, repository.Tx, int64) (*user.User, error) {
	return nil, apperrors.NotFound("user not found")
}

func (noUsers) GetByUsername(context.Context, repository.Tx, string) (*user.User, error) {
	return nil, apperrors.NotFound("user not found")
}

func (noUsers) GetByEmail(context.Context, repository.Tx, string) (*user.User, error) {
	return nil, apperrors.NotFound("user not found")
}

func (noUsers) UpdateOptions(context.Context, repository.Tx, int64, user.UpdateOptionsInput) (*user.User, error) {
	return nil, apperrors.NotFound("user not found")
}

func newTestServer(t *testing.T, opts ...func(*config.Config)) (*Server, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService("0123456789abcdef0123456789abcdef", time.Hour, "test")
	cfg := &config.Config{
		Server: config.ServerConfig{
			BodyLimit:          "1M",
			RateLimitRPS:       100,
			RateLimitBurst:     200,
			AuthRateLimitRPS:   1,
			AuthRateLimitBurst: 2,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return NewServer(&ServerDependencies{
		Config:         cfg,
		Users:          noUsers{},
		Projects:       projects.New(projects.Dependencies{}),
		Hub:            realtime.NewHub(),
		JWTService:     jwtService,
		Hasher:         auth.NewPasswordHasher(4),
		AuthMiddleware: auth.NewMiddleware(jwtService),
	}), jwtService
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestServer_RequiresToken(t *testing.T) {
	srv, jwtService := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := jwtService.Generate(5, "ada")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "user not found", body[jsonKeyError])
	assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), body[jsonKeyRequestID])
}

func TestServer_BadProjectID(t *testing.T) {
	srv, jwtService := newTestServer(t)
	token, err := jwtService.Generate(5, "ada")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/project/abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_AuthRateLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/user/login", nil)
		req.Header.Set("X-Real-IP", "198.51.100.7")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}

func TestServer_Metrics(t *testing.T) {
	srv, _ := newTestServer(t)

	srv.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		TotalRequests int64            `json:"totalRequests"`
		Routes        map[string]int64 `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.TotalRequests)
	assert.Equal(t, int64(1), body.Routes["GET /health"])
}

func TestServer_ProfilingRequiresFlagAndToken(t *testing.T) {
	srv, jwtService := newTestServer(t)
	token, err := jwtService.Generate(5, "ada")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/goroutine", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	srv, jwtService = newTestServer(t, func(cfg *config.Config) { cfg.Server.EnableProfiling = true })
	token, err = jwtService.Generate(5, "ada")
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/goroutine", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/debug/pprof/goroutine", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_StartReturnsNilAfterShutdown(t *testing.T) {
	srv, _ := newTestServer(t)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start("127.0.0.1:0") }()

	require.Eventually(t, func() bool { return srv.echo.ListenerAddr() != nil }, 5*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}
