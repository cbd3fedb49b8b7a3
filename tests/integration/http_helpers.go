package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/acarrillo/tasknest/internal/auth"
	"github.com/acarrillo/tasknest/internal/config"
	"github.com/acarrillo/tasknest/internal/database"
	"github.com/acarrillo/tasknest/internal/handlers"
	middlewareCustom "github.com/acarrillo/tasknest/internal/middleware"
	"github.com/acarrillo/tasknest/internal/routes"
	"github.com/acarrillo/tasknest/internal/services"
	pkglogger "github.com/acarrillo/tasknest/pkg/logger"
)

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server  *httptest.Server
	DB      *database.DB
	Config  *config.Config
	Lockout *services.LockoutService

	logger *slog.Logger
}

// NewTestServer initializes a complete HTTP server against a real database.
// The lockout window is shortened so expiry can be exercised without long sleeps.
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret-32-characters-long-for-testing",
			SessionTokenExpiry:   24 * time.Hour,
			MaxFailedLogins:      3,
			LockoutDuration:      2 * time.Second,
			LockoutSweepInterval: 1 * time.Hour,
			CookieSecure:         false,
			CookieSameSite:       "lax",
		},
		Server: config.ServerConfig{
			Port:           "0",
			Env:            "test",
			AllowedOrigins: []string{},
		},
	}

	userRepo, taskRepo := InitializeRepositories(db)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTokenExpiry)
	auditLogger := pkglogger.NewAuditLogger(logger)

	lockoutService := services.NewLockoutService(services.LockoutConfig{
		MaxFailedAttempts: cfg.Auth.MaxFailedLogins,
		LockDuration:      cfg.Auth.LockoutDuration,
	}, logger)

	authService := services.NewAuthService(userRepo, tokenManager, lockoutService, logger, auditLogger)
	taskService := services.NewTaskService(taskRepo, logger)

	cookieConfig := auth.CookieConfig{
		Secure:   cfg.Auth.CookieSecure,
		SameSite: cfg.Auth.CookieSameSite,
	}
	authHandler := handlers.NewAuthHandler(authService, cookieConfig, cfg.Auth.SessionTokenExpiry)
	taskHandler := handlers.NewTaskHandler(taskService)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders())
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(r, authHandler, taskHandler, tokenManager)

	server := httptest.NewServer(r)

	return &TestServer{
		Server:  server,
		DB:      db,
		Config:  cfg,
		Lockout: lockoutService,
		logger:  logger,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithSession makes a request carrying the session cookie
func (ts *TestServer) RequestWithSession(method, path, token string, body interface{}) (*http.Response, error) {
	return ts.Request(method, path, body, map[string]string{
		"Cookie": auth.SessionCookieName + "=" + token,
	})
}

// ParseJSONResponse parses JSON response body into target struct
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// ExtractSessionCookie returns the session cookie set on the response, or nil
func ExtractSessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	return nil
}

// GetErrorMessage extracts error message from error response
func GetErrorMessage(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	var errResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return "", err
	}
	if msg, ok := errResp["message"].(string); ok {
		return msg, nil
	}
	return "", nil
}
