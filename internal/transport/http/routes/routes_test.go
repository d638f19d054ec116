package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/DanisonEdiel/auth-login-signup-service/internal/infra/config"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/infra/security"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/repository/memory"
	httproutes "github.com/DanisonEdiel/auth-login-signup-service/internal/transport/http/routes"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/usecase"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hasher, err := security.NewArgon2Hasher(security.Argon2Config{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  8,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	codec, err := security.NewTokenCodec("test-secret", "HS256", "auth-service-test")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	auth, err := usecase.NewAuthService(memory.NewAccountRepository(), hasher, codec, time.Hour, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}

	cfg := &config.AppConfig{
		App: config.AppSettings{Env: "test"},
		JWT: config.JWTSettings{AccessTokenTTL: time.Hour},
	}

	return httproutes.Register(httproutes.Dependencies{
		Config: cfg,
		Logger: zaptest.NewLogger(t),
		Auth:   auth,
	})
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestRegisterLoginValidateFlow(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(t, r, "/api/v1/auth/register", map[string]string{
		"email":    "a@x.com",
		"username": "alice",
		"password": "pw123456",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var registered struct {
		Account struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"account"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &registered); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if registered.Account.Email != "a@x.com" {
		t.Fatalf("unexpected email %q", registered.Account.Email)
	}

	// Duplicate registration conflicts.
	w = postJSON(t, r, "/api/v1/auth/register", map[string]string{
		"email":    "A@X.com",
		"username": "alice2",
		"password": "pw123456",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", w.Code)
	}

	w = postJSON(t, r, "/api/v1/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "pw123456",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var login struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if login.AccessToken == "" || login.TokenType != "Bearer" {
		t.Fatalf("unexpected login response: %+v", login)
	}

	w = postJSON(t, r, "/api/v1/auth/validate", map[string]string{"token": login.AccessToken})
	if w.Code != http.StatusOK {
		t.Fatalf("validate: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var validated struct {
		Valid bool     `json:"valid"`
		Roles []string `json:"roles"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &validated); err != nil {
		t.Fatalf("decode validate response: %v", err)
	}
	if !validated.Valid || len(validated.Roles) != 1 || validated.Roles[0] != "USER" {
		t.Fatalf("unexpected validate response: %+v", validated)
	}

	w = httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r := newTestRouter(t)

	postJSON(t, r, "/api/v1/auth/register", map[string]string{
		"email":    "a@x.com",
		"username": "alice",
		"password": "pw123456",
	})

	w := postJSON(t, r, "/api/v1/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", w.Code)
	}

	w = postJSON(t, r, "/api/v1/auth/login", map[string]string{
		"email":    "nobody@x.com",
		"password": "pw123456",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email: expected 401, got %d", w.Code)
	}
}

func TestValidateRejectsBadTokens(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(t, r, "/api/v1/auth/validate", map[string]string{"token": "not-a-token"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("malformed token: expected 401, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing auth header: expected 401, got %d", w.Code)
	}
}
