package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkotenko/authflow/internal/common"
	"github.com/dkotenko/authflow/internal/cryptox"
	"github.com/dkotenko/authflow/internal/logging"
	"github.com/dkotenko/authflow/internal/server/config"
	"github.com/dkotenko/authflow/internal/server/repositories/accounts"
	"github.com/dkotenko/authflow/internal/server/services"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (nopLogger) With(...any) logging.Logger            { return nopLogger{} }

type fakeNotifier struct {
	mu   sync.Mutex
	otps []string
	fail error
}

func (f *fakeNotifier) Send(_ context.Context, _, _, _ string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	otp, _ := data["Otp"].(string)
	f.otps = append(f.otps, otp)
	return nil
}

func (f *fakeNotifier) lastOtp(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.otps, "no mail was sent")
	return f.otps[len(f.otps)-1]
}

type apiEnv struct {
	router   *gin.Engine
	notifier *fakeNotifier
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.PasswordHashCost = 4

	repo := accounts.NewMemoryRepository()
	notifier := &fakeNotifier{}
	locks := services.NewKeyedMutex()

	hasher, err := cryptox.NewHasher(cfg.PasswordHashCost)
	require.NoError(t, err)

	otp := services.NewOtpService(repo, notifier, cfg, locks)
	sessions := services.NewSessionService(repo, hasher, cfg, locks)
	handler := NewHandler(cfg, nopLogger{}, otp, sessions)

	return &apiEnv{router: handler.Router(), notifier: notifier}
}

func (e *apiEnv) postJSON(t *testing.T, path string, body any, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func withCookie(c *http.Cookie) func(*http.Request) {
	return func(req *http.Request) { req.AddCookie(c) }
}

func withBearer(token string) func(*http.Request) {
	return func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == refreshCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", refreshCookieName)
	return nil
}

// onboard walks an email through request-otp, verify-otp, and register.
func (e *apiEnv) onboard(t *testing.T, email, password string) {
	t.Helper()

	w := e.postJSON(t, "/auth/request-otp", gin.H{
		"email": email, "first_name": "Ann", "last_name": "Example",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.postJSON(t, "/auth/verify-otp", gin.H{
		"email": email, "otp": e.notifier.lastOtp(t),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.postJSON(t, "/auth/register", gin.H{
		"email": email, "first_name": "Ann", "last_name": "Example", "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func (e *apiEnv) login(t *testing.T, email, password string) (string, *http.Cookie) {
	t.Helper()
	w := e.postJSON(t, "/auth/login", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token, refreshCookie(t, w)
}

func TestOnboardingFlow(t *testing.T) {
	env := newAPIEnv(t)

	w := env.postJSON(t, "/auth/request-otp", gin.H{
		"email": "ann@example.com", "first_name": "Ann", "last_name": "Example",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, common.MsgOtpSent, decodeBody(t, w)["message"])

	w = env.postJSON(t, "/auth/verify-otp", gin.H{
		"email": "ann@example.com", "otp": env.notifier.lastOtp(t),
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, common.MsgEmailVerified, decodeBody(t, w)["message"])

	w = env.postJSON(t, "/auth/register", gin.H{
		"email": "ann@example.com", "first_name": "Ann", "last_name": "Example",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, common.MsgAccountCreated, decodeBody(t, w)["message"])
}

func TestLogin_SetsRefreshCookie(t *testing.T) {
	env := newAPIEnv(t)
	env.onboard(t, "ann@example.com", "s3cret-pass")

	token, cookie := env.login(t, "ann@example.com", "s3cret-pass")
	require.NotEmpty(t, token)

	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)
	assert.False(t, cookie.Secure, "Secure is reserved for production")
	assert.NotEmpty(t, cookie.Value)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newAPIEnv(t)
	env.onboard(t, "ann@example.com", "s3cret-pass")

	w := env.postJSON(t, "/auth/login", gin.H{"email": "ann@example.com", "password": "wrong-pass"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials.", decodeBody(t, w)["message"])
}

func TestLogin_UnknownEmail(t *testing.T) {
	env := newAPIEnv(t)

	w := env.postJSON(t, "/auth/login", gin.H{"email": "ghost@example.com", "password": "whatever9"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_RotatesToken(t *testing.T) {
	env := newAPIEnv(t)
	env.onboard(t, "ann@example.com", "s3cret-pass")
	_, cookie := env.login(t, "ann@example.com", "s3cret-pass")

	w := env.postJSON(t, "/auth/refresh", gin.H{}, withCookie(cookie))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rotated := refreshCookie(t, w)
	assert.NotEqual(t, cookie.Value, rotated.Value)
	assert.NotEmpty(t, decodeBody(t, w)["access_token"])

	// The pre-rotation token is no longer honored.
	w = env.postJSON(t, "/auth/refresh", gin.H{}, withCookie(cookie))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid refresh token.", decodeBody(t, w)["message"])

	// The rotated one is.
	w = env.postJSON(t, "/auth/refresh", gin.H{}, withCookie(rotated))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRefresh_NoCookie(t *testing.T) {
	env := newAPIEnv(t)

	w := env.postJSON(t, "/auth/refresh", gin.H{})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No refresh token found.", decodeBody(t, w)["message"])
}

func TestRefresh_GarbageCookie(t *testing.T) {
	env := newAPIEnv(t)

	cookie := &http.Cookie{Name: refreshCookieName, Value: "not-a-jwt"}
	w := env.postJSON(t, "/auth/refresh", gin.H{}, withCookie(cookie))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid refresh token.", decodeBody(t, w)["message"])
}

func TestLogout_ClearsSession(t *testing.T) {
	env := newAPIEnv(t)
	env.onboard(t, "ann@example.com", "s3cret-pass")
	token, cookie := env.login(t, "ann@example.com", "s3cret-pass")

	w := env.postJSON(t, "/auth/logout", gin.H{}, withBearer(token))
	require.Equal(t, http.StatusOK, w.Code)

	cleared := refreshCookie(t, w)
	assert.Less(t, cleared.MaxAge, 0)
	assert.Empty(t, cleared.Value)

	// The signed cookie survives logout but its stored hash is gone.
	w = env.postJSON(t, "/auth/refresh", gin.H{}, withCookie(cookie))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	env := newAPIEnv(t)
	env.onboard(t, "ann@example.com", "s3cret-pass")
	token, _ := env.login(t, "ann@example.com", "s3cret-pass")

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "ann@example.com", body["email"])
	assert.Equal(t, "Ann", body["first_name"])
	assert.NotEmpty(t, body["id"])
	for _, field := range []string{"password_hash", "otp_code", "refresh_token_hash"} {
		_, leaked := body[field]
		assert.False(t, leaked, "profile leaks %s", field)
	}
}

func TestMe_AuthFailures(t *testing.T) {
	env := newAPIEnv(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Token abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRefreshTokenRejectedAsBearer(t *testing.T) {
	env := newAPIEnv(t)
	env.onboard(t, "ann@example.com", "s3cret-pass")
	_, cookie := env.login(t, "ann@example.com", "s3cret-pass")

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+cookie.Value)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestErrorMapping(t *testing.T) {
	env := newAPIEnv(t)
	env.onboard(t, "done@example.com", "s3cret-pass")

	// One onboarding pass for a pending account.
	w := env.postJSON(t, "/auth/request-otp", gin.H{
		"email": "pending@example.com", "first_name": "Bo", "last_name": "Example",
	})
	require.Equal(t, http.StatusOK, w.Code)

	tests := []struct {
		name       string
		path       string
		body       gin.H
		wantStatus int
		wantMsg    string
	}{
		{
			name: "register without verification",
			path: "/auth/register",
			body: gin.H{"email": "pending@example.com", "first_name": "Bo",
				"last_name": "Example", "password": "s3cret-pass"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    common.MsgEmailUnverified,
		},
		{
			name:       "register unknown email",
			path:       "/auth/register",
			body:       gin.H{"email": "ghost@example.com", "first_name": "Bo", "last_name": "Example", "password": "s3cret-pass"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    common.MsgUserNotFound,
		},
		{
			name:       "verify without request",
			path:       "/auth/verify-otp",
			body:       gin.H{"email": "ghost@example.com", "otp": "123456"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    common.MsgUserNotFound,
		},
		{
			name:       "wrong otp",
			path:       "/auth/verify-otp",
			body:       gin.H{"email": "pending@example.com", "otp": "000000"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "request otp for created account",
			path:       "/auth/request-otp",
			body:       gin.H{"email": "done@example.com", "first_name": "Ann", "last_name": "Example"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    common.MsgAlreadyCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.postJSON(t, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, decodeBody(t, w)["message"])
			}
		})
	}
}

func TestBadRequestBodies(t *testing.T) {
	env := newAPIEnv(t)

	tests := []struct {
		name string
		path string
		body gin.H
	}{
		{"request-otp missing email", "/auth/request-otp", gin.H{"first_name": "Ann", "last_name": "Example"}},
		{"request-otp malformed email", "/auth/request-otp", gin.H{"email": "nope", "first_name": "Ann", "last_name": "Example"}},
		{"verify-otp non-numeric code", "/auth/verify-otp", gin.H{"email": "a@x.com", "otp": "abcdef"}},
		{"verify-otp wrong length", "/auth/verify-otp", gin.H{"email": "a@x.com", "otp": "1234"}},
		{"register short password", "/auth/register", gin.H{"email": "a@x.com", "first_name": "Ann", "last_name": "Example", "password": "short"}},
		{"login missing password", "/auth/login", gin.H{"email": "a@x.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.postJSON(t, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestOtpSendFailure(t *testing.T) {
	env := newAPIEnv(t)
	env.notifier.fail = fmt.Errorf("smtp unreachable")

	w := env.postJSON(t, "/auth/request-otp", gin.H{
		"email": "ann@example.com", "first_name": "Ann", "last_name": "Example",
	})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, common.MsgOtpSendFailed, decodeBody(t, w)["message"])
}
