package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamdk/auth-service/internal/auth"
	"github.com/hamdk/auth-service/internal/config"
	"github.com/hamdk/auth-service/internal/handler"
	"github.com/hamdk/auth-service/internal/model"
	"github.com/hamdk/auth-service/internal/repository"
	"github.com/hamdk/auth-service/internal/router"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// Minimal in-memory stores; the service state machine itself is covered in
// the auth package tests.

type memUsers struct {
	seq   uint64
	users map[uint64]*model.User
}

func (m *memUsers) Create(_ context.Context, u *model.User) (uint64, error) {
	for _, ex := range m.users {
		if ex.Email == u.Email {
			return 0, repository.ErrDuplicateEmail
		}
	}
	m.seq++
	cp := *u
	cp.ID = m.seq
	m.users[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByProviderSubject(_ context.Context, provider, subjectID string) (*model.User, error) {
	for _, u := range m.users {
		if u.Provider == provider && u.ProviderSubjectID == subjectID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

type memSessions struct {
	sessions map[string]*model.RefreshSession
}

func (m *memSessions) Save(_ context.Context, s *model.RefreshSession) error {
	if _, ok := m.sessions[s.Token]; ok {
		return repository.ErrDuplicateToken
	}
	cp := *s
	m.sessions[s.Token] = &cp
	return nil
}

func (m *memSessions) FindByToken(_ context.Context, token string) (*model.RefreshSession, error) {
	if s, ok := m.sessions[token]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

type noExchanger struct{}

func (noExchanger) AuthorizationURL() string { return "https://kauth.kakao.com/oauth/authorize?x=y" }
func (noExchanger) ExchangeCode(context.Context, string) (string, error) {
	return "", auth.ErrExternalAuth
}
func (noExchanger) FetchProfile(context.Context, string) (*auth.ProviderProfile, error) {
	return nil, auth.ErrExternalAuth
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	codec := auth.NewTokenCodec(testSecret, 15, 7)
	svc := auth.NewService(
		&memUsers{users: map[uint64]*model.User{}},
		&memSessions{sessions: map[string]*model.RefreshSession{}},
		codec, noExchanger{}, 4)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(svc), testSecret,
		config.RateLimitConfig{Enabled: false}, nil)
	return e
}

func doJSON(e *echo.Echo, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthFlow_RefreshCookieContract(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/v1/auth/signup",
		`{"email":"ann@example.com","password":"secret","username":"Ann"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"email":"ann@example.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := findCookie(t, rec, "refreshToken")
	require.NotNil(t, cookie, "login must set the refresh cookie")
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.NotEmpty(t, cookie.Value)

	// The body carries the access token but never the refresh token.
	assert.NotContains(t, rec.Body.String(), cookie.Value)
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			AccessToken string `json:"accessToken"`
			Email       string `json:"email"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.Data.AccessToken)
	assert.Equal(t, "ann@example.com", body.Data.Email)

	// Refresh reads the cookie and reissues only the access token.
	rec = doJSON(e, http.MethodPost, "/v1/auth/refresh", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), cookie.Value)

	var refreshBody struct {
		Data struct {
			AccessToken string `json:"accessToken"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshBody))
	assert.NotEmpty(t, refreshBody.Data.AccessToken)
}

func TestAuthFlow_RefreshBodyFallback(t *testing.T) {
	e := newTestServer(t)

	doJSON(e, http.MethodPost, "/v1/auth/signup",
		`{"email":"ann@example.com","password":"secret","username":"Ann"}`)
	rec := doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"email":"ann@example.com","password":"secret"}`)
	cookie := findCookie(t, rec, "refreshToken")
	require.NotNil(t, cookie)

	rec = doJSON(e, http.MethodPost, "/v1/auth/refresh",
		`{"refreshToken":"`+cookie.Value+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthFlow_RefreshWithoutToken(t *testing.T) {
	e := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/v1/auth/refresh", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthFlow_LoginFailures(t *testing.T) {
	e := newTestServer(t)

	doJSON(e, http.MethodPost, "/v1/auth/signup",
		`{"email":"ann@example.com","password":"secret","username":"Ann"}`)

	rec := doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"email":"ann@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"email":"nobody@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/auth/signup",
		`{"email":"Ann@Example.com","password":"secret","username":"Ann"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthFlow_ProtectedRoute(t *testing.T) {
	e := newTestServer(t)

	doJSON(e, http.MethodPost, "/v1/auth/signup",
		`{"email":"ann@example.com","password":"secret","username":"Ann"}`)
	rec := doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"email":"ann@example.com","password":"secret"}`)

	var body struct {
		Data struct {
			AccessToken string `json:"accessToken"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+body.Data.AccessToken)
	out := httptest.NewRecorder()
	e.ServeHTTP(out, req)
	assert.Equal(t, http.StatusOK, out.Code)
	assert.Contains(t, out.Body.String(), "ann@example.com")

	// A refresh token must not authorize requests.
	cookie := findCookie(t, rec, "refreshToken")
	require.NotNil(t, cookie)
	req = httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+cookie.Value)
	out = httptest.NewRecorder()
	e.ServeHTTP(out, req)
	assert.Equal(t, http.StatusUnauthorized, out.Code)

	// No token at all.
	req = httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	out = httptest.NewRecorder()
	e.ServeHTTP(out, req)
	assert.Equal(t, http.StatusUnauthorized, out.Code)
}

func TestAuthFlow_KakaoLoginRedirect(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/oauth/kakao/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderLocation), "kauth.kakao.com")
}

func TestAuthFlow_KakaoCallbackFailure(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/oauth/kakao/callback?code=bad", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	// Without a code the callback rejects outright.
	req = httptest.NewRequest(http.MethodGet, "/oauth/kakao/callback", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
