package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hamdk/auth-service/internal/auth"
	"github.com/hamdk/auth-service/internal/model"
	"github.com/hamdk/auth-service/internal/queue"
)

// refreshCookieName is the side channel carrying the refresh token. The
// cookie is HttpOnly so scripts cannot read it, and scoped to all paths.
const refreshCookieName = "refreshToken"

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{Svc: svc}
}

// ----- DTOs -----

type signupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

// apiResponse is the uniform envelope for every auth response body.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// loginData mirrors auth.LoginResult minus the refresh token, which
// travels only on the cookie channel and never in the body.
type loginData struct {
	ID          uint64 `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Provider    string `json:"provider"`
	Role        string `json:"role"`
	AccessToken string `json:"accessToken"`
}

type refreshData struct {
	AccessToken string `json:"accessToken"`
}

// Signup registers a local account. Duplicate emails respond 409; the
// response never includes which internal step failed.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Message: "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, apiResponse{Message: "email/password required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Svc.Signup(ctx, req.Email, req.Password, req.Username); err != nil {
		return writeAuthError(c, err)
	}

	_ = queue.PublishAuthEvent(ctx, queue.NewAuthEvent(queue.EventUserRegistered, 0, req.Email, model.ProviderLocal))
	return c.JSON(http.StatusCreated, apiResponse{Success: true, Message: "signup succeeded"})
}

// Login verifies a password credential and starts a session. The refresh
// token is placed on the cookie and removed from the result before the
// body is written.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Message: "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, apiResponse{Message: "email/password required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	result, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return writeAuthError(c, err)
	}

	_ = queue.PublishAuthEvent(ctx, queue.NewAuthEvent(queue.EventUserLoggedIn, result.UserID, result.Email, result.Provider))
	return writeLoginResponse(c, "login succeeded", result)
}

// Refresh exchanges a valid refresh token for a new access token. The
// token is read from the HttpOnly cookie; a JSON body field is accepted as
// a fallback for non-browser clients. The refresh token is not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	token := refreshTokenFromCookie(c)
	if token == "" {
		token = refreshTokenFromBody(c)
	}
	if token == "" {
		return c.JSON(http.StatusBadRequest, apiResponse{Message: "refresh token required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	access, err := h.Svc.Refresh(ctx, token)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{
		Success: true,
		Message: "access token reissued",
		Data:    refreshData{AccessToken: access},
	})
}

// KakaoLogin redirects the browser to the provider consent page.
func (h *AuthHandler) KakaoLogin(c echo.Context) error {
	return c.Redirect(http.StatusFound, h.Svc.AuthorizationURL())
}

// KakaoCallback completes the delegated login with the authorization code
// the provider appended to the redirect.
func (h *AuthHandler) KakaoCallback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, apiResponse{Message: "code required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	result, err := h.Svc.DelegatedLogin(ctx, code)
	if err != nil {
		return writeAuthError(c, err)
	}

	_ = queue.PublishAuthEvent(ctx, queue.NewAuthEvent(queue.EventUserLoggedIn, result.UserID, result.Email, result.Provider))
	return writeLoginResponse(c, "kakao login succeeded", result)
}

// Me returns the identity claims of the presented access token.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, apiResponse{
		Success: true,
		Message: "ok",
		Data: echo.Map{
			"email":   c.Get("email"),
			"user_id": c.Get("user_id"),
		},
	})
}

// ----- helpers -----

func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

func refreshTokenFromCookie(c echo.Context) string {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie == nil {
		return ""
	}
	return cookie.Value
}

func refreshTokenFromBody(c echo.Context) string {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return ""
	}
	return strings.TrimSpace(req.RefreshToken)
}

// writeLoginResponse sets the refresh cookie and writes the body without
// the refresh token. Once on the cookie channel, the token value never
// appears in a payload again.
func writeLoginResponse(c echo.Context, message string, result *auth.LoginResult) error {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    result.RefreshToken,
		HttpOnly: true,  // not readable by scripts
		Secure:   false, // enable once the service terminates TLS
		Path:     "/",
	})
	result.RefreshToken = ""

	return c.JSON(http.StatusOK, apiResponse{
		Success: true,
		Message: message,
		Data: loginData{
			ID:          result.UserID,
			Email:       result.Email,
			Username:    result.Nickname,
			Provider:    result.Provider,
			Role:        result.Role,
			AccessToken: result.AccessToken,
		},
	})
}

// writeAuthError maps the auth error taxonomy onto stable HTTP statuses.
// Storage and provider error text stays out of response bodies.
func writeAuthError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredential):
		return c.JSON(http.StatusUnauthorized, apiResponse{Message: "invalid credentials"})
	case errors.Is(err, auth.ErrAccountDisabled):
		return c.JSON(http.StatusForbidden, apiResponse{Message: "account is disabled"})
	case errors.Is(err, auth.ErrDuplicateIdentity):
		return c.JSON(http.StatusConflict, apiResponse{Message: "account already exists"})
	case errors.Is(err, auth.ErrTokenInvalid):
		return c.JSON(http.StatusUnauthorized, apiResponse{Message: "invalid refresh token"})
	case errors.Is(err, auth.ErrTokenExpired):
		return c.JSON(http.StatusUnauthorized, apiResponse{Message: "refresh token expired"})
	case errors.Is(err, auth.ErrIdentityMismatch):
		return c.JSON(http.StatusUnauthorized, apiResponse{Message: "invalid refresh token subject"})
	case errors.Is(err, auth.ErrExternalAuth):
		return c.JSON(http.StatusBadGateway, apiResponse{Message: "external login failed"})
	case errors.Is(err, auth.ErrSignupFailed):
		return c.JSON(http.StatusInternalServerError, apiResponse{Message: "signup failed"})
	default:
		return c.JSON(http.StatusInternalServerError, apiResponse{Message: "internal error"})
	}
}
