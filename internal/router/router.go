package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/hamdk/auth-service/internal/config"
	"github.com/hamdk/auth-service/internal/handler"
	"github.com/hamdk/auth-service/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the authentication endpoints. Credential operations
// live under /v1/auth behind the rate limiter; the Kakao redirect flow
// lives under /oauth/kakao; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	limit := middleware.NewTokenBucket(rlCfg, rdb)

	g := e.Group("/v1/auth", limit)
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	// Reissues the access token only; the refresh token is not rotated.
	g.POST("/refresh", a.Refresh)

	// Browser-facing Kakao OAuth flow. The login route only redirects, so
	// it stays outside the limiter; the callback performs the exchange and
	// is limited like the credential endpoints.
	e.GET("/oauth/kakao/login", a.KakaoLogin)
	e.GET("/oauth/kakao/callback", a.KakaoCallback, limit)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}
