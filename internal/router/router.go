package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"  // Echo web framework
	"github.com/redis/go-redis/v9" // optional Redis client for rate limiting

	"github.com/iliyamo/auth-account-service/internal/config"
	"github.com/iliyamo/auth-account-service/internal/handler"
	"github.com/iliyamo/auth-account-service/internal/middleware"
	"github.com/iliyamo/auth-account-service/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the full auth and account surface. The
// unauthenticated credential endpoints live under /v1/auth behind the
// rate limiter; everything identity-bound lives under /v1 behind the
// JWT middleware; the admin operations additionally require an
// elevated role. rdb may be nil, in which case rate limiting is a
// pass-through.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, cfg config.Config, rdb *redis.Client) {
	// Credential endpoints: no session required, brute-force limited.
	g := e.Group("/v1/auth")
	g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// OTP-assisted login: request a code, then redeem it.
	g.POST("/send-otp", a.SendOTP)
	g.POST("/login-otp", a.LoginOTP)
	// Email verification: request a code, then redeem it.
	g.POST("/send-verification", a.SendVerification)
	g.POST("/verify-email", a.VerifyEmail)
	// Session lifecycle by refresh token. These need no access token:
	// the refresh token itself is the credential being exercised.
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	// Identity-bound endpoints: valid access token required.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(cfg.JWTSecret))
	auth.POST("/logout-all", a.LogoutAll)
	auth.GET("/me", u.Me)
	auth.POST("/me/change-password", u.ChangePassword)

	// Admin surface on top of the authenticated group.
	admin := auth.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin))
	admin.GET("/users", u.ListUsers)
	admin.PATCH("/users/:id/active", u.SetUserActive)
}
