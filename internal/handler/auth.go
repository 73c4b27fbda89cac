package handler

import (
	"context"  // context with cancellation for service calls
	"errors"   // sentinel matching for status mapping
	"net/http" // HTTP status codes
	"strings"  // input trimming
	"time"     // timeouts and response timestamps

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/auth-account-service/internal/model"
	"github.com/iliyamo/auth-account-service/internal/service"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(a *service.AuthService) *AuthHandler { return &AuthHandler{Auth: a} }

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type otpReq struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}
type emailReq struct {
	Email string `json:"email"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type userPart struct {
	ID            uint64     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	EmailVerified bool       `json:"email_verified"`
	IsActive      bool       `json:"is_active"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
type tokenPart struct {
	AccessToken    string    `json:"access_token"`
	AccessExpires  time.Time `json:"access_expires"`
	RefreshToken   string    `json:"refresh_token"`
	RefreshExpires time.Time `json:"refresh_expires"`
}
type authResp struct {
	User   userPart  `json:"user"`
	Tokens tokenPart `json:"tokens"`
}

// toUserPart shapes a user for output. The password hash never leaves
// the service boundary in any response type.
func toUserPart(u model.User) userPart {
	return userPart{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		IsActive:      u.IsActive,
		LastLogin:     u.LastLogin,
		CreatedAt:     u.CreatedAt,
	}
}

func toTokenPart(t service.TokenPair) tokenPart {
	return tokenPart{
		AccessToken:    t.AccessToken,
		AccessExpires:  t.AccessExpires,
		RefreshToken:   t.RefreshToken,
		RefreshExpires: t.RefreshExpires,
	}
}

// reqCtx bounds every service call so one stuck dependency cannot
// hold the worker indefinitely.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// serviceError maps service sentinels onto HTTP statuses. Anything
// unmatched is an internal failure whose details stay in the log, not
// in the response.
func serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrEmailVerified),
		errors.Is(err, service.ErrNoPasswordSet),
		errors.Is(err, service.ErrWrongCurrentPassword):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountDeactivated),
		errors.Is(err, service.ErrEmailNotVerified),
		errors.Is(err, service.ErrInvalidOTP),
		errors.Is(err, service.ErrInvalidRefreshToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// Register: create an unverified account; a verification OTP is
// emailed as part of the call.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/password required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Auth.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"user":    toUserPart(user),
		"message": "verification code sent",
	})
}

// Login: verify password credentials and return a fresh pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, tokens, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, authResp{User: toUserPart(user), Tokens: toTokenPart(tokens)})
}

// LoginOTP: redeem a login code for a session.
func (h *AuthHandler) LoginOTP(c echo.Context) error {
	var req otpReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Otp = strings.TrimSpace(req.Otp)
	if req.Email == "" || req.Otp == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/otp required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, tokens, err := h.Auth.LoginWithOTP(ctx, req.Email, req.Otp)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, authResp{User: toUserPart(user), Tokens: toTokenPart(tokens)})
}

// SendOTP: email a login code to an existing account.
func (h *AuthHandler) SendOTP(c echo.Context) error {
	return h.sendCode(c, h.Auth.SendLoginOTP, "login code sent")
}

// SendVerification: email a fresh verification code.
func (h *AuthHandler) SendVerification(c echo.Context) error {
	return h.sendCode(c, h.Auth.SendVerificationOTP, "verification code sent")
}

func (h *AuthHandler) sendCode(c echo.Context, send func(context.Context, string) error, okMsg string) error {
	var req emailReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := send(ctx, strings.TrimSpace(req.Email)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": okMsg})
}

// VerifyEmail: redeem a verification code.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req otpReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Otp = strings.TrimSpace(req.Otp)
	if req.Email == "" || req.Otp == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/otp required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.VerifyEmail(ctx, req.Email, req.Otp); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "email verified"})
}

// Refresh: rotate the refresh token, returning a new pair. The old
// token is dead whether or not the response reaches the client.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, tokens, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, authResp{User: toUserPart(user), Tokens: toTokenPart(tokens)})
}

// Logout: revoke one session by its refresh token. Revoking a token
// that is unknown or already revoked still returns 204.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, strings.TrimSpace(req.RefreshToken)); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// LogoutAll: revoke every session of the authenticated user
// (protected route; identity comes from the access token).
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok || uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.LogoutAll(ctx, uid); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
