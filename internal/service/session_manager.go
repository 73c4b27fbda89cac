package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/auth-account-service/internal/model"
	"github.com/iliyamo/auth-account-service/internal/repository"
	"github.com/iliyamo/auth-account-service/internal/utils"
)

// TokenPair is what every successful login or refresh hands back to
// the caller: a short-lived access token and the refresh token whose
// session row is its only revocation point.
type TokenPair struct {
	AccessToken    string
	AccessExpires  time.Time
	RefreshToken   string
	RefreshExpires time.Time
}

// SessionManager mints, rotates and revokes sessions. Tokens are
// signed with a process-wide secret; all revocation state lives in the
// session store, so a refresh token must be mirrored into a session
// row before it is ever returned.
type SessionManager struct {
	sessions       SessionStore
	users          UserStore
	secret         string
	accessTTLMin   int
	refreshTTLDays int
	now            func() time.Time
}

func NewSessionManager(sessions SessionStore, users UserStore, secret string, accessTTLMin, refreshTTLDays int) *SessionManager {
	return &SessionManager{
		sessions:       sessions,
		users:          users,
		secret:         secret,
		accessTTLMin:   accessTTLMin,
		refreshTTLDays: refreshTTLDays,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Create issues a fresh token pair for the user and persists the
// backing session row. Always inserts; old sessions of the same user
// stay untouched, so multiple devices hold independent sessions.
func (m *SessionManager) Create(ctx context.Context, user model.User, loginMethod string) (TokenPair, error) {
	claims := utils.Claims{UserID: user.ID, Email: user.Email, Role: user.Role}
	access, err := utils.NewAccessToken(m.secret, claims, m.accessTTLMin)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := utils.NewRefreshToken(m.secret, claims, m.refreshTTLDays)
	if err != nil {
		return TokenPair{}, err
	}
	s := model.Session{
		UserID:       user.ID,
		RefreshToken: refresh.Token,
		AccessToken:  access.Token,
		IsActive:     true,
		ExpiresAt:    refresh.Exp,
		LoginMethod:  loginMethod,
	}
	if err := m.sessions.Insert(ctx, &s); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:    access.Token,
		AccessExpires:  access.Exp,
		RefreshToken:   refresh.Token,
		RefreshExpires: refresh.Exp,
	}, nil
}

// Rotate exchanges an active refresh token for a new session. The old
// session is deactivated through the store's conditional update before
// the new pair is minted, so two concurrent refreshes with the same
// token cannot both succeed: whoever loses the conditional update gets
// ErrInvalidRefreshToken and no tokens.
func (m *SessionManager) Rotate(ctx context.Context, refreshToken string) (model.User, TokenPair, error) {
	s, err := m.sessions.GetActiveByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, TokenPair{}, ErrInvalidRefreshToken
		}
		return model.User{}, TokenPair{}, err
	}
	if m.now().After(s.ExpiresAt) {
		return model.User{}, TokenPair{}, ErrInvalidRefreshToken
	}
	user, err := m.users.GetByID(ctx, s.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, TokenPair{}, ErrInvalidRefreshToken
		}
		return model.User{}, TokenPair{}, err
	}
	if !user.IsActive {
		return model.User{}, TokenPair{}, ErrAccountDeactivated
	}
	ok, err := m.sessions.Deactivate(ctx, refreshToken)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	if !ok {
		// Lost the rotation race or the token was revoked in between.
		return model.User{}, TokenPair{}, ErrInvalidRefreshToken
	}
	pair, err := m.Create(ctx, user, s.LoginMethod)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	return user, pair, nil
}

// Revoke deactivates the session bound to the token. Revoking an
// unknown or already-revoked token is a no-op, not an error.
func (m *SessionManager) Revoke(ctx context.Context, refreshToken string) error {
	_, err := m.sessions.Deactivate(ctx, refreshToken)
	return err
}

// RevokeAll deactivates every active session the user owns across all
// devices. Idempotent.
func (m *SessionManager) RevokeAll(ctx context.Context, userID uint64) error {
	return m.sessions.DeactivateAllForUser(ctx, userID)
}
