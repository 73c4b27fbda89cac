package model

import "time"

// Login methods recorded on a session. They describe how the session
// was established, not how future requests authenticate.
const (
	MethodEmail  = "email"
	MethodGoogle = "google"
	MethodOTP    = "otp"
)

// Session models a row in the `sessions` table. A session binds one
// issued refresh token to its owning user and is the sole revocation
// point for that token: the signed JWT itself cannot be invalidated,
// so refresh only succeeds while the matching row is still active.
//
// Every login and every refresh inserts a fresh row; rotation and
// logout flip IsActive to false and never delete. Expired and
// inactive rows are pruned by the periodic cleanup sweeper.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – owner of the session (cascade-deleted with the user).
//  RefreshToken – the issued refresh token, unique across all rows.
//  AccessToken  – access token issued alongside, kept for audit only.
//  IsActive     – false once rotated away, logged out or bulk-revoked.
//  ExpiresAt    – absolute expiry of the refresh token window.
//  LoginMethod  – one of the Method* constants above.
//  LastActivity – updated when the session is exercised.
//  CreatedAt    – timestamp of creation.
type Session struct {
	ID           uint64    // sessions.id
	UserID       uint64    // sessions.user_id
	RefreshToken string    // sessions.refresh_token
	AccessToken  string    // sessions.access_token
	IsActive     bool      // sessions.is_active
	ExpiresAt    time.Time // sessions.expires_at
	LoginMethod  string    // sessions.login_method
	LastActivity time.Time // sessions.last_activity
	CreatedAt    time.Time // sessions.created_at
}
