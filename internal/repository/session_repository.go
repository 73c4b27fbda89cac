package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/auth-account-service/internal/model"
)

// SessionRepo persists refresh-token-bound session rows. Rotation and
// revocation both rely on the conditional update in Deactivate: the
// database's single-row atomicity is the only serialization point, so
// two concurrent refreshes with the same token cannot both win.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Insert stores a fresh session row and fills in the generated ID.
// Every login and every rotation inserts; nothing ever updates a
// session back to active.
func (r *SessionRepo) Insert(ctx context.Context, s *model.Session) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (user_id, refresh_token, access_token, login_method, expires_at) VALUES (?,?,?,?,?)",
		s.UserID, s.RefreshToken, s.AccessToken, s.LoginMethod, s.ExpiresAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetActiveByRefreshToken returns the active session bound to the
// exact refresh token, or ErrNotFound. Expiry is left to the caller
// so it can report expired and missing tokens identically.
func (r *SessionRepo) GetActiveByRefreshToken(ctx context.Context, refreshToken string) (model.Session, error) {
	var s model.Session
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, refresh_token, access_token, is_active, expires_at, login_method, last_activity, created_at FROM sessions WHERE refresh_token=? AND is_active=1 LIMIT 1",
		refreshToken).Scan(&s.ID, &s.UserID, &s.RefreshToken, &s.AccessToken,
		&s.IsActive, &s.ExpiresAt, &s.LoginMethod, &s.LastActivity, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, ErrNotFound
	}
	return s, err
}

// Deactivate flips the session bound to refreshToken to inactive and
// reports whether this call was the one that did it. The WHERE clause
// carries the is_active guard so the read-modify-write is a single
// atomic statement; a concurrent caller sees zero rows affected.
func (r *SessionRepo) Deactivate(ctx context.Context, refreshToken string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET is_active=0 WHERE refresh_token=? AND is_active=1",
		refreshToken)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeactivateAllForUser bulk-revokes every active session the user
// owns. Used by logout-all.
func (r *SessionRepo) DeactivateAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET is_active=0 WHERE user_id=? AND is_active=1",
		userID)
	return err
}

// DeleteExpired prunes rows whose window has passed, returning the
// number removed. Called by the cleanup sweeper.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at < ?", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
