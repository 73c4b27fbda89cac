package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/auth-account-service/internal/model"
)

// OtpRepo persists one-time codes. Consumption follows the same
// conditional-update discipline as session rotation: the pending->used
// transition happens in a single guarded statement so a code can never
// be consumed twice.
type OtpRepo struct{ DB *sql.DB }

func NewOtpRepo(db *sql.DB) *OtpRepo { return &OtpRepo{DB: db} }

// Insert stores a new pending code and fills in the generated ID.
// Earlier pending codes for the same (email, type) are untouched.
func (r *OtpRepo) Insert(ctx context.Context, o *model.Otp) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO otps (user_id, email, code, type, status, expires_at) VALUES (?,?,?,?,?,?)",
		o.UserID, o.Email, o.Code, o.Type, model.OtpStatusPending, o.ExpiresAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	o.Status = model.OtpStatusPending
	return nil
}

// FindPending looks up a pending code by the exact (email, code, type)
// triple. Newest first, in case the same digits were issued twice for
// the same scope. Expiry is checked by the caller.
func (r *OtpRepo) FindPending(ctx context.Context, email, code, otpType string) (model.Otp, error) {
	var (
		o      model.Otp
		usedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, email, code, type, status, attempts, expires_at, used_at, created_at FROM otps WHERE email=? AND code=? AND type=? AND status=? ORDER BY id DESC LIMIT 1",
		email, code, otpType, model.OtpStatusPending).Scan(&o.ID, &o.UserID, &o.Email,
		&o.Code, &o.Type, &o.Status, &o.Attempts, &o.ExpiresAt, &usedAt, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Otp{}, ErrNotFound
	}
	if err != nil {
		return model.Otp{}, err
	}
	if usedAt.Valid {
		t := usedAt.Time
		o.UsedAt = &t
	}
	return o, nil
}

// Consume transitions a pending code to used and reports whether this
// call won the transition. The status guard in the WHERE clause makes
// the check-and-set atomic under concurrent validation.
func (r *OtpRepo) Consume(ctx context.Context, id uint64, usedAt time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE otps SET status=?, used_at=? WHERE id=? AND status=?",
		model.OtpStatusUsed, usedAt, id, model.OtpStatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteExpired prunes codes whose window has passed, whatever their
// status, returning the number removed.
func (r *OtpRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM otps WHERE expires_at < ?", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
