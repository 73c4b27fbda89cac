package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/auth-account-service/internal/model"
	"github.com/iliyamo/auth-account-service/internal/repository"
	"github.com/iliyamo/auth-account-service/internal/utils"
)

// OtpEngine issues and validates one-time codes. Issuing never touches
// earlier pending codes for the same (email, type): the most recently
// sent code is the one the user has in front of them, and older
// undelivered ones are harmless because consumption is single-use.
type OtpEngine struct {
	otps   OtpStore
	length int
	ttl    time.Duration
	now    func() time.Time
}

func NewOtpEngine(otps OtpStore, length int, ttl time.Duration) *OtpEngine {
	return &OtpEngine{otps: otps, length: length, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// Issue creates a pending code for the user scoped to the given
// purpose and returns the stored record.
func (e *OtpEngine) Issue(ctx context.Context, user model.User, otpType string) (model.Otp, error) {
	code, err := utils.GenerateOTP(e.length)
	if err != nil {
		return model.Otp{}, err
	}
	o := model.Otp{
		UserID:    user.ID,
		Email:     user.Email,
		Code:      code,
		Type:      otpType,
		ExpiresAt: e.now().Add(e.ttl),
	}
	if err := e.otps.Insert(ctx, &o); err != nil {
		return model.Otp{}, err
	}
	return o, nil
}

// Validate resolves a pending code by exact (email, code, type) match
// and checks its window. Every failure mode collapses into
// ErrInvalidOTP so the response leaks nothing about which check
// failed. Expired codes are rejected here even when the cleanup
// sweeper has not removed them yet.
func (e *OtpEngine) Validate(ctx context.Context, email, code, otpType string) (model.Otp, error) {
	o, err := e.otps.FindPending(ctx, email, code, otpType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Otp{}, ErrInvalidOTP
		}
		return model.Otp{}, err
	}
	if e.now().After(o.ExpiresAt) {
		return model.Otp{}, ErrInvalidOTP
	}
	return o, nil
}

// Consume transitions a validated code to used. Exactly one of any
// concurrent Validate+Consume pairs for the same code succeeds; the
// losers get ErrInvalidOTP just like a stale code would.
func (e *OtpEngine) Consume(ctx context.Context, o model.Otp) error {
	ok, err := e.otps.Consume(ctx, o.ID, e.now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidOTP
	}
	return nil
}
