// Package service contains the authentication core: the OTP engine,
// the session manager and the orchestrating auth/user services. It
// talks to persistence through the narrow store contracts below, which
// both the SQL repositories and the in-memory test stores satisfy.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/auth-account-service/internal/model"
)

// UserStore is the credential-store contract. Implementations never
// have to expose password hashes anywhere else; the hash only travels
// inside model.User between this package and the store.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error
	SetEmailVerified(ctx context.Context, id uint64) error
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
	SetActive(ctx context.Context, id uint64, active bool) error
	List(ctx context.Context, offset, limit int) ([]model.User, int64, error)
}

// SessionStore persists refresh-token-bound sessions. Deactivate must
// be an atomic conditional transition: it reports true for exactly one
// caller per active session, however many race on the same token.
type SessionStore interface {
	Insert(ctx context.Context, s *model.Session) error
	GetActiveByRefreshToken(ctx context.Context, refreshToken string) (model.Session, error)
	Deactivate(ctx context.Context, refreshToken string) (bool, error)
	DeactivateAllForUser(ctx context.Context, userID uint64) error
}

// OtpStore persists one-time codes. Consume carries the same
// exactly-one-winner guarantee as SessionStore.Deactivate.
type OtpStore interface {
	Insert(ctx context.Context, o *model.Otp) error
	FindPending(ctx context.Context, email, code, otpType string) (model.Otp, error)
	Consume(ctx context.Context, id uint64, usedAt time.Time) (bool, error)
}

// Mailer is the notification sink for one-time codes. Sending happens
// synchronously inside the flow that issued the code, because a code
// the user never receives is indistinguishable from a broken flow.
type Mailer interface {
	SendOTPEmail(ctx context.Context, to, code, purpose string) error
}

// EventPublisher hands fire-and-forget jobs to the message broker.
// Publish failures are logged by the implementation and ignored by
// callers; delivery is at-least-once on the consumer side.
type EventPublisher interface {
	PublishWelcomeEmail(ctx context.Context, email, name string) error
}
