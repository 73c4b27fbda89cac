package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/auth-account-service/internal/model"
	"github.com/iliyamo/auth-account-service/internal/repository"
	"github.com/iliyamo/auth-account-service/internal/utils"
)

// AuthService orchestrates the auth flows over the credential store,
// the OTP engine and the session manager. Every login path walks the
// same precondition ladder: account exists, account active, credential
// valid, email verified. Only registration is exempt from the
// verification gate, since a fresh account must be able to receive and
// redeem its verification code.
type AuthService struct {
	users      UserStore
	sessions   *SessionManager
	otps       *OtpEngine
	mailer     Mailer
	events     EventPublisher
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(users UserStore, sessions *SessionManager, otps *OtpEngine, mailer Mailer, events EventPublisher, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		otps:       otps,
		mailer:     mailer,
		events:     events,
		bcryptCost: bcryptCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an unverified account and emails it a verification
// code. The code dispatch is part of the registration contract: if the
// email cannot go out the registration fails, because the user would
// have no other path to verification. The welcome email, by contrast,
// is queued fire-and-forget.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (model.User, error) {
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return model.User{}, err
	}
	user, err := s.users.Create(ctx, name, email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	if err := s.issueAndSendOTP(ctx, user, model.OtpTypeEmailVerification); err != nil {
		return model.User{}, fmt.Errorf("send verification OTP: %w", err)
	}
	if s.events != nil {
		if err := s.events.PublishWelcomeEmail(ctx, user.Email, user.Name); err != nil {
			log.Printf("auth: queue welcome email for %s failed: %v", user.Email, err)
		}
	}
	return user, nil
}

// Login verifies a password credential and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.User, TokenPair, error) {
	user, err := s.activeUserByEmail(ctx, email, ErrInvalidCredentials)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		return model.User{}, TokenPair{}, ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return model.User{}, TokenPair{}, ErrEmailNotVerified
	}
	return s.openSession(ctx, user, model.MethodEmail)
}

// LoginWithOTP verifies a login code and opens a session. The code is
// consumed before the session is minted, so replaying it, even
// concurrently, yields at most one session.
func (s *AuthService) LoginWithOTP(ctx context.Context, email, code string) (model.User, TokenPair, error) {
	user, err := s.activeUserByEmail(ctx, email, ErrInvalidOTP)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	otp, err := s.otps.Validate(ctx, user.Email, code, model.OtpTypeLogin)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	if err := s.otps.Consume(ctx, otp); err != nil {
		return model.User{}, TokenPair{}, err
	}
	if !user.EmailVerified {
		return model.User{}, TokenPair{}, ErrEmailNotVerified
	}
	return s.openSession(ctx, user, model.MethodOTP)
}

// SendLoginOTP issues a login code and emails it. Unlike the login
// endpoints this one reports a missing account as not-found: the
// caller explicitly asked for a code, not for an auth decision.
func (s *AuthService) SendLoginOTP(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !user.IsActive {
		return ErrAccountDeactivated
	}
	return s.issueAndSendOTP(ctx, user, model.OtpTypeLogin)
}

// SendVerificationOTP issues a fresh email-verification code for an
// account that has not verified yet.
func (s *AuthService) SendVerificationOTP(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.EmailVerified {
		return ErrEmailVerified
	}
	return s.issueAndSendOTP(ctx, user, model.OtpTypeEmailVerification)
}

// VerifyEmail redeems a verification code and flips the account to
// verified. Single-use: the second redemption of the same code fails
// with the generic OTP error.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.EmailVerified {
		return ErrEmailVerified
	}
	otp, err := s.otps.Validate(ctx, user.Email, code, model.OtpTypeEmailVerification)
	if err != nil {
		return err
	}
	if err := s.otps.Consume(ctx, otp); err != nil {
		return err
	}
	return s.users.SetEmailVerified(ctx, user.ID)
}

// Refresh exchanges a refresh token for a new pair; the whole rotation
// contract lives in the session manager.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.User, TokenPair, error) {
	return s.sessions.Rotate(ctx, refreshToken)
}

// Logout revokes the session bound to the refresh token. Idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.sessions.Revoke(ctx, refreshToken)
}

// LogoutAll revokes every session the user owns. Idempotent.
func (s *AuthService) LogoutAll(ctx context.Context, userID uint64) error {
	return s.sessions.RevokeAll(ctx, userID)
}

// activeUserByEmail resolves a user for a login path. Both an unknown
// address and an existing account fail with the path's generic
// credential error or the deactivation error, never anything that
// would let a caller enumerate accounts via the not-found case.
func (s *AuthService) activeUserByEmail(ctx context.Context, email string, missing error) (model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, missing
		}
		return model.User{}, err
	}
	if !user.IsActive {
		return model.User{}, ErrAccountDeactivated
	}
	return user, nil
}

func (s *AuthService) openSession(ctx context.Context, user model.User, method string) (model.User, TokenPair, error) {
	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return model.User{}, TokenPair{}, err
	}
	user.LastLogin = &now
	pair, err := s.sessions.Create(ctx, user, method)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	return user, pair, nil
}

func (s *AuthService) issueAndSendOTP(ctx context.Context, user model.User, otpType string) error {
	otp, err := s.otps.Issue(ctx, user, otpType)
	if err != nil {
		return err
	}
	purpose := "verification"
	if otpType == model.OtpTypeLogin {
		purpose = "login"
	}
	return s.mailer.SendOTPEmail(ctx, user.Email, otp.Code, purpose)
}
