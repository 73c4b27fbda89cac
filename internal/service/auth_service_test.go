package service

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterCreatesUnverifiedUserWithHashedPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.auth.Register(ctx, "Alice", "alice@x.com", "Secur3Pass"); err != nil {
		t.Fatalf("register: %v", err)
	}
	u, err := env.users.GetByEmail(ctx, "alice@x.com")
	if err != nil {
		t.Fatalf("find by email after create: %v", err)
	}
	if u.EmailVerified {
		t.Fatalf("new user must start unverified")
	}
	if !u.IsActive {
		t.Fatalf("new user must start active")
	}
	if u.PasswordHash == "" || u.PasswordHash == "Secur3Pass" {
		t.Fatalf("password hash %q must be non-empty and distinct from plaintext", u.PasswordHash)
	}
	if u.Role != "user" {
		t.Fatalf("role = %q, want user", u.Role)
	}
	// Registration must have dispatched exactly one verification code
	// and queued a welcome email.
	if code := env.mailer.lastCode(t, "alice@x.com"); len(code) != 6 {
		t.Fatalf("verification code %q not 6 digits", code)
	}
	if len(env.events.welcomes) != 1 || env.events.welcomes[0] != "alice@x.com" {
		t.Fatalf("welcome email not queued: %v", env.events.welcomes)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.auth.Register(ctx, "Alice", "alice@x.com", "Secur3Pass"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := env.auth.Register(ctx, "Mallory", "alice@x.com", "OtherPass1"); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("second register: got %v, want ErrEmailExists", err)
	}
}

func TestRegisterFailsWhenOTPDispatchFails(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.fail = true

	if _, err := env.auth.Register(context.Background(), "Alice", "alice@x.com", "Secur3Pass"); err == nil {
		t.Fatalf("register must fail when the verification email cannot be dispatched")
	}
}

func TestRegisterIgnoresWelcomeQueueFailure(t *testing.T) {
	env := newTestEnv(t)
	env.events.fail = true

	if _, err := env.auth.Register(context.Background(), "Alice", "alice@x.com", "Secur3Pass"); err != nil {
		t.Fatalf("register must not fail on welcome email queueing: %v", err)
	}
}

func TestRegisterVerifyLoginScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.auth.Register(ctx, "Alice", "alice@x.com", "Secur3Pass"); err != nil {
		t.Fatalf("register: %v", err)
	}
	// Password login is gated until the address is verified.
	if _, _, err := env.auth.Login(ctx, "alice@x.com", "Secur3Pass"); !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("pre-verification login: got %v, want ErrEmailNotVerified", err)
	}
	// A wrong code is rejected with the generic OTP error.
	if err := env.auth.VerifyEmail(ctx, "alice@x.com", "000000"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("wrong code: got %v, want ErrInvalidOTP", err)
	}
	if err := env.auth.VerifyEmail(ctx, "alice@x.com", env.mailer.lastCode(t, "alice@x.com")); err != nil {
		t.Fatalf("verify with correct code: %v", err)
	}
	user, tokens, err := env.auth.Login(ctx, "alice@x.com", "Secur3Pass")
	if err != nil {
		t.Fatalf("login after verification: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("login returned incomplete token pair: %+v", tokens)
	}
	if user.LastLogin == nil {
		t.Fatalf("login must stamp last login")
	}
}

func TestLoginPreconditions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerVerified(t, "Alice", "alice@x.com", "Secur3Pass")

	// Unverified account for the verification gate case.
	if _, err := env.auth.Register(ctx, "Bob", "bob@x.com", "Secur3Pass"); err != nil {
		t.Fatalf("register bob: %v", err)
	}

	tests := []struct {
		name     string
		setup    func()
		email    string
		password string
		want     error
	}{
		{"unknown email", nil, "ghost@x.com", "Secur3Pass", ErrInvalidCredentials},
		{"wrong password", nil, "alice@x.com", "not-the-password", ErrInvalidCredentials},
		{"unverified email", nil, "bob@x.com", "Secur3Pass", ErrEmailNotVerified},
		{"deactivated account", func() {
			if err := env.users.SetActive(ctx, alice.ID, false); err != nil {
				t.Fatalf("deactivate: %v", err)
			}
		}, "alice@x.com", "Secur3Pass", ErrAccountDeactivated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			if _, _, err := env.auth.Login(ctx, tt.email, tt.password); !errors.Is(err, tt.want) {
				t.Fatalf("login: got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoginWithOTPRoundTripIsSingleUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerVerified(t, "Alice", "alice@x.com", "Secur3Pass")

	if err := env.auth.SendLoginOTP(ctx, "alice@x.com"); err != nil {
		t.Fatalf("send login OTP: %v", err)
	}
	code := env.mailer.lastCode(t, "alice@x.com")

	user, tokens, err := env.auth.LoginWithOTP(ctx, "alice@x.com", code)
	if err != nil {
		t.Fatalf("OTP login: %v", err)
	}
	if user.Email != "alice@x.com" || tokens.RefreshToken == "" {
		t.Fatalf("unexpected OTP login result: %+v %+v", user, tokens)
	}
	// The code was consumed; replaying it fails inside its window.
	if _, _, err := env.auth.LoginWithOTP(ctx, "alice@x.com", code); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("replayed OTP: got %v, want ErrInvalidOTP", err)
	}
}

func TestLoginWithOTPUnknownAccountUsesGenericError(t *testing.T) {
	env := newTestEnv(t)
	if _, _, err := env.auth.LoginWithOTP(context.Background(), "ghost@x.com", "123456"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("got %v, want ErrInvalidOTP", err)
	}
}

func TestSendLoginOTPErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerVerified(t, "Alice", "alice@x.com", "Secur3Pass")

	if err := env.auth.SendLoginOTP(ctx, "ghost@x.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown email: got %v, want ErrUserNotFound", err)
	}
	if err := env.users.SetActive(ctx, alice.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := env.auth.SendLoginOTP(ctx, "alice@x.com"); !errors.Is(err, ErrAccountDeactivated) {
		t.Fatalf("inactive account: got %v, want ErrAccountDeactivated", err)
	}
}

func TestSendVerificationOTPAlreadyVerified(t *testing.T) {
	env := newTestEnv(t)
	env.registerVerified(t, "Alice", "alice@x.com", "Secur3Pass")

	if err := env.auth.SendVerificationOTP(context.Background(), "alice@x.com"); !errors.Is(err, ErrEmailVerified) {
		t.Fatalf("got %v, want ErrEmailVerified", err)
	}
}

func TestVerifyEmailIsSingleUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.auth.Register(ctx, "Alice", "alice@x.com", "Secur3Pass"); err != nil {
		t.Fatalf("register: %v", err)
	}
	code := env.mailer.lastCode(t, "alice@x.com")
	if err := env.auth.VerifyEmail(ctx, "alice@x.com", code); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	// Already verified wins over code validation on the second pass.
	if err := env.auth.VerifyEmail(ctx, "alice@x.com", code); !errors.Is(err, ErrEmailVerified) {
		t.Fatalf("second verify: got %v, want ErrEmailVerified", err)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerVerified(t, "Alice", "alice@x.com", "Secur3Pass")

	_, tokens, err := env.auth.Login(ctx, "alice@x.com", "Secur3Pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := env.auth.Logout(ctx, tokens.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := env.auth.Logout(ctx, tokens.RefreshToken); err != nil {
		t.Fatalf("repeated logout must be a no-op: %v", err)
	}
	if err := env.auth.Logout(ctx, "never-issued"); err != nil {
		t.Fatalf("logout of unknown token must be a no-op: %v", err)
	}
	if _, _, err := env.auth.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("refresh after logout: got %v, want ErrInvalidRefreshToken", err)
	}
}

func TestLogoutAllRevokesEveryDevice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerVerified(t, "Alice", "alice@x.com", "Secur3Pass")

	var refreshTokens []string
	for i := 0; i < 3; i++ {
		_, tokens, err := env.auth.Login(ctx, "alice@x.com", "Secur3Pass")
		if err != nil {
			t.Fatalf("login %d: %v", i, err)
		}
		refreshTokens = append(refreshTokens, tokens.RefreshToken)
	}
	if err := env.auth.LogoutAll(ctx, alice.ID); err != nil {
		t.Fatalf("logout all: %v", err)
	}
	for i, tok := range refreshTokens {
		if _, _, err := env.auth.Refresh(ctx, tok); !errors.Is(err, ErrInvalidRefreshToken) {
			t.Fatalf("token %d after logout-all: got %v, want ErrInvalidRefreshToken", i, err)
		}
	}
}
