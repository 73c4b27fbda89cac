package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/auth-account-service/internal/model"
	"github.com/iliyamo/auth-account-service/internal/repository"
)

const testJWTSecret = "unit-test-secret"

type sentMail struct {
	To      string
	Code    string
	Purpose string
}

// fakeMailer records OTP emails so tests can read the issued codes
// back, and can be switched to fail to exercise dispatch errors.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (f *fakeMailer) SendOTPEmail(_ context.Context, to, code, purpose string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp unreachable")
	}
	f.sent = append(f.sent, sentMail{To: to, Code: code, Purpose: purpose})
	return nil
}

// lastCode returns the most recently emailed code for an address.
func (f *fakeMailer) lastCode(t *testing.T, to string) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].To == to {
			return f.sent[i].Code
		}
	}
	t.Fatalf("no OTP email sent to %s", to)
	return ""
}

type fakePublisher struct {
	mu       sync.Mutex
	welcomes []string
	fail     bool
}

func (f *fakePublisher) PublishWelcomeEmail(_ context.Context, email, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broker unreachable")
	}
	f.welcomes = append(f.welcomes, email)
	return nil
}

// testEnv bundles a fully wired service stack over in-memory stores.
type testEnv struct {
	users    *repository.MemoryUserStore
	sessions *repository.MemorySessionStore
	otps     *repository.MemoryOtpStore
	mgr      *SessionManager
	engine   *OtpEngine
	auth     *AuthService
	mailer   *fakeMailer
	events   *fakePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		users:    repository.NewMemoryUserStore(),
		sessions: repository.NewMemorySessionStore(),
		otps:     repository.NewMemoryOtpStore(),
		mailer:   &fakeMailer{},
		events:   &fakePublisher{},
	}
	env.mgr = NewSessionManager(env.sessions, env.users, testJWTSecret, 15, 7)
	env.engine = NewOtpEngine(env.otps, 6, 5*time.Minute)
	env.auth = NewAuthService(env.users, env.mgr, env.engine, env.mailer, env.events, bcrypt.MinCost)
	return env
}

// registerVerified registers a user and walks it through email
// verification so login paths are open.
func (env *testEnv) registerVerified(t *testing.T, name, email, password string) model.User {
	t.Helper()
	ctx := context.Background()
	user, err := env.auth.Register(ctx, name, email, password)
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	if err := env.auth.VerifyEmail(ctx, email, env.mailer.lastCode(t, email)); err != nil {
		t.Fatalf("verify %s: %v", email, err)
	}
	return user
}
