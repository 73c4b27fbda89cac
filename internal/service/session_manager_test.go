package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/auth-account-service/internal/model"
	"github.com/iliyamo/auth-account-service/internal/repository"
)

func newSessionFixture(t *testing.T) (*SessionManager, *repository.MemoryUserStore, model.User) {
	t.Helper()
	users := repository.NewMemoryUserStore()
	sessions := repository.NewMemorySessionStore()
	user, err := users.Create(context.Background(), "Alice", "alice@x.com", "")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return NewSessionManager(sessions, users, testJWTSecret, 15, 7), users, user
}

func TestSessionManagerCreateSupportsMultipleDevices(t *testing.T) {
	mgr, _, user := newSessionFixture(t)
	ctx := context.Background()

	first, err := mgr.Create(ctx, user, model.MethodEmail)
	if err != nil {
		t.Fatalf("first session: %v", err)
	}
	second, err := mgr.Create(ctx, user, model.MethodOTP)
	if err != nil {
		t.Fatalf("second session: %v", err)
	}
	if first.RefreshToken == second.RefreshToken {
		t.Fatalf("sessions must carry distinct refresh tokens")
	}
	// Opening a second session leaves the first one usable.
	if _, _, err := mgr.Rotate(ctx, first.RefreshToken); err != nil {
		t.Fatalf("rotate first session: %v", err)
	}
	if _, _, err := mgr.Rotate(ctx, second.RefreshToken); err != nil {
		t.Fatalf("rotate second session: %v", err)
	}
}

func TestSessionManagerRotateReplacesSession(t *testing.T) {
	mgr, _, user := newSessionFixture(t)
	ctx := context.Background()

	pair, err := mgr.Create(ctx, user, model.MethodEmail)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rotatedUser, next, err := mgr.Rotate(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if rotatedUser.ID != user.ID {
		t.Fatalf("rotate resolved user %d, want %d", rotatedUser.ID, user.ID)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatalf("rotation must mint a new refresh token")
	}
	// The consumed token is dead; the replacement works.
	if _, _, err := mgr.Rotate(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("reused token: got %v, want ErrInvalidRefreshToken", err)
	}
	if _, _, err := mgr.Rotate(ctx, next.RefreshToken); err != nil {
		t.Fatalf("rotate replacement: %v", err)
	}
}

func TestSessionManagerRotateRejections(t *testing.T) {
	t.Run("unknown token", func(t *testing.T) {
		mgr, _, _ := newSessionFixture(t)
		if _, _, err := mgr.Rotate(context.Background(), "never-issued"); !errors.Is(err, ErrInvalidRefreshToken) {
			t.Fatalf("got %v, want ErrInvalidRefreshToken", err)
		}
	})
	t.Run("expired session", func(t *testing.T) {
		mgr, _, user := newSessionFixture(t)
		pair, err := mgr.Create(context.Background(), user, model.MethodEmail)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		mgr.now = func() time.Time { return pair.RefreshExpires.Add(time.Hour) }
		if _, _, err := mgr.Rotate(context.Background(), pair.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
			t.Fatalf("got %v, want ErrInvalidRefreshToken", err)
		}
	})
	t.Run("deactivated user", func(t *testing.T) {
		mgr, users, user := newSessionFixture(t)
		ctx := context.Background()
		pair, err := mgr.Create(ctx, user, model.MethodEmail)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := users.SetActive(ctx, user.ID, false); err != nil {
			t.Fatalf("deactivate user: %v", err)
		}
		if _, _, err := mgr.Rotate(ctx, pair.RefreshToken); !errors.Is(err, ErrAccountDeactivated) {
			t.Fatalf("got %v, want ErrAccountDeactivated", err)
		}
	})
}

func TestSessionManagerConcurrentRotateSingleWinner(t *testing.T) {
	mgr, _, user := newSessionFixture(t)
	ctx := context.Background()
	pair, err := mgr.Create(ctx, user, model.MethodEmail)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = mgr.Rotate(ctx, pair.RefreshToken)
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrInvalidRefreshToken):
		default:
			t.Fatalf("attempt %d: unexpected error %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("got %d winners, want exactly 1", winners)
	}
}

func TestSessionManagerRevokeIsIdempotent(t *testing.T) {
	mgr, _, user := newSessionFixture(t)
	ctx := context.Background()
	pair, err := mgr.Create(ctx, user, model.MethodEmail)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := mgr.Revoke(ctx, pair.RefreshToken); err != nil {
			t.Fatalf("revoke %d: %v", i, err)
		}
	}
	if err := mgr.Revoke(ctx, "never-issued"); err != nil {
		t.Fatalf("revoke of unknown token: %v", err)
	}
	if _, _, err := mgr.Rotate(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("rotate after revoke: got %v, want ErrInvalidRefreshToken", err)
	}
}

func TestSessionManagerRevokeAll(t *testing.T) {
	mgr, _, user := newSessionFixture(t)
	ctx := context.Background()

	var pairs []TokenPair
	for i := 0; i < 3; i++ {
		p, err := mgr.Create(ctx, user, model.MethodEmail)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		pairs = append(pairs, p)
	}
	if err := mgr.RevokeAll(ctx, user.ID); err != nil {
		t.Fatalf("revoke all: %v", err)
	}
	for i, p := range pairs {
		if _, _, err := mgr.Rotate(ctx, p.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
			t.Fatalf("session %d after revoke-all: got %v, want ErrInvalidRefreshToken", i, err)
		}
	}
	// Repeat call is a no-op.
	if err := mgr.RevokeAll(ctx, user.ID); err != nil {
		t.Fatalf("second revoke all: %v", err)
	}
}
