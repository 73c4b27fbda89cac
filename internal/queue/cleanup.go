package queue

import (
	"context"
	"log"
	"time"
)

// ExpiredDeleter is the delete-where-expired primitive both the
// session and the OTP repository expose.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// StartCleanupSweeper periodically prunes expired sessions and OTP
// codes. Expiry is already enforced at validation time, so the sweep
// only reclaims storage; a failed pass is logged and retried on the
// next tick.
func StartCleanupSweeper(interval time.Duration, sessions, otps ExpiredDeleter) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		sweep(sessions, otps)
	}
}

func sweep(sessions, otps ExpiredDeleter) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	now := time.Now().UTC()

	if n, err := sessions.DeleteExpired(ctx, now); err != nil {
		log.Printf("cleanup: delete expired sessions failed: %v", err)
	} else if n > 0 {
		log.Printf("cleanup: removed %d expired sessions", n)
	}
	if n, err := otps.DeleteExpired(ctx, now); err != nil {
		log.Printf("cleanup: delete expired OTPs failed: %v", err)
	} else if n > 0 {
		log.Printf("cleanup: removed %d expired OTPs", n)
	}
}
