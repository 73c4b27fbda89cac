package model

import "time"

// OTP purposes. A code is only valid for the purpose it was issued for.
const (
	OtpTypeLogin             = "login"
	OtpTypeEmailVerification = "email_verification"
	OtpTypePasswordReset     = "password_reset"
	OtpTypeTwoFactor         = "two_factor"
)

// OTP lifecycle states. The only transition performed by the service
// is pending -> used; expiry is checked against ExpiresAt at
// validation time and expired pending rows are removed by the cleanup
// sweeper rather than transitioned.
const (
	OtpStatusPending  = "pending"
	OtpStatusVerified = "verified"
	OtpStatusExpired  = "expired"
	OtpStatusUsed     = "used"
)

// Otp models a row in the `otps` table: a single one-time numeric
// code scoped by (email, type). Issuing a new code does not touch
// earlier pending codes for the same scope; each remains
// independently valid until it is consumed or its window passes.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the code (cascade-deleted with the user).
//  Email     – address the code was sent to; part of the lookup key.
//  Code      – fixed-length numeric string.
//  Type      – one of the OtpType* constants.
//  Status    – one of the OtpStatus* constants.
//  Attempts  – failed validation counter (persisted, not enforced).
//  ExpiresAt – absolute expiry, fixed window from creation.
//  UsedAt    – set exactly once when the code is consumed.
//  CreatedAt – timestamp of creation.
type Otp struct {
	ID        uint64     // otps.id
	UserID    uint64     // otps.user_id
	Email     string     // otps.email
	Code      string     // otps.code
	Type      string     // otps.type
	Status    string     // otps.status
	Attempts  int        // otps.attempts
	ExpiresAt time.Time  // otps.expires_at
	UsedAt    *time.Time // otps.used_at (nullable)
	CreatedAt time.Time  // otps.created_at
}
