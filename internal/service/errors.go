package service

import "errors"

// Sentinel errors returned by the services. Handlers translate these
// into HTTP statuses; the message texts are what callers see, so the
// credential-related ones stay deliberately generic: the same
// "invalid email or password" covers unknown accounts and wrong
// passwords alike, and OTP failures never say whether the code was
// wrong, expired or never issued.
var (
	ErrEmailExists          = errors.New("user with this email already exists")
	ErrEmailVerified        = errors.New("email is already verified")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountDeactivated   = errors.New("account is deactivated")
	ErrEmailNotVerified     = errors.New("please verify your email before logging in")
	ErrInvalidOTP           = errors.New("invalid or expired OTP")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrUserNotFound         = errors.New("user not found")
	ErrNoPasswordSet        = errors.New("user does not have a password set")
	ErrWrongCurrentPassword = errors.New("current password is incorrect")
)
