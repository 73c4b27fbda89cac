package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"  // secure random data for the refresh token jti
	"encoding/hex" // hex encoding of random bytes
	"time"         // expiry calculations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Claims carries the identity fields embedded in every issued token:
// the subject id, the email and the role. Both the access and the
// refresh token are signed with the same claim shape so either can be
// verified independently.
type Claims struct {
	UserID uint64 // subject (sub)
	Email  string // email claim
	Role   string // role claim
}

// SignedToken is a serialized HS256 JWT together with its expiry.
// Access tokens are short-lived and sent in the Authorization header;
// refresh tokens live longer and are only exchanged at the refresh
// endpoint. Neither can be revoked at this layer; revocation is the
// session store's job, which is why every refresh token is mirrored
// into a session row before it leaves the process.
type SignedToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs the short-lived HS256 access token.
// The JWT includes sub, email, role, expiration (exp) and issued at (iat).
func NewAccessToken(secret string, c Claims, ttlMin int) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   c.UserID,
		"email": c.Email,
		"role":  c.Role,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	})
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs the long-lived HS256 refresh token.
// It carries the same identity claims as the access token plus a
// random jti, so two refresh tokens minted for the same user in the
// same second still differ. The jti matters because sessions are
// looked up by the exact token string, which is unique-indexed.
func NewRefreshToken(secret string, c Claims, ttlDays int) (SignedToken, error) {
	jti, err := randomHex(16)
	if err != nil {
		return SignedToken{}, err
	}
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   c.UserID,
		"email": c.Email,
		"role":  c.Role,
		"jti":   jti,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	})
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
