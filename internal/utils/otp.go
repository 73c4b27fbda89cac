package utils

import (
	"crypto/rand"
	"math/big"
)

// GenerateOTP returns a random numeric code of the given length,
// left-padded digits included ("042913" is a valid 6-digit code).
// The code is a convenience factor gated by email deliverability, not
// a password-equivalent secret, but crypto/rand costs nothing here.
func GenerateOTP(length int) (string, error) {
	const digits = "0123456789"
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		out[i] = digits[n.Int64()]
	}
	return string(out), nil
}
