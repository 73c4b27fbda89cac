package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("Secur3Pass", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "" || hash == "Secur3Pass" {
		t.Fatalf("hash %q must be non-empty and distinct from the plaintext", hash)
	}
	if !VerifyPassword(hash, "Secur3Pass") {
		t.Fatalf("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatalf("wrong password accepted")
	}
}

func TestVerifyPasswordEmptyHash(t *testing.T) {
	if VerifyPassword("", "anything") {
		t.Fatalf("empty hash must never match")
	}
}
