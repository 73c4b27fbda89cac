package utils

import "testing"

func TestGenerateOTPFormat(t *testing.T) {
	for _, length := range []int{4, 6, 8} {
		code, err := GenerateOTP(length)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != length {
			t.Fatalf("len(%q) = %d, want %d", code, len(code), length)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit %q in code %q", r, code)
			}
		}
	}
}

func TestGenerateOTPVaries(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code, err := GenerateOTP(6)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		seen[code] = true
	}
	// 20 identical 6-digit codes would mean a broken generator.
	if len(seen) < 2 {
		t.Fatalf("generator produced a single code %v", seen)
	}
}
