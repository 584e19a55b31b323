package common

import (
	"encoding/hex"
	"testing"
)

func TestRandomHexToken(t *testing.T) {
	const n = 16
	s, err := RandomHexToken(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != n*2 {
		t.Fatalf("expected hex length %d, got %d", n*2, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		t.Fatalf("token is not valid hex: %v", err)
	}
}

func TestRandomBytes(t *testing.T) {
	a := RandomBytes(32)
	b := RandomBytes(32)
	if len(a) != 32 || len(b) != 32 {
		t.Fatalf("expected 32 bytes, got %d and %d", len(a), len(b))
	}
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("two random reads are identical")
	}
}

func TestWipeBytes(t *testing.T) {
	b := []byte{1, 2, 3}
	WipeBytes(b)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d not wiped: %d", i, v)
		}
	}
	WipeBytes(nil) // must not panic
}
