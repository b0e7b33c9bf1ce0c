package utils

import "testing"

func TestPasswordHashing(t *testing.T) {
	h, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword("secret1", h) {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword("secret2", h) {
		t.Fatalf("wrong password accepted")
	}
}

func TestNewIDUnique(t *testing.T) {
	if a, b := NewID(), NewID(); a == b || len(a) != 36 {
		t.Fatalf("ids %q %q", a, b)
	}
}
