package utils

import (
	"strings"
	"testing"
)

func TestNewHandleShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		handle := NewHandle()
		if len(handle) != 36 {
			t.Fatalf("unexpected handle %q", handle)
		}
		if seen[handle] {
			t.Fatalf("duplicate handle %q", handle)
		}
		seen[handle] = true

		canonical, ok := ParseHandle(handle)
		if !ok || canonical != handle {
			t.Fatalf("fresh handle does not round-trip: %q", handle)
		}
	}
}

func TestParseHandle(t *testing.T) {
	canonical, ok := ParseHandle("6BA7B810-9DAD-11D1-80B4-00C04FD430C8")
	if !ok {
		t.Fatal("uppercase uuid rejected")
	}
	if canonical != strings.ToLower("6BA7B810-9DAD-11D1-80B4-00C04FD430C8") {
		t.Fatalf("not canonicalized: %q", canonical)
	}

	for _, raw := range []string{
		"",
		"not-a-uuid",
		"6ba7b810-9dad-11d1-80b4-00c04fd430c",
		"../../etc/passwd",
		"6ba7b810-9dad-11d1-80b4-00c04fd430c8'--",
	} {
		if _, ok := ParseHandle(raw); ok {
			t.Fatalf("accepted invalid handle %q", raw)
		}
	}
}
