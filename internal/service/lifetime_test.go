package service

import (
	"errors"
	"testing"
	"time"
)

func TestParseLifetime(t *testing.T) {
	cases := []struct {
		selector string
		expect   time.Duration
	}{
		{"1d", 24 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"28d", 28 * 24 * time.Hour},
	}
	for _, tc := range cases {
		got, err := ParseLifetime(tc.selector)
		if err != nil {
			t.Fatalf("ParseLifetime(%q) failed: %v", tc.selector, err)
		}
		if got != tc.expect {
			t.Fatalf("ParseLifetime(%q): expect %v, got %v", tc.selector, tc.expect, got)
		}
	}
}

func TestParseLifetimeRejectsUnknown(t *testing.T) {
	for _, selector := range []string{"", "2d", "1", "d", "forever", "86400"} {
		if _, err := ParseLifetime(selector); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("ParseLifetime(%q): expect ErrInvalidInput, got %v", selector, err)
		}
	}
}
