package service

import (
	"fmt"
	"time"
)

// Lifetime selectors accepted on upload. Anything else is rejected, never
// defaulted.
const (
	LifetimeShort  = "1d"
	LifetimeMedium = "7d"
	LifetimeLong   = "28d"
)

var lifetimes = map[string]time.Duration{
	LifetimeShort:  24 * time.Hour,
	LifetimeMedium: 7 * 24 * time.Hour,
	LifetimeLong:   28 * 24 * time.Hour,
}

// ParseLifetime maps a lifetime selector to its duration.
func ParseLifetime(selector string) (time.Duration, error) {
	d, ok := lifetimes[selector]
	if !ok {
		return 0, fmt.Errorf("%w: unknown lifetime %q", ErrInvalidInput, selector)
	}
	return d, nil
}
