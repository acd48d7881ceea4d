package utils

import "github.com/google/uuid"

// NewHandle returns a fresh 128-bit random handle.
func NewHandle() string {
	return uuid.NewString()
}

// ParseHandle validates a caller-supplied handle and returns its canonical
// form.
func ParseHandle(raw string) (string, bool) {
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
