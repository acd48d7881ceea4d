package utils

import "testing"

func TestSanitizeHeaderFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"  padded.txt  ", "padded.txt"},
		{"", "download"},
		{"   ", "download"},
		{"evil\r\nSet-Cookie: x=1", "evilSet-Cookie: x=1"},
		{`quo"ted.bin`, "quoted.bin"},
	}
	for _, c := range cases {
		if got := SanitizeHeaderFilename(c.in); got != c.want {
			t.Errorf("SanitizeHeaderFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
