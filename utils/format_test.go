package utils

import (
	"testing"
	"time"
)

// TestFormatFileSize tests human readable sizes.
func TestFormatFileSize(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{500, "500.0 B"},
		{1536, "1.5 KB"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tc := range cases {
		if got := FormatFileSize(tc.size); got != tc.want {
			t.Fatalf("FormatFileSize(%d) = %q, want %q", tc.size, got, tc.want)
		}
	}
}

// TestFormatTimeRemaining tests remaining-TTL rendering.
func TestFormatTimeRemaining(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if got := FormatTimeRemaining(nil, now); got != "Never" {
		t.Fatalf("nil expiry = %q, want Never", got)
	}

	past := now.Add(-time.Minute)
	if got := FormatTimeRemaining(&past, now); got != "Expired" {
		t.Fatalf("past expiry = %q, want Expired", got)
	}

	exact := now
	if got := FormatTimeRemaining(&exact, now); got != "Expired" {
		t.Fatalf("expiry at now = %q, want Expired", got)
	}

	cases := []struct {
		remaining time.Duration
		want      string
	}{
		{26 * time.Hour, "1d 2h"},
		{49 * time.Hour, "2d 1h"},
		{3*time.Hour + 12*time.Minute, "3h 12m"},
		{time.Hour, "1h 0m"},
		{45*time.Minute + 30*time.Second, "45m"},
		{90 * time.Second, "1m"},
	}
	for _, tc := range cases {
		expiry := now.Add(tc.remaining)
		if got := FormatTimeRemaining(&expiry, now); got != tc.want {
			t.Fatalf("FormatTimeRemaining(+%v) = %q, want %q", tc.remaining, got, tc.want)
		}
	}
}
