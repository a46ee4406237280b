package format_test

// Notes:
// - Negative durations and sizes are not tested: these functions format real
//   elapsed times and file sizes, which are never negative.

import (
	"testing"
	"time"

	"github.com/alnah/go-flashgen/internal/format"
)

// ---------------------------------------------------------------------------
// TestElapsed - Formats duration as HH:MM:SS or MM:SS
// ---------------------------------------------------------------------------

func TestElapsed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input time.Duration
		want  string
	}{
		{name: "zero", input: 0, want: "00:00"},
		{name: "boundary: 59 seconds", input: 59 * time.Second, want: "00:59"},
		{name: "mixed minutes and seconds", input: 5*time.Minute + 30*time.Second, want: "05:30"},
		{name: "boundary: exactly 1 hour", input: time.Hour, want: "01:00:00"},
		{name: "full: 2 hours 15 minutes 45 seconds", input: 2*time.Hour + 15*time.Minute + 45*time.Second, want: "02:15:45"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := format.Elapsed(tt.input); got != tt.want {
				t.Errorf("Elapsed(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestAge - Formats session age (3d4h, 5h30m, 12m, just now)
// ---------------------------------------------------------------------------

func TestAge(t *testing.T) {
	t.Parallel()

	const day = 24 * time.Hour

	tests := []struct {
		name  string
		input time.Duration
		want  string
	}{
		{name: "zero", input: 0, want: "just now"},
		{name: "boundary: 59 seconds", input: 59 * time.Second, want: "just now"},
		{name: "boundary: exactly 1 minute", input: time.Minute, want: "1m"},
		{name: "boundary: 59 minutes", input: 59 * time.Minute, want: "59m"},
		{name: "boundary: exactly 1 hour", input: time.Hour, want: "1h"},
		{name: "typical: 5 hours 30 minutes", input: 5*time.Hour + 30*time.Minute, want: "5h30m"},
		{name: "boundary: exactly 1 day", input: day, want: "1d"},
		{name: "days and hours", input: 3*day + 4*time.Hour, want: "3d4h"},
		{name: "days truncate minutes", input: 2*day + 59*time.Minute, want: "2d"},
		{name: "expiry horizon", input: 7 * day, want: "7d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := format.Age(tt.input); got != tt.want {
				t.Errorf("Age(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestSize - Formats byte size for human display (MB, KB, bytes)
// ---------------------------------------------------------------------------

const (
	kb = 1024
	mb = 1024 * kb
)

func TestSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input int64
		want  string
	}{
		{name: "zero", input: 0, want: "0 bytes"},
		{name: "one byte", input: 1, want: "1 byte"},
		{name: "boundary: 1023 bytes", input: kb - 1, want: "1023 bytes"},
		{name: "boundary: exactly 1 KB", input: kb, want: "1 KB"},
		{name: "boundary: 1023 KB", input: mb - 1, want: "1023 KB"},
		{name: "typical: 3 MB", input: 3 * mb, want: "3 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := format.Size(tt.input); got != tt.want {
				t.Errorf("Size(%d) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestTokens / TestUSD - Cost estimate display
// ---------------------------------------------------------------------------

func TestTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input int
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{12345, "12,345"},
		{1100000, "1,100,000"},
		{-4500, "-4,500"},
	}

	for _, tt := range tests {
		if got := format.Tokens(tt.input); got != tt.want {
			t.Errorf("Tokens(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestUSD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input float64
		want  string
	}{
		{0, "$0.0000"},
		{0.21, "$0.2100"},
		{0.0125, "$0.0125"},
		{12.5, "$12.5000"},
	}

	for _, tt := range tests {
		if got := format.USD(tt.input); got != tt.want {
			t.Errorf("USD(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Fuzz Tests - Verify functions don't panic on arbitrary inputs
// ---------------------------------------------------------------------------

// FuzzAge verifies Age never panics and always returns non-empty.
func FuzzAge(f *testing.F) {
	f.Add(int64(0))
	f.Add(int64(time.Minute))
	f.Add(int64(time.Hour))
	f.Add(int64(7 * 24 * time.Hour))

	f.Fuzz(func(t *testing.T, ns int64) {
		d := time.Duration(ns)
		if d < 0 {
			t.Skip("negative durations are undefined behavior")
		}
		if format.Age(d) == "" {
			t.Errorf("Age(%v) returned empty string", d)
		}
	})
}

// FuzzTokens verifies Tokens round-trips digits for any count.
func FuzzTokens(f *testing.F) {
	f.Add(0)
	f.Add(1000)
	f.Add(-1234567)

	f.Fuzz(func(t *testing.T, n int) {
		got := format.Tokens(n)
		digits := 0
		for _, r := range got {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits == 0 {
			t.Errorf("Tokens(%d) = %q has no digits", n, got)
		}
	})
}
