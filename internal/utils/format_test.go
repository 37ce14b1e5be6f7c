package utils

import (
	"testing"
	"time"
)

func TestNumber(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		1234567:  "1,234,567",
		-1234567: "-1,234,567",
	}
	for in, want := range tests {
		if got := Number(in); got != want {
			t.Errorf("Number(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestBytes(t *testing.T) {
	tests := map[int64]string{
		512:             "512B",
		1536:            "1.5KiB",
		5 * 1024 * 1024: "5.0MiB",
	}
	for in, want := range tests {
		if got := Bytes(in); got != want {
			t.Errorf("Bytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestDuration(t *testing.T) {
	tests := map[time.Duration]string{
		350 * time.Millisecond:        "350ms",
		5200 * time.Millisecond:       "5.2s",
		3*time.Minute + 5*time.Second: "3m5.0s",
		2*time.Hour + 15*time.Minute:  "2h15m",
	}
	for in, want := range tests {
		if got := Duration(in); got != want {
			t.Errorf("Duration(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestRate(t *testing.T) {
	if got := Rate(12.345); got != "12.35" && got != "12.34" {
		t.Errorf("Rate(12.345) = %q", got)
	}
	if got := Rate(12340); got != "12.34K" {
		t.Errorf("Rate(12340) = %q", got)
	}
	if got := Rate(2500000); got != "2.50M" {
		t.Errorf("Rate(2500000) = %q", got)
	}
}
