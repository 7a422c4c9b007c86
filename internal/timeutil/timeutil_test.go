package timeutil

import (
	"os/exec"
	"testing"
	"time"
)

func TestFormatTagDeterministic(t *testing.T) {
	usec := int64(1724800000123456)
	want := time.UnixMicro(usec).Format("20060102-150405")
	if got := FormatTag(usec); got != want {
		t.Errorf("FormatTag = %q, want %q", got, want)
	}
	// Pure: same input, same label.
	if FormatTag(usec) != FormatTag(usec) {
		t.Error("FormatTag not deterministic")
	}
	// One-second resolution: microseconds do not leak into the label.
	if FormatTag(usec) != FormatTag(usec-usec%1_000_000) {
		t.Error("FormatTag resolution finer than one second")
	}
}

func TestFormatStampCarriesMicroseconds(t *testing.T) {
	usec := int64(1724800000123456)
	want := time.UnixMicro(usec).Format("2006-01-02 15:04:05") + ".123456"
	if got := FormatStamp(usec); got != want {
		t.Errorf("FormatStamp = %q, want %q", got, want)
	}
}

func TestParseBoundary(t *testing.T) {
	if _, err := exec.LookPath("date"); err != nil {
		t.Skip("date not available")
	}
	if _, err := exec.Command("date", "-d", "@0", "+%s%N").Output(); err != nil {
		t.Skip("date does not support -d/%N")
	}

	got, err := ParseBoundary("date", "@1724800000")
	if err != nil {
		t.Fatalf("ParseBoundary: %v", err)
	}
	if got != 1724800000_000000 {
		t.Errorf("ParseBoundary = %d, want 1724800000000000", got)
	}
}

func TestParseBoundaryRejectsGarbage(t *testing.T) {
	if _, err := exec.LookPath("date"); err != nil {
		t.Skip("date not available")
	}
	if _, err := ParseBoundary("date", "not a time at all, ever"); err == nil {
		t.Error("expected error for unparseable boundary")
	}
}
