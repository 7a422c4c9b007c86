// Package timeutil converts between the record timestamp unit
// (microseconds since epoch) and human-facing forms. Parsing of
// free-form boundary strings is delegated to the external date program
// so the CLI accepts everything the rest of the system does
// ("yesterday 09:00", "2026-08-28 10:15", ...).
package timeutil

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// ParseBoundary turns a human timestamp into microseconds since epoch
// using dateProg (normally "date"). A failure is a collaborator error:
// the caller treats it as fatal, never as a value.
func ParseBoundary(dateProg, s string) (int64, error) {
	out, err := exec.Command(dateProg, "-d", s, "+%s%N").Output()
	if err != nil {
		return 0, fmt.Errorf("time parser %q rejected %q: %w", dateProg, s, err)
	}
	ns, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("time parser %q returned %q: %w", dateProg, out, err)
	}
	return ns / 1000, nil
}

// FormatTag renders a history label at one-second resolution. It is
// pure: the same timestamp always yields the same label.
func FormatTag(usec int64) string {
	return strftime.Format("%Y%m%d-%H%M%S", time.UnixMicro(usec))
}

// FormatStamp renders the full source time for commit bodies and run
// summaries, microseconds included.
func FormatStamp(usec int64) string {
	t := time.UnixMicro(usec)
	return strftime.Format("%Y-%m-%d %H:%M:%S", t) + fmt.Sprintf(".%06d", usec%1_000_000)
}
