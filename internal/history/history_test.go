package history

import (
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"blkhist/internal/event"
	"blkhist/internal/timeutil"

	"github.com/pterm/pterm"
)

func testLogger() *pterm.Logger {
	return pterm.DefaultLogger.WithWriter(io.Discard)
}

func gitOrSkip(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func gitOut(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("git %v: %v", args, err)
	}
	return strings.TrimSpace(string(out))
}

func testEvent(ts int64, name string) *event.Event {
	return &event.Event{
		Action:    event.ActionAdd,
		DevName:   name,
		DevPath:   "/devices/host0/block/" + filepath.Base(name),
		Major:     "8",
		Minor:     "0",
		Timestamp: ts,
	}
}

func TestCommitPerEvent(t *testing.T) {
	gitOrSkip(t)
	dir := t.TempDir()

	repo := New(dir, "git", testLogger(), false)
	if err := repo.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	for i, ts := range []int64{1724800000000000, 1724800001000000, 1724800002000000} {
		// A visible change for the first two, none for the third: all
		// three must still commit.
		if i < 2 {
			name := filepath.Join(dir, "f"+strings.Repeat("x", i+1))
			if err := os.WriteFile(name, []byte("v"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
		if err := repo.Record(testEvent(ts, "/dev/sda"), i+1); err != nil {
			t.Fatalf("Record #%d: %v", i+1, err)
		}
	}

	if n := gitOut(t, dir, "rev-list", "--count", "HEAD"); n != "3" {
		t.Errorf("commit count = %s, want 3", n)
	}

	// Each label is derivable purely from the event timestamp.
	wantTag := "ev-" + timeutil.FormatTag(1724800001000000)
	tags := gitOut(t, dir, "tag", "-l")
	if !strings.Contains(tags, wantTag) {
		t.Errorf("tags %q missing %q", tags, wantTag)
	}

	subject := gitOut(t, dir, "log", "-1", "--format=%s", wantTag)
	if subject != "add /dev/sda (#2)" {
		t.Errorf("subject = %q", subject)
	}
	body := gitOut(t, dir, "log", "-1", "--format=%b", wantTag)
	if !strings.Contains(body, timeutil.FormatStamp(1724800001000000)) {
		t.Errorf("body %q missing source stamp", body)
	}
}

func TestSameSecondTagForced(t *testing.T) {
	gitOrSkip(t)
	dir := t.TempDir()

	repo := New(dir, "git", testLogger(), false)
	if err := repo.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	// Two events inside the same second: the tag moves to the later
	// one instead of failing.
	if err := repo.Record(testEvent(1724800000100000, "/dev/sda"), 1); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := repo.Record(testEvent(1724800000900000, "/dev/sdb"), 2); err != nil {
		t.Fatalf("Record: %v", err)
	}

	tag := "ev-" + timeutil.FormatTag(1724800000100000)
	subject := gitOut(t, dir, "log", "-1", "--format=%s", tag)
	if subject != "add /dev/sdb (#2)" {
		t.Errorf("tag resolves to %q, want the later event", subject)
	}
}

func TestDryRunRunsNoGit(t *testing.T) {
	dir := t.TempDir()
	repo := New(dir, "git", testLogger(), true)
	if err := repo.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := repo.Record(testEvent(1, "/dev/sda"), 1); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); !os.IsNotExist(err) {
		t.Error("dry run created a repository")
	}
}
