// Package history commits the working tree into a git repository after
// every applied event, turning the reconstruction into a browsable
// timeline: each commit is one event, each tag is the source timestamp.
package history

import (
	"fmt"
	"os/exec"
	"strings"

	"blkhist/internal/event"
	"blkhist/internal/timeutil"

	"github.com/pterm/pterm"
)

// Repo drives the external git binary rooted at the working tree. Any
// non-zero exit from git is a collaborator failure and fatal to the
// run.
type Repo struct {
	dir     string
	gitProg string
	log     *pterm.Logger
	dryRun  bool
}

func New(dir, gitProg string, log *pterm.Logger, dryRun bool) *Repo {
	if gitProg == "" {
		gitProg = "git"
	}
	return &Repo{dir: dir, gitProg: gitProg, log: log, dryRun: dryRun}
}

// Dir returns the history container root.
func (r *Repo) Dir() string {
	return r.dir
}

// Init creates the empty history container before any events are
// ingested. Commit identity is pinned locally so the run does not
// depend on the invoking user's git configuration.
func (r *Repo) Init() error {
	if err := r.git("init", "-q"); err != nil {
		return err
	}
	if err := r.git("config", "user.name", "blkhist"); err != nil {
		return err
	}
	return r.git("config", "user.email", "blkhist@localhost")
}

// Record stages the whole tree and commits it as the state after ev,
// then labels the commit with the event's source timestamp. Events
// producing no visible change are still committed: one event, one
// revision, always. The tag is forced so two events within the same
// second resolve to the later state.
func (r *Repo) Record(ev *event.Event, ordinal int) error {
	if err := r.git("add", "-A", "."); err != nil {
		return err
	}
	subject := fmt.Sprintf("%s %s (#%d)", ev.Action, ev.DevName, ordinal)
	body := "source time: " + timeutil.FormatStamp(ev.Timestamp)
	if err := r.git("commit", "-q", "--allow-empty", "-m", subject, "-m", body); err != nil {
		return err
	}
	return r.git("tag", "-f", "ev-"+timeutil.FormatTag(ev.Timestamp))
}

func (r *Repo) git(args ...string) error {
	if r.dryRun {
		r.log.Debug("dry-run: git", r.log.Args("args", strings.Join(args, " ")))
		return nil
	}
	cmd := exec.Command(r.gitProg, args...)
	cmd.Dir = r.dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("history backend: git %s: %w: %s",
			strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}
