package replay

import (
	"blkhist/internal/event"
	"blkhist/internal/history"
	"blkhist/internal/registry"
	"blkhist/internal/resolve"
	"blkhist/internal/tree"

	"github.com/pterm/pterm"
)

// LiveSink is the replay-mode strategy: events only mutate the live
// tree, and the dependency graph is resolved once at the end of the
// window.
type LiveSink struct {
	Tree *tree.Tree
	Reg  *registry.Registry
	Log  *pterm.Logger
}

func (s *LiveSink) AfterApply(*event.Event, int) error {
	return nil
}

func (s *LiveSink) Finalize() error {
	return resolve.Graph(s.Tree, s.Reg, s.Log)
}

// HistorySink is the history-mode strategy: every applied event becomes
// one commit plus a timestamp tag. The graph is deliberately left
// unresolved across history commits.
type HistorySink struct {
	Repo *history.Repo
}

func (s *HistorySink) AfterApply(ev *event.Event, ordinal int) error {
	return s.Repo.Record(ev, ordinal)
}

func (s *HistorySink) Finalize() error {
	return nil
}
