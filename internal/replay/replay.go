// Package replay drives one reconstruction run: it pulls raw records
// from a source, admits the configured time window, applies each event
// to the tree, and finishes through one of two sink strategies (live
// tree with end-of-window graph resolution, or commit-per-event
// history).
package replay

import (
	"errors"
	"fmt"
	"io"

	"blkhist/internal/db"
	"blkhist/internal/event"
	"blkhist/internal/registry"
	"blkhist/internal/source"
	"blkhist/internal/tree"

	"github.com/pterm/pterm"
)

// State of the run. Admitting discards records before the window start
// and only exists when the source is not already time-filtered.
type State int

const (
	StateInitializing State = iota
	StateAdmitting
	StateIngesting
	StateFinalizing
)

// Sink is the per-mode strategy. Both modes consume the same apply
// step; they differ only in what happens after each event and at the
// end of the stream.
type Sink interface {
	// AfterApply runs once per successfully applied event. An error is
	// fatal to the run (collaborator failure).
	AfterApply(ev *event.Event, ordinal int) error
	// Finalize runs once after the stream ends.
	Finalize() error
}

// Stats summarizes one run.
type Stats struct {
	Seen    int // events admitted into the window
	Applied int
	Skipped int
}

// Runner owns the mutable state of one reconstruction run. The device
// registry lives here and is passed by handle into the tree builder
// and the sink, never held as package state.
type Runner struct {
	Tree  *tree.Tree
	Reg   *registry.Registry
	Sink  Sink
	Log   *pterm.Logger
	Tag   string
	Extra bool

	// Window bounds in record time, inclusive start, exclusive after
	// end. Nil means unbounded. Ignored when the source pre-filtered.
	StartUS *int64
	EndUS   *int64

	// Optional run journal.
	Journal *db.DB
	RunID   string

	state State
}

// Run consumes the source to completion. Record-level problems are
// logged and skipped; only structural and collaborator failures return
// an error.
func (r *Runner) Run(src source.Source) (Stats, error) {
	var stats Stats
	ordinal := 0

	r.state = StateIngesting
	windowed := !src.Prefiltered()
	if windowed && r.StartUS != nil {
		r.state = StateAdmitting
	}

	for {
		line, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return stats, fmt.Errorf("event source: %w", err)
		}

		ev, err := event.Parse(line, r.Tag)
		if errors.Is(err, event.ErrIrrelevant) {
			continue
		}
		if err != nil {
			r.Log.Warn("record skipped", r.Log.Args("error", err))
			stats.Skipped++
			continue
		}

		if windowed {
			if r.state == StateAdmitting {
				if r.StartUS != nil && ev.Timestamp < *r.StartUS {
					continue
				}
				r.state = StateIngesting
			}
			if r.EndUS != nil && ev.Timestamp > *r.EndUS {
				// Past the window: the stream is time-ordered, so
				// nothing further can be admitted.
				break
			}
		}

		ordinal++
		stats.Seen++

		if err := r.Tree.Apply(ev, r.Reg, r.Extra); err != nil {
			r.Log.Warn("event not applied",
				r.Log.Args("ordinal", ordinal, "action", ev.Action.String(),
					"devname", ev.DevName, "error", err))
			stats.Skipped++
			r.journal(ev, ordinal, db.OutcomeSkipped, err.Error())
			continue
		}
		stats.Applied++
		r.journal(ev, ordinal, db.OutcomeApplied, "")

		if err := r.Sink.AfterApply(ev, ordinal); err != nil {
			return stats, err
		}
	}

	r.state = StateFinalizing
	if err := r.Sink.Finalize(); err != nil {
		return stats, err
	}
	return stats, nil
}

// State reports the runner's current lifecycle state.
func (r *Runner) State() State {
	return r.state
}

func (r *Runner) journal(ev *event.Event, ordinal int, outcome, detail string) {
	if r.Journal == nil {
		return
	}
	err := r.Journal.RecordEvent(r.RunID, ordinal, ev.Action.String(),
		ev.DevName, ev.Num(), ev.Timestamp, outcome, detail)
	if err != nil {
		r.Log.Warn("run journal write failed", r.Log.Args("error", err))
	}
}
