package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"blkhist/internal/db"
	"blkhist/internal/timeutil"
)

// listRuns prints recent reconstruction runs from the run journal.
func listRuns(limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database == "" {
		return fmt.Errorf("no run journal configured (set database in config or pass --journal-db)")
	}

	journal, err := db.New(cfg.Database)
	if err != nil {
		return err
	}
	defer journal.Close()

	runs, err := journal.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODE\tWINDOW\tSEEN\tAPPLIED\tSKIPPED\tSTARTED\tROOT")
	for _, r := range runs {
		fmt.Fprintf(w, "%.8s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.ID, r.Mode, windowLabel(r),
			r.EventsSeen, r.EventsApplied, r.EventsSkipped,
			r.Started.Format("2006-01-02 15:04:05"), r.Root)
	}
	return w.Flush()
}

func windowLabel(r *db.Run) string {
	if r.WindowStartUS == nil && r.WindowEndUS == nil {
		return "-"
	}
	start, end := "...", "..."
	if r.WindowStartUS != nil {
		start = timeutil.FormatTag(*r.WindowStartUS)
	}
	if r.WindowEndUS != nil {
		end = timeutil.FormatTag(*r.WindowEndUS)
	}
	return start + ".." + end
}
