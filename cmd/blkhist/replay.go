package main

import (
	"fmt"
	"os"

	"blkhist/internal/db"
	"blkhist/internal/lsblk"
	"blkhist/internal/registry"
	"blkhist/internal/replay"
	"blkhist/internal/tree"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay [-- lsblk-args...]",
	Short: "Reconstruct the device tree for a time window and run lsblk on it",
	Long: `Replay pulls captured block events (from the journal service by
default, or from a file or stdin), rebuilds the synthetic dev/ + sys/
tree they describe, resolves holder/slave relationships, and hands the
tree to lsblk. Arguments after -- are passed to lsblk unchanged.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runReplay(cmd, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	replayCmd.Flags().String("since", "", "window start (inclusive), human timestamp")
	replayCmd.Flags().String("until", "", "window end (exclusive after), human timestamp")
	replayCmd.Flags().String("from-file", "", "read records from an exported file instead of the journal")
	replayCmd.Flags().Bool("stdin", false, "read records from standard input")
	replayCmd.Flags().String("root", "", "working root directory (default: temp dir)")
	replayCmd.Flags().Bool("dry-run", false, "validate and report actions without touching the filesystem")
	replayCmd.Flags().Bool("extra", false, "capture extended (EXTRA) attributes")
}

func runReplay(cmd *cobra.Command, args []string) error {
	since, _ := cmd.Flags().GetString("since")
	until, _ := cmd.Flags().GetString("until")
	fromFile, _ := cmd.Flags().GetString("from-file")
	useStdin, _ := cmd.Flags().GetBool("stdin")
	rootFlag, _ := cmd.Flags().GetString("root")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	extra, _ := cmd.Flags().GetBool("extra")

	lsblkArgs := args
	if at := cmd.ArgsLenAtDash(); at >= 0 {
		lsblkArgs = args[at:]
	}
	if err := lsblk.CheckArgs(lsblkArgs); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	root, err := prepareRoot(rootFlag, cfg)
	if err != nil {
		return err
	}

	src, startUS, endUS, err := buildSource(cfg, fromFile, useStdin, since, until)
	if err != nil {
		return err
	}
	defer src.Close()

	journal, err := openJournal(cfg)
	if err != nil {
		return err
	}
	var runID string
	if journal != nil {
		defer journal.Close()
		runID, err = journal.BeginRun(db.ModeReplay, root, startUS, endUS)
		if err != nil {
			return err
		}
	}

	t := tree.New(root, log, dryRun)
	reg := registry.New()
	runner := &replay.Runner{
		Tree:    t,
		Reg:     reg,
		Sink:    &replay.LiveSink{Tree: t, Reg: reg, Log: log},
		Log:     log,
		Tag:     cfg.Tag,
		Extra:   extra,
		StartUS: startUS,
		EndUS:   endUS,
		Journal: journal,
		RunID:   runID,
	}

	stats, err := runner.Run(src)
	if journal != nil && runID != "" {
		if ferr := journal.FinishRun(runID, stats.Seen, stats.Applied, stats.Skipped); ferr != nil {
			log.Warn("run journal close failed", log.Args("error", ferr))
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "replayed %s events (%s applied, %s skipped) into %s\n",
		humanize.Comma(int64(stats.Seen)), humanize.Comma(int64(stats.Applied)),
		humanize.Comma(int64(stats.Skipped)), root)

	if dryRun {
		fmt.Fprintln(os.Stderr, "dry run: enumeration tool not invoked")
		return nil
	}
	return lsblk.Run(cfg.Tools.Lsblk, root, lsblkArgs)
}
