package main

import (
	"fmt"
	"os"

	"blkhist/internal/version"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	verbose   bool
	journalDB string
	tagOver   string
)

var rootCmd = &cobra.Command{
	Use:   "blkhist",
	Short: "Historical block-device topology reconstruction",
	Long: `blkhist replays a captured log of block-device change events into a
synthetic dev/ + sys/ tree, then either hands that tree to lsblk for
point-in-time inspection or commits it event by event into a git
timeline for time travel.`,
	Version: version.Version,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past reconstruction runs from the run journal",
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		if err := listRuns(limit); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// newLogger builds the diagnostic logger. Warnings and up always show;
// --verbose opens up the per-mutation detail.
func newLogger() *pterm.Logger {
	level := pterm.LogLevelInfo
	if verbose {
		level = pterm.LogLevelDebug
	}
	return pterm.DefaultLogger.WithWriter(os.Stderr).WithLevel(level)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/blkhist/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show per-mutation detail")
	rootCmd.PersistentFlags().StringVar(&journalDB, "journal-db", "", "run journal database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&tagOver, "tag", "", "capture tag to replay (overrides config)")

	runsCmd.Flags().IntP("limit", "n", 20, "number of runs to list")

	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(runsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
