package main

import (
	"fmt"
	"os"
	"path/filepath"

	"blkhist/internal/config"
	"blkhist/internal/db"
	"blkhist/internal/source"
	"blkhist/internal/timeutil"
)

// loadConfig loads the config file and folds in the persistent flag
// overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if tagOver != "" {
		cfg.Tag = tagOver
	}
	if journalDB != "" {
		cfg.Database = journalDB
	}
	return cfg, nil
}

// prepareRoot resolves and creates the working root. Failure here is
// structural and fatal.
func prepareRoot(rootFlag string, cfg *config.Config) (string, error) {
	root := rootFlag
	if root == "" {
		root = cfg.Root
	}
	if root == "" {
		tmp, err := os.MkdirTemp("", "blkhist-*")
		if err != nil {
			return "", fmt.Errorf("creating working root: %w", err)
		}
		root = tmp
	}
	for _, sub := range []string{"dev", "sys"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return "", fmt.Errorf("creating working root: %w", err)
		}
	}
	return root, nil
}

// openJournal opens the run journal when one is configured. No journal
// configured means no journaling, not an error.
func openJournal(cfg *config.Config) (*db.DB, error) {
	if cfg.Database == "" {
		return nil, nil
	}
	j, err := db.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening run journal: %w", err)
	}
	return j, nil
}

// buildSource picks the event supplier. The journal service applies the
// window itself; file and stdin streams are raw and need in-process
// admission, so the boundaries are converted through the external time
// parser here.
func buildSource(cfg *config.Config, fromFile string, useStdin bool, since, until string) (source.Source, *int64, *int64, error) {
	switch {
	case fromFile != "" && useStdin:
		return nil, nil, nil, fmt.Errorf("--from-file and --stdin are mutually exclusive")
	case fromFile != "":
		src, err := source.FromFile(fromFile)
		if err != nil {
			return nil, nil, nil, err
		}
		start, end, err := parseWindow(cfg, since, until)
		if err != nil {
			src.Close()
			return nil, nil, nil, err
		}
		return src, start, end, nil
	case useStdin:
		start, end, err := parseWindow(cfg, since, until)
		if err != nil {
			return nil, nil, nil, err
		}
		return source.FromStdin(), start, end, nil
	default:
		src, err := source.FromJournal(cfg.Tools.Journalctl, cfg.Tag, since, until)
		if err != nil {
			return nil, nil, nil, err
		}
		return src, nil, nil, nil
	}
}

func parseWindow(cfg *config.Config, since, until string) (*int64, *int64, error) {
	var start, end *int64
	if since != "" {
		v, err := timeutil.ParseBoundary(cfg.Tools.Date, since)
		if err != nil {
			return nil, nil, err
		}
		start = &v
	}
	if until != "" {
		v, err := timeutil.ParseBoundary(cfg.Tools.Date, until)
		if err != nil {
			return nil, nil, err
		}
		end = &v
	}
	return start, end, nil
}
