package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Capture tag: only records written under this syslog identifier
	// are replayed.
	Tag string `yaml:"tag,omitempty"`

	// Default working root; empty means a per-run temp directory.
	Root string `yaml:"root,omitempty"`

	// Run journal database; empty disables journaling.
	Database string `yaml:"database,omitempty"`

	// Extended (EXTRA) attribute capture outside history mode.
	Extra bool `yaml:"extra,omitempty"`

	Tools Tools `yaml:"tools"`
}

// Tools names the external collaborators.
type Tools struct {
	Journalctl string `yaml:"journalctl,omitempty"`
	Lsblk      string `yaml:"lsblk,omitempty"`
	Git        string `yaml:"git,omitempty"`
	Date       string `yaml:"date,omitempty"`
}

// defaultConfig provides baseline settings
var defaultConfig = Config{
	Tag: "blkwatch",
	Tools: Tools{
		Journalctl: "journalctl",
		Lsblk:      "lsblk",
		Git:        "git",
		Date:       "date",
	},
}

func Load(path string) (*Config, error) {
	if path == "" {
		// Try default locations
		candidates := []string{
			"/etc/blkhist/config.yaml",
			filepath.Join(os.Getenv("HOME"), ".config/blkhist/config.yaml"),
			"config.yaml",
		}
		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}

	var cfg Config
	if path == "" {
		// No config file found - run on defaults
		cfg = defaultConfig
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			cfg = defaultConfig
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, err
			}
		}
	}

	// Apply defaults for missing values
	if cfg.Tag == "" {
		cfg.Tag = defaultConfig.Tag
	}
	if cfg.Tools.Journalctl == "" {
		cfg.Tools.Journalctl = defaultConfig.Tools.Journalctl
	}
	if cfg.Tools.Lsblk == "" {
		cfg.Tools.Lsblk = defaultConfig.Tools.Lsblk
	}
	if cfg.Tools.Git == "" {
		cfg.Tools.Git = defaultConfig.Tools.Git
	}
	if cfg.Tools.Date == "" {
		cfg.Tools.Date = defaultConfig.Tools.Date
	}

	return &cfg, nil
}
