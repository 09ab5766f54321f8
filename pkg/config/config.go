package config

import (
	"fmt"

	gotoml "github.com/pelletier/go-toml/v2"
)

// Config is the effective csync configuration.
type Config struct {
	Sync    SyncConfig    `koanf:"sync" toml:"sync"`
	Paths   PathsConfig   `koanf:"paths" toml:"paths"`
	Backup  BackupConfig  `koanf:"backup" toml:"backup"`
	Links   []LinkConfig  `koanf:"links" toml:"links"`
	Metrics MetricsConfig `koanf:"metrics" toml:"metrics"`
	Addons  AddonsConfig  `koanf:"addons" toml:"addons"`
}

// SyncConfig selects the remote branch that machines converge on.
type SyncConfig struct {
	Branch    string `koanf:"branch" toml:"branch"`
	Remote    string `koanf:"remote" toml:"remote"`
	RemoteURL string `koanf:"remote_url" toml:"remote_url"`
}

type PathsConfig struct {
	ConfigsDir string `koanf:"configs_dir" toml:"configs_dir"`
}

// BackupConfig controls archive contents and retention.
type BackupConfig struct {
	Keep            int      `koanf:"keep" toml:"keep"`
	Exclude         []string `koanf:"exclude" toml:"exclude"`
	ExcludeSuffixes []string `koanf:"exclude_suffixes" toml:"exclude_suffixes"`
}

// LinkConfig is one standard symlink: Source is relative to the configs
// directory, Target relative to the home directory.
type LinkConfig struct {
	Source string `koanf:"source" toml:"source"`
	Target string `koanf:"target" toml:"target"`
}

type MetricsConfig struct {
	// Textfile is where sync metrics are written for the node_exporter
	// textfile collector. Empty disables the export.
	Textfile string `koanf:"textfile" toml:"textfile"`
}

type AddonsConfig struct {
	Script           string `koanf:"script" toml:"script"`
	OhMyZshInstaller string `koanf:"ohmyzsh_installer" toml:"ohmyzsh_installer"`
}

// Validate rejects configurations the rest of csync cannot act on.
func (c *Config) Validate() error {
	if c.Sync.Branch == "" {
		return fmt.Errorf("sync.branch must not be empty")
	}
	if c.Sync.Remote == "" {
		return fmt.Errorf("sync.remote must not be empty")
	}
	if c.Backup.Keep < 1 {
		return fmt.Errorf("backup.keep must be at least 1, got %d", c.Backup.Keep)
	}
	for i, link := range c.Links {
		if link.Source == "" || link.Target == "" {
			return fmt.Errorf("links[%d] needs both source and target", i)
		}
	}
	return nil
}

// Marshal renders the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return gotoml.Marshal(c)
}
