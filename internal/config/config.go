// Package config defines the node's configuration shape, mirrored
// field-for-field from the original config model. Parsing a config file
// is out of scope (spec Non-goals); this package only exposes the tagged
// struct shape an external loader would populate, plus sensible defaults.
package config

import (
	"os"
	"path/filepath"
)

// IPVersion selects which IP stack(s) the node listens on.
type IPVersion string

const (
	IPv4 IPVersion = "ipv4"
	IPv6 IPVersion = "ipv6"
	Dual IPVersion = "dual"
)

// UpgradeChannel selects which releases the upgrade monitor considers.
type UpgradeChannel string

const (
	ChannelStable UpgradeChannel = "stable"
	ChannelBeta   UpgradeChannel = "beta"
)

// UpgradeConfig controls the upgrade monitor (C9).
type UpgradeConfig struct {
	Enabled            bool           `yaml:"enabled"`
	Channel            UpgradeChannel `yaml:"channel"`
	CheckIntervalHours uint64         `yaml:"check_interval_hours"`
}

// MigrationConfig controls the migration engine (C6).
type MigrationConfig struct {
	AutoDetect  bool   `yaml:"auto_detect"`
	AntDataPath string `yaml:"ant_data_path,omitempty"`
}

// NodeConfig is the node's complete recognized configuration (§6).
type NodeConfig struct {
	RootDir   string          `yaml:"root_dir"`
	Port      uint16          `yaml:"port"`
	IPVersion IPVersion       `yaml:"ip_version"`
	Bootstrap []string        `yaml:"bootstrap"`
	Upgrade   UpgradeConfig   `yaml:"upgrade"`
	Migration MigrationConfig `yaml:"migration"`
	LogLevel  string          `yaml:"log_level"`
}

// Default returns the configuration a node starts with absent any
// external overrides, matching the original's per-field defaults.
func Default() NodeConfig {
	return NodeConfig{
		RootDir:   defaultRootDir(),
		Port:      0,
		IPVersion: Dual,
		Bootstrap: nil,
		Upgrade: UpgradeConfig{
			Enabled:            false,
			Channel:            ChannelStable,
			CheckIntervalHours: 1,
		},
		Migration: MigrationConfig{
			AutoDetect: false,
		},
		LogLevel: "info",
	}
}

// defaultRootDir mirrors directories::ProjectDirs::from("", "", "saorsa")
// falling back to a dotdir under the current directory when the home
// directory cannot be resolved.
func defaultRootDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".saorsa"
	}
	return filepath.Join(home, ".local", "share", "saorsa")
}
