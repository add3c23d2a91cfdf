// Package config handles configuration for the board server: defaults,
// JSON overlay, and command-line flags, applied in that order.
package config

import "time"

// Config holds runtime settings for the board server.
//
// Fields:
//   - Addr: bind address for the client listener.
//   - VerifierDBPath: path of the credential-store JSON file.
//   - PostSaveDir: directory receiving timestamped post snapshots.
//   - SnapshotPeriod: interval between snapshot ticks.
//   - TextsDir: optional directory of banner .txt overrides.
//   - AdminShellEnabled / AdminShellAddr: the remote admin listener.
type Config struct {
	Addr              string
	VerifierDBPath    string
	PostSaveDir       string
	SnapshotPeriod    time.Duration
	TextsDir          string
	AdminShellEnabled bool
	AdminShellAddr    string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":3103"
	c.VerifierDBPath = "jeran/verifier.json"
	c.PostSaveDir = "jeran/posts"
	c.SnapshotPeriod = 5 * time.Minute
	c.TextsDir = ""
	c.AdminShellEnabled = false
	c.AdminShellAddr = ":3104"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// Validate reports whether the configuration can start a server at all.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errMissingAddr
	}
	if c.VerifierDBPath == "" {
		return errMissingVerifierPath
	}
	if c.PostSaveDir == "" {
		return errMissingSaveDir
	}
	if c.SnapshotPeriod <= 0 {
		return errInvalidSnapshotPeriod
	}
	return nil
}
