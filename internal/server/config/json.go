package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/jeranbbs/jeran/internal/flagx"
	"github.com/jeranbbs/jeran/internal/timex"
)

// JsonConfig is the intermediate DTO for the JSON configuration file. It
// uses timex.Duration for the snapshot period so both "5m" strings and
// integer nanoseconds parse.
type JsonConfig struct {
	Addr              string         `json:"addr"`
	VerifierDBPath    string         `json:"verifier_db_path"`
	PostSaveDir       string         `json:"post_save_dir"`
	SnapshotPeriod    timex.Duration `json:"snapshot_period"`
	TextsDir          string         `json:"texts_dir"`
	AdminShellEnabled bool           `json:"admin_shell_enabled"`
	AdminShellAddr    string         `json:"admin_shell_addr"`
}

// parseJson overlays values from the JSON file named by the -c/-config
// flags onto config. Without the flag nothing is loaded. An unreadable or
// invalid file panics: there is no partial-start mode.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	applyJson(config, c)
}

func applyJson(config *Config, c *JsonConfig) {
	if c.Addr != "" {
		config.Addr = c.Addr
	}
	if c.VerifierDBPath != "" {
		config.VerifierDBPath = c.VerifierDBPath
	}
	if c.PostSaveDir != "" {
		config.PostSaveDir = c.PostSaveDir
	}
	if c.SnapshotPeriod.Duration != 0 {
		config.SnapshotPeriod = time.Duration(c.SnapshotPeriod.Duration)
	}
	if c.TextsDir != "" {
		config.TextsDir = c.TextsDir
	}
	if c.AdminShellEnabled {
		config.AdminShellEnabled = true
	}
	if c.AdminShellAddr != "" {
		config.AdminShellAddr = c.AdminShellAddr
	}
}
