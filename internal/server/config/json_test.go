package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jeranbbs/jeran/internal/timex"
)

func TestApplyJson_OverridesOnlySetFields(t *testing.T) {
	var c Config
	c.LoadDefaults()

	applyJson(&c, &JsonConfig{
		Addr:           ":9999",
		SnapshotPeriod: timex.Duration{Duration: 30 * time.Second},
	})

	assert.Equal(t, ":9999", c.Addr)
	assert.Equal(t, 30*time.Second, c.SnapshotPeriod)
	// Untouched fields keep their defaults.
	assert.Equal(t, "jeran/verifier.json", c.VerifierDBPath)
	assert.Equal(t, "jeran/posts", c.PostSaveDir)
}

func TestApplyJson_AdminShell(t *testing.T) {
	var c Config
	c.LoadDefaults()

	applyJson(&c, &JsonConfig{
		AdminShellEnabled: true,
		AdminShellAddr:    ":7777",
	})

	assert.True(t, c.AdminShellEnabled)
	assert.Equal(t, ":7777", c.AdminShellAddr)
}
