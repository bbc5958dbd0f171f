package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"michelin-scraper/config"
	"michelin-scraper/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingDefault(t *testing.T) {
	c, err := loadConfig(filepath.Join(t.TempDir(), "config.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, config.GetDefaultConfig(), c)
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "config.yaml"), true)
	assert.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  file: out.xlsx\n"), 0o600))

	c, err := loadConfig(path, false)
	require.NoError(t, err)
	assert.Equal(t, "out.xlsx", c.Output.File)
	assert.Equal(t, "Michelin Restaurants", c.Output.SheetName)
}

func TestApplyFlags(t *testing.T) {
	c := config.GetDefaultConfig()
	applyFlags(c, AppFlags{
		Output:      "x.xlsx",
		Spreadsheet: "https://docs.google.com/spreadsheets/d/abc/edit",
		Backend:     "rod",
		LogFile:     "scraper.log",
	})

	assert.Equal(t, "x.xlsx", c.Output.File)
	assert.Equal(t, "Michelin Restaurants", c.Output.SheetName)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc/edit", c.Output.SpreadsheetURL)
	assert.Equal(t, "rod", c.Fetch.Backend)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "scraper.log", c.Log.File)
}

func TestNewNotifierWithoutToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	n := newNotifier(config.GetDefaultConfig(), nil)
	assert.Equal(t, notify.Nop{}, n)
}
