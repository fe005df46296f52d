package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "TELEGRAM_TOKEN", "ADMIN_TELEGRAM_ID", "LOG_LEVEL",
		"ENVIRONMENT", "CRON_SPEC_REPETITION", "COPY_PLANS_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite:///tmp/repeater.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite:///tmp/repeater.db", cfg.DatabaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0 1 * * *", cfg.CronSpecRepetition)
	assert.Empty(t, cfg.CopyPlansPath)
	assert.False(t, cfg.BotEnabled())
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadTelegram(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/repeater")
	t.Setenv("TELEGRAM_TOKEN", "token")

	_, err := Load()
	require.Error(t, err, "admin id is required with a token")

	t.Setenv("ADMIN_TELEGRAM_ID", "not-a-number")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("ADMIN_TELEGRAM_ID", "12345")
	t.Setenv("LOG_LEVEL", "DEBUG")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.BotEnabled())
	assert.Equal(t, int64(12345), cfg.AdminTelegramID)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParseCopyPlans(t *testing.T) {
	plans, err := ParseCopyPlans([]byte(`
record_types:
  ToDo:
    fields: [description, assigned_by]
    date_fields: [date]
  Sales Invoice:
    fields: [customer, items]
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Sales Invoice", "ToDo"}, plans.Types())
	assert.Equal(t, []string{"description", "assigned_by"}, plans["ToDo"].Fields)
	assert.Equal(t, []string{"date"}, plans["ToDo"].DateFields)
	assert.Empty(t, plans["Sales Invoice"].DateFields)
}

func TestParseCopyPlansInvalid(t *testing.T) {
	for name, doc := range map[string]string{
		"not yaml":     "record_types: [",
		"empty":        "record_types: {}",
		"no fields":    "record_types:\n  ToDo: {}\n",
		"missing root": "ToDo:\n  fields: [a]\n",
	} {
		_, err := ParseCopyPlans([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoadCopyPlans(t *testing.T) {
	plans, err := LoadCopyPlans("")
	require.NoError(t, err)
	assert.Contains(t, plans, "ToDo")

	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte("record_types:\n  Note:\n    fields: [body]\n"), 0o600))
	plans, err = LoadCopyPlans(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Note"}, plans.Types())

	_, err = LoadCopyPlans(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
