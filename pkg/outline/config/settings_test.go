package config

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/outline/pkg/outline/internalerr"
)

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings("")
	require.NoError(t, err)

	assert.Equal(t, "", s.Vocabulary)
	assert.Equal(t, "", s.ReportDB)
	assert.Equal(t, "", s.TemplatesDir)
	assert.Equal(t, runtime.NumCPU(), s.Workers)
	assert.True(t, s.Color)
}

func TestLoadSettingsFile(t *testing.T) {
	path := writeFile(t, "outline.yaml", `
vocabulary: /etc/outline/vocab.yaml
report_db: runs.db
workers: 2
color: false
`)

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "/etc/outline/vocab.yaml", s.Vocabulary)
	assert.Equal(t, "runs.db", s.ReportDB)
	assert.Equal(t, 2, s.Workers)
	assert.False(t, s.Color)
}

func TestLoadSettingsEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "outline.yaml", "workers: 2\n")
	t.Setenv("OUTLINE_WORKERS", "7")
	t.Setenv("OUTLINE_TEMPLATES_DIR", "/srv/templates")

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, 7, s.Workers)
	assert.Equal(t, "/srv/templates", s.TemplatesDir)
}

func TestLoadSettingsMissingFile(t *testing.T) {
	_, err := LoadSettings("/nonexistent/outline.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func TestLoadSettingsRejectsZeroWorkers(t *testing.T) {
	path := writeFile(t, "outline.yaml", "workers: 0\n")

	_, err := LoadSettings(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}
