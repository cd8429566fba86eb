package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Empty(t, config.Encoding)
	assert.False(t, config.RawCharacters)
	assert.False(t, config.Strict)
	assert.Equal(t, "json", config.Output.Format)
	assert.Equal(t, "warn", config.Logging.Level)
	assert.Equal(t, "text", config.Logging.Format)
	assert.NoError(t, config.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("load existing config", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "ydbf.yaml")
		expected := &Config{
			Encoding: "cp1251",
			Strict:   true,
			Output:   Output{Format: "yaml"},
			Logging:  Logging{Level: "debug", Format: "json"},
		}
		data, err := yaml.Marshal(expected)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(configPath, data, 0o600))

		loaded, err := Load(configPath)
		require.NoError(t, err)
		assert.Equal(t, expected, loaded)
	})

	t.Run("partial config keeps defaults", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "ydbf.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("raw_characters: true\n"), 0o600))

		loaded, err := Load(configPath)
		require.NoError(t, err)
		assert.True(t, loaded.RawCharacters)
		assert.Equal(t, "json", loaded.Output.Format)
		assert.Equal(t, "warn", loaded.Logging.Level)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "ydbf.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("output: [\n"), 0o600))
		_, err := Load(configPath)
		assert.ErrorContains(t, err, "failed to parse config file")
	})

	t.Run("invalid output format", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "ydbf.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("output:\n  format: csv\n"), 0o600))
		_, err := Load(configPath)
		assert.ErrorContains(t, err, "csv")
	})
}
