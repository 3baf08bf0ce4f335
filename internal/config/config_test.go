package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(newViper(), t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.MaxFiles)
	assert.Equal(t, "toon", cfg.Format)
	assert.Equal(t, 100, cfg.MaxCycles)
	assert.Empty(t, cfg.Languages)
}

func TestLoadRepoFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := "max_files: 10\nformat: json\nlanguages: [go, python]\nexclude:\n  - \"**/*_test.go\"\ncache_dir: .cache\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".repolens.yaml"), []byte(content), 0o644))

	cfg, err := Load(newViper(), dir, "")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxFiles)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, []string{"go", "python"}, cfg.Languages)
	assert.Equal(t, []string{"**/*_test.go"}, cfg.Exclude)
	assert.Equal(t, filepath.Join(dir, ".cache"), cfg.CacheDir)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	t.Parallel()

	_, err := Load(newViper(), t.TempDir(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := Config{Format: "toon", MaxFileSize: 1}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"bad format", func(c *Config) { c.Format = "xml" }, false},
		{"negative max files", func(c *Config) { c.MaxFiles = -1 }, false},
		{"zero size", func(c *Config) { c.MaxFileSize = 0 }, false},
		{"unknown language", func(c *Config) { c.Languages = []string{"cobol"} }, false},
		{"known language", func(c *Config) { c.Languages = []string{"rust"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}
}
