package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "roles", cfg.Namespace.Dir)
	assert.Equal(t, []string{"tests", "files", "templates", "library"}, cfg.Rewrite.SkipDirs)
	assert.Equal(t, 512, cfg.Rewrite.CacheSize)
	assert.True(t, cfg.Backup.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 300, cfg.Watch.DebounceMs)
	assert.False(t, cfg.DryRun)
}

func TestLoadFromFile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	dir := t.TempDir()
	path := filepath.Join(dir, ".rolefix.yml")
	content := `namespace:
  dir: galaxy_roles
rewrite:
  skip_dirs:
    - tests
backup:
  enabled: false
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "galaxy_roles", cfg.Namespace.Dir)
	assert.Equal(t, []string{"tests"}, cfg.Rewrite.SkipDirs)
	assert.False(t, cfg.Backup.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFlagOverrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("dry-run", true)
	viper.Set("namespace.dir", "custom_roles")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.DryRun)
	assert.Equal(t, "custom_roles", cfg.Namespace.Dir)
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("log.level", "chatty")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestLoadRejectsBadFormat(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("log.format", "xml")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsTraversalNamespace(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("namespace.dir", "../outside")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "traversal")
}

func TestLoadRejectsNestedSkipDir(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("rewrite.skip_dirs", []string{"roles/tests"})

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNegativeValues(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("rewrite.cache_size", -1)
	_, err := Load()
	assert.Error(t, err)

	viper.Reset()
	viper.Set("watch.debounce_ms", -5)
	_, err = Load()
	assert.Error(t, err)
}

func TestNamespacePath(t *testing.T) {
	cfg := &Config{Root: "/srv/galaxy"}
	cfg.Namespace.Dir = "roles"
	assert.Equal(t, filepath.Join("/srv/galaxy", "roles"), cfg.NamespacePath())

	cfg.Namespace.Dir = "/var/lib/roles"
	assert.Equal(t, "/var/lib/roles", cfg.NamespacePath())
}
