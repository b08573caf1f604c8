package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
concurrency: 4
follow_symlinks: true
show_hidden: false
exclude:
  - node_modules
  - .git
min_size: 1KB
top: 25
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Concurrency)
	assert.True(t, cfg.FollowSymlinks)
	require.NotNil(t, cfg.ShowHidden)
	assert.False(t, *cfg.ShowHidden)
	assert.Equal(t, []string{"node_modules", ".git"}, cfg.Exclude)
	assert.Equal(t, 25, cfg.TopN)

	opts := cfg.ScanOptions()
	assert.Equal(t, 4, opts.Concurrency)
	assert.True(t, opts.FollowSymlinks)
	assert.False(t, opts.ShowHidden)
	assert.Equal(t, int64(1000), opts.MinSize)
	assert.Contains(t, opts.ExcludePatterns, "node_modules")
}

func TestLoad_DefaultsWhenOmitted(t *testing.T) {
	path := writeConfig(t, `concurrency: 2`)

	cfg, err := Load(path)
	require.NoError(t, err)

	opts := cfg.ScanOptions()
	assert.True(t, opts.ShowHidden, "show_hidden defaults to true")
	assert.False(t, opts.FollowSymlinks)
	assert.Zero(t, opts.MinSize)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `does_not_exist: 1`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	for name, content := range map[string]string{
		"negative concurrency": `concurrency: -1`,
		"negative top":         `top: -5`,
		"bad min_size":         `min_size: lots`,
	} {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadDefault_MissingFileIsEmptyConfig(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	t.Setenv("HOME", dir)

	cfg, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadDefault_FindsFileInCwd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`top: 7`), 0o644))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	cfg, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.TopN)
}
