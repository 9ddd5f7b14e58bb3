package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load(New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "student", cfg.Mode)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, 65, cfg.Wrap)
	assert.False(t, cfg.LateSubmission)
	assert.False(t, cfg.Source.Enabled)
}

func TestLoad_ProjectOverridesUser(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeFile(t, filepath.Join(xdg, "speccheck", "config.yaml"), "theme: mono\nwrap: 80\n")

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ProjectFile), `wrap: 72
late_submission: true
checklist:
  - I have pushed my work.
source:
  enabled: true
  allowed_imports:
    - github.com/stretchr/
`)
	nested := filepath.Join(root, "hw1", "shapes")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := Load(New(), nested)
	require.NoError(t, err)

	assert.Equal(t, "mono", cfg.Theme)
	assert.Equal(t, 72, cfg.Wrap)
	assert.True(t, cfg.LateSubmission)
	assert.Equal(t, []string{"I have pushed my work."}, cfg.Checklist)
	assert.True(t, cfg.Source.Enabled)
	assert.Equal(t, []string{"github.com/stretchr/"}, cfg.Source.AllowedImports)
}

func TestLoad_EnvAndFlags(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SPECCHECK_MODE", "grading")
	t.Setenv("SPECCHECK_THEME", "mono")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("theme", "default", "")
	fs.String("log-level", "warn", "")
	fs.Bool("watch", false, "")
	require.NoError(t, fs.Parse([]string{"--log-level", "debug", "--theme", "default"}))

	v := New()
	require.NoError(t, BindFlags(v, fs))
	cfg, err := Load(v, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "grading", cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "default", cfg.Theme)
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speccheck.yaml")
	writeFile(t, path, "mode: grading\nformat: json\n")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "grading", cfg.Mode)
	assert.Equal(t, "json", cfg.Format)

	_, err = LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFindProjectConfig(t *testing.T) {
	root := t.TempDir()
	assert.Empty(t, FindProjectConfig(root))

	writeFile(t, filepath.Join(root, ProjectFile), "mode: student\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	assert.Equal(t, filepath.Join(root, ProjectFile), FindProjectConfig(nested))
}
