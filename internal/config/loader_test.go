package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(content), 0o644))
}

func TestLoadConfig_Default(t *testing.T) {
	t.Parallel()

	// Create temp directory without config file
	tmpDir := t.TempDir()

	cfg, err := LoadConfig(tmpDir)
	require.NoError(t, err)

	// Should return default values
	assert.False(t, cfg.Verbose)
	assert.Equal(t, DefaultColor, cfg.Color)
	assert.Equal(t, DefaultEnvFile, cfg.EnvFile)
	assert.Empty(t, cfg.Defaults)
}

func TestLoadConfig_ValidFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `verbose: true
color: never
shell: /bin/bash
env_file: build.env
defaults:
  target: release
  jobs: 4
  debug: false
disable:
  - markdown
`)

	cfg, err := LoadConfig(tmpDir)
	require.NoError(t, err)

	assert.True(t, cfg.Verbose)
	assert.Equal(t, ColorNever, cfg.Color)
	assert.Equal(t, "/bin/bash", cfg.Shell)
	assert.Equal(t, "build.env", cfg.EnvFile)
	assert.Equal(t, map[string]interface{}{"target": "release", "jobs": 4, "debug": false}, cfg.Defaults)
	assert.Equal(t, []string{"markdown"}, cfg.Disable)
}

func TestLoadConfig_PartialFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	// Only set verbose, rest should keep defaults
	writeConfig(t, tmpDir, "verbose: true\n")

	cfg, err := LoadConfig(tmpDir)
	require.NoError(t, err)

	assert.True(t, cfg.Verbose)
	assert.Equal(t, DefaultColor, cfg.Color)
	assert.Equal(t, DefaultEnvFile, cfg.EnvFile)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `defaults: [`)

	_, err := LoadConfig(tmpDir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{
			name:    "unknown color",
			content: "color: sometimes\n",
			field:   "color",
		},
		{
			name: "nested default",
			content: `defaults:
  nested:
    a: 1
`,
			field: "defaults.nested",
		},
		{
			name: "list default",
			content: `defaults:
  list: [1, 2]
`,
			field: "defaults.list",
		},
		{
			name: "empty disable entry",
			content: `disable:
  - ""
`,
			field: "disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			writeConfig(t, tmpDir, tt.content)

			_, err := LoadConfig(tmpDir)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))

			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestLoadEnvFile_Valid(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	envContent := `# API Keys
GITHUB_TOKEN=ghp_test456

# Empty line above is ok

SOME_VAR="value with spaces"
export ANOTHER_VAR=no-spaces
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".env"), []byte(envContent), 0o644))

	cfg := DefaultConfig()
	env, err := LoadEnvFile(tmpDir, &cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ANOTHER_VAR=no-spaces",
		"GITHUB_TOKEN=ghp_test456",
		"SOME_VAR=value with spaces",
	}, env)
}

func TestLoadEnvFile_CustomPath(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "build.env"), []byte("KEY=value=with=equals\n"), 0o644))

	cfg := DefaultConfig()
	cfg.EnvFile = "build.env"
	env, err := LoadEnvFile(tmpDir, &cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"KEY=value=with=equals"}, env)
}

func TestLoadEnvFile_NotFound(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	env, err := LoadEnvFile(tmpDir, &cfg)
	require.NoError(t, err)
	assert.Empty(t, env)
}

func TestLoadEnvFile_Disabled(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("KEY=value\n"), 0o644))

	cfg := DefaultConfig()
	cfg.EnvFile = ""
	env, err := LoadEnvFile(tmpDir, &cfg)
	require.NoError(t, err)
	assert.Empty(t, env)
}

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	ve := ValidationError{Field: "test.field", Message: "must be valid"}
	assert.Equal(t, "validation error: test.field: must be valid", ve.Error())
}

func TestIsValidationError(t *testing.T) {
	t.Parallel()

	ve := ValidationError{Field: "test", Message: "test"}
	assert.True(t, IsValidationError(ve))
	assert.False(t, IsValidationError(os.ErrNotExist))
}
