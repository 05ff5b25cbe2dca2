package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andyballingall/pgformat-action/internal/tool"
	"github.com/andyballingall/pgformat-action/internal/validator"
)

type mapEnv map[string]string

func (m mapEnv) Get(key string) string {
	return m[key]
}

type mockCompiler struct {
	compileErr error
}

func (m *mockCompiler) AddSchema(_ string, _ validator.JSONSchema) error {
	return nil
}

func (m *mockCompiler) Compile(_ string) (validator.Validator, error) {
	return nil, m.compileErr
}

func ptr[T any](v T) *T {
	return &v
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func baseEnv(dir string) mapEnv {
	return mapEnv{
		"RUNNER_TEMP":       filepath.Join(dir, "tmp"),
		"RUNNER_TOOL_CACHE": filepath.Join(dir, "cache"),
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	cfg, err := New(baseEnv(dir), Overrides{WorkDir: &dir}, validator.NewSanthoshCompiler())
	require.NoError(t, err)

	assert.Equal(t, DefaultPattern, cfg.Pattern)
	assert.True(t, cfg.FollowSymbolicLinks)
	assert.Empty(t, cfg.ExtraArgs)
	assert.False(t, cfg.ContinueOnError)
	assert.Equal(t, tool.DefaultDescriptor(), cfg.Tool)
	assert.Equal(t, Dependency{Command: "perl", Args: []string{"-v"}}, cfg.Dependency)
	assert.Equal(t, dir, cfg.WorkDir)
	assert.Equal(t, filepath.Join(dir, "tmp"), cfg.TempDir)
	assert.Equal(t, filepath.Join(dir, "cache"), cfg.ToolCacheDir)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Empty(t, cfg.Source)
	assert.False(t, cfg.InActions)
	assert.NotEmpty(t, cfg.Arch)
}

func TestNewConfigFile(t *testing.T) {
	t.Parallel()

	configTests := []struct {
		name    string
		content string
		errStr  string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "empty file keeps defaults",
			content: "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultPattern, cfg.Pattern)
			},
		},
		{
			name:    "invalid yaml",
			content: "invalid: yaml: :",
			errStr:  "is not a valid yaml document",
		},
		{
			name:    "unknown property",
			content: "patern: '*.sql'\n",
			errStr:  "is not a valid pgfa configuration",
		},
		{
			name:    "wrong type",
			content: "continueOnError: sometimes\n",
			errStr:  "is not a valid pgfa configuration",
		},
		{
			name:    "empty pattern",
			content: "pattern: ''\n",
			errStr:  "configuration is missing required property: pattern",
		},
		{
			name: "full file",
			content: `pattern: |
  db/**/*.sql
  !db/vendor/**
followSymbolicLinks: false
extraArgs: "-s 2 -u 1"
continueOnError: true
since: origin/main
tool:
  version: "5.5"
  url: "https://example.com/pg-{{version}}.zip"
dependency:
  command: perl5
  args: []
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "db/**/*.sql\n!db/vendor/**\n", cfg.Pattern)
				assert.False(t, cfg.FollowSymbolicLinks)
				assert.Equal(t, "-s 2 -u 1", cfg.ExtraArgs)
				assert.True(t, cfg.ContinueOnError)
				assert.Equal(t, "origin/main", cfg.Since)
				assert.Equal(t, "5.5", cfg.Tool.Version)
				assert.Equal(t, "https://example.com/pg-5.5.zip", cfg.Tool.DownloadURL())
				assert.Equal(t, tool.DefaultName, cfg.Tool.Name)
				assert.Equal(t, tool.DefaultArchiveRoot, cfg.Tool.ArchiveRoot)
				assert.Equal(t, "perl5", cfg.Dependency.Command)
				assert.Empty(t, cfg.Dependency.Args)
			},
		},
		{
			name:    "dependency without args drops the default args",
			content: "dependency:\n  command: sh\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "sh", cfg.Dependency.String())
			},
		},
		{
			name:    "unquoted numeric version",
			content: "tool:\n  version: 5.2\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "5.2", cfg.Tool.Version)
			},
		},
		{
			name:    "release tag version",
			content: "tool:\n  version: v5.5\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "5.5", cfg.Tool.Version)
				assert.Equal(t, "https://github.com/darold/pgFormatter/archive/refs/tags/v5.5.zip", cfg.Tool.DownloadURL())
				assert.Equal(t, "pgFormatter-5.5", cfg.Tool.RootDir())
			},
		},
		{
			name:    "tool url with unsupported scheme",
			content: "tool:\n  url: ftp://example.com/pg.zip\n",
			errStr:  "is not a valid pgfa configuration",
		},
		{
			name:    "latest without repository",
			content: "tool:\n  version: latest\n  repository: ''\n",
			errStr:  "is not a valid pgfa configuration",
		},
	}

	for _, tt := range configTests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			p := writeConfig(t, dir, DefaultConfigFile, tt.content)

			cfg, err := New(baseEnv(dir), Overrides{WorkDir: &dir}, validator.NewSanthoshCompiler())
			if tt.errStr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errStr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, p, cfg.Source)
			tt.check(t, cfg)
		})
	}
}

func TestNewErrorTypes(t *testing.T) {
	t.Parallel()

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeConfig(t, dir, DefaultConfigFile, "a: [")
		_, err := New(baseEnv(dir), Overrides{WorkDir: &dir}, validator.NewSanthoshCompiler())
		var target *InvalidYAMLError
		require.ErrorAs(t, err, &target)
	})

	t.Run("schema violation", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeConfig(t, dir, DefaultConfigFile, "extraArgs: 3\n")
		_, err := New(baseEnv(dir), Overrides{WorkDir: &dir}, validator.NewSanthoshCompiler())
		var target *InvalidConfigError
		require.ErrorAs(t, err, &target)
	})

	t.Run("compiler failure", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeConfig(t, dir, DefaultConfigFile, "pattern: x.sql\n")
		boom := errors.New("boom")
		_, err := New(baseEnv(dir), Overrides{WorkDir: &dir}, &mockCompiler{compileErr: boom})
		require.ErrorIs(t, err, boom)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		_, err := New(baseEnv(dir), Overrides{WorkDir: &dir, ConfigPath: ptr("nope.yml")}, validator.NewSanthoshCompiler())
		var target *MissingConfigError
		require.ErrorAs(t, err, &target)
		assert.EqualError(t, err, "configuration file "+filepath.Join(dir, "nope.yml")+" does not exist")
	})

	t.Run("invalid tool override", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		_, err := New(baseEnv(dir), Overrides{WorkDir: &dir, ToolURL: ptr("ftp://x/y.zip")}, validator.NewSanthoshCompiler())
		var target *InvalidToolError
		require.ErrorAs(t, err, &target)
		var desc *tool.InvalidDescriptorError
		require.ErrorAs(t, err, &desc)
	})

	t.Run("release tag override", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfg, err := New(baseEnv(dir), Overrides{WorkDir: &dir, ToolVersion: ptr("v5.1")}, validator.NewSanthoshCompiler())
		require.NoError(t, err)
		assert.Equal(t, "5.1", cfg.Tool.Version)
		assert.Equal(t, "https://github.com/darold/pgFormatter/archive/refs/tags/v5.1.zip", cfg.Tool.DownloadURL())
		assert.Equal(t, "pgFormatter-5.1", cfg.Tool.RootDir())
	})

	t.Run("invalid api url", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		env := baseEnv(dir)
		env["GITHUB_API_URL"] = "ghe.example.com/api"
		_, err := New(env, Overrides{WorkDir: &dir}, validator.NewSanthoshCompiler())
		var target *InvalidURLError
		require.ErrorAs(t, err, &target)
	})
}

func TestConfigFileLocation(t *testing.T) {
	t.Parallel()

	t.Run("env var names the file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeConfig(t, dir, DefaultConfigFile, "pattern: default.sql\n")
		writeConfig(t, dir, "other.yml", "pattern: other.sql\n")
		env := baseEnv(dir)
		env[ConfigEnvVar] = "other.yml"

		cfg, err := New(env, Overrides{WorkDir: &dir}, validator.NewSanthoshCompiler())
		require.NoError(t, err)
		assert.Equal(t, "other.sql", cfg.Pattern)
	})

	t.Run("flag beats env var", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeConfig(t, dir, "env.yml", "pattern: env.sql\n")
		flagFile := writeConfig(t, dir, "flag.yml", "pattern: flag.sql\n")
		env := baseEnv(dir)
		env[ConfigEnvVar] = "env.yml"

		cfg, err := New(env, Overrides{WorkDir: &dir, ConfigPath: &flagFile}, validator.NewSanthoshCompiler())
		require.NoError(t, err)
		assert.Equal(t, "flag.sql", cfg.Pattern)
		assert.Equal(t, flagFile, cfg.Source)
	})
}

func TestPrecedence(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeConfig(t, dir, DefaultConfigFile, `pattern: file.sql
extraArgs: "-s 4"
continueOnError: false
followSymbolicLinks: true
`)
	env := baseEnv(dir)
	env["INPUT_PATTERN"] = "env.sql"
	env["INPUT_EXTRA-ARGS"] = "-s 2"
	env["INPUT_CONTINUE-ON-ERROR"] = "TRUE"
	env["INPUT_FOLLOW_SYMBOLIC_LINKS"] = "False"
	env["INPUT_SINCE"] = "v1.0"

	t.Run("environment beats file", func(t *testing.T) {
		t.Parallel()
		cfg, err := New(env, Overrides{WorkDir: &dir}, validator.NewSanthoshCompiler())
		require.NoError(t, err)
		assert.Equal(t, "env.sql", cfg.Pattern)
		assert.Equal(t, "-s 2", cfg.ExtraArgs)
		assert.True(t, cfg.ContinueOnError)
		assert.False(t, cfg.FollowSymbolicLinks)
		assert.Equal(t, "v1.0", cfg.Since)
	})

	t.Run("flags beat environment", func(t *testing.T) {
		t.Parallel()
		cfg, err := New(env, Overrides{
			WorkDir:             &dir,
			Pattern:             ptr("flag.sql"),
			ExtraArgs:           ptr(""),
			ContinueOnError:     ptr(false),
			FollowSymbolicLinks: ptr(true),
			Since:               ptr("HEAD~1"),
			ToolVersion:         ptr("5.6"),
		}, validator.NewSanthoshCompiler())
		require.NoError(t, err)
		assert.Equal(t, "flag.sql", cfg.Pattern)
		assert.Empty(t, cfg.ExtraArgs)
		assert.False(t, cfg.ContinueOnError)
		assert.True(t, cfg.FollowSymbolicLinks)
		assert.Equal(t, "HEAD~1", cfg.Since)
		assert.Equal(t, "5.6", cfg.Tool.Version)
	})
}

func TestEnvironment(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	env := mapEnv{
		"GITHUB_ACTIONS":      "true",
		"RUNNER_TEMP":         "/runner/tmp",
		"RUNNER_TOOL_CACHE":   "/opt/hostedtoolcache",
		"RUNNER_ARCH":         "ARM64",
		"GITHUB_API_URL":      "https://ghe.example.com/api/v3/",
		"GITHUB_TOKEN":        "gh-token",
		"GITHUB_STEP_SUMMARY": "/runner/summary.md",
	}

	cfg, err := New(env, Overrides{WorkDir: &dir}, validator.NewSanthoshCompiler())
	require.NoError(t, err)
	assert.True(t, cfg.InActions)
	assert.Equal(t, "/runner/tmp", cfg.TempDir)
	assert.Equal(t, "/opt/hostedtoolcache", cfg.ToolCacheDir)
	assert.Equal(t, "arm64", cfg.Arch)
	assert.Equal(t, "https://ghe.example.com/api/v3", cfg.APIURL)
	assert.Equal(t, "gh-token", cfg.Token)
	assert.Equal(t, "/runner/summary.md", cfg.StepSummary)

	env["INPUT_TOKEN"] = "input-token"
	cfg, err = New(env, Overrides{WorkDir: &dir}, validator.NewSanthoshCompiler())
	require.NoError(t, err)
	assert.Equal(t, "input-token", cfg.Token)
}

func TestInvalidBoolInput(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	env := baseEnv(dir)
	env["INPUT_CONTINUE-ON-ERROR"] = "yes"

	_, err := New(env, Overrides{WorkDir: &dir}, validator.NewSanthoshCompiler())
	var target *InvalidInputError
	require.ErrorAs(t, err, &target)
	assert.EqualError(t, err, "input continue-on-error has invalid value 'yes': expected true or false")
}

func TestInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  mapEnv
		want string
	}{
		{name: "hyphenated", env: mapEnv{"INPUT_EXTRA-ARGS": "-s 2"}, want: "-s 2"},
		{name: "underscored", env: mapEnv{"INPUT_EXTRA_ARGS": "-u 1"}, want: "-u 1"},
		{name: "hyphenated wins", env: mapEnv{"INPUT_EXTRA-ARGS": "a", "INPUT_EXTRA_ARGS": "b"}, want: "a"},
		{name: "trimmed", env: mapEnv{"INPUT_EXTRA-ARGS": "  -s 2\n"}, want: "-s 2"},
		{name: "unset", env: mapEnv{}, want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Input(tt.env, InputExtraArgs))
		})
	}
}

func TestParseBool(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"true", "True", "TRUE", " true "} {
		b, err := ParseBool("x", v)
		require.NoError(t, err)
		assert.True(t, b, v)
	}
	for _, v := range []string{"false", "False", "FALSE"} {
		b, err := ParseBool("x", v)
		require.NoError(t, err)
		assert.False(t, b, v)
	}
	for _, v := range []string{"1", "yes", "on", ""} {
		_, err := ParseBool("x", v)
		var target *InvalidInputError
		require.ErrorAs(t, err, &target, v)
	}
}

func TestArchFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "x64", ArchFor("amd64"))
	assert.Equal(t, "x86", ArchFor("386"))
	assert.Equal(t, "arm64", ArchFor("arm64"))
}

func TestDefaultConfigContentIsValid(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeConfig(t, dir, DefaultConfigFile, DefaultConfigContent)

	cfg, err := New(baseEnv(dir), Overrides{WorkDir: &dir}, validator.NewSanthoshCompiler())
	require.NoError(t, err)
	assert.Equal(t, DefaultPattern, cfg.Pattern)
	assert.Equal(t, "5.1", cfg.Tool.Version)
}
