// Package config assembles the immutable run configuration from defaults, the optional
// YAML file, the action inputs in the environment and command line overrides, in that order.
package config

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/andyballingall/pgformat-action/internal/fsh"
	"github.com/andyballingall/pgformat-action/internal/tool"
	"github.com/andyballingall/pgformat-action/internal/validator"
)

const (
	DefaultConfigFile = ".pgformat-action.yml"
	ConfigEnvVar      = "PGFA_CONFIG"
	DefaultPattern    = "**/*.sql"
	DefaultAPIURL     = "https://api.github.com"
)

const schemaID = "https://github.com/andyballingall/pgformat-action/config.schema.json"

//go:embed schema.json
var schemaJSON []byte

// Input names, as declared in action.yml.
const (
	InputPattern         = "pattern"
	InputFollowSymlinks  = "follow-symbolic-links"
	InputExtraArgs       = "extra-args"
	InputContinueOnError = "continue-on-error"
	InputToken           = "token"
	InputSince           = "since"
)

const DefaultConfigContent = `# pgformat-action configuration
#
# Every setting is optional. Action inputs and command line flags take precedence
# over the values in this file.

# Files to format, one glob per line. Lines starting with ! exclude matches.
pattern: "**/*.sql"

# Traverse symbolic links to directories while searching for files.
followSymbolicLinks: true

# Extra pg_format arguments, split on whitespace. They are placed after -i.
extraArgs: ""

# Keep formatting the remaining files when one fails, then report all failures.
continueOnError: false

# Only format files changed since this git revision (branch, tag or commit).
# since: origin/main

# The formatter release to download. {{version}} is replaced in url and archiveRoot.
# version may be "latest" to use the newest release of repository.
tool:
  name: pg_format
  version: "5.1"

# The interpreter pg_format needs. The check runs "command args..." and must succeed.
dependency:
  command: perl
  args: ["-v"]
`

// Dependency is the runtime the tool needs. Command is run with Args and must exit 0.
type Dependency struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

func (d Dependency) String() string {
	return strings.Join(append([]string{d.Command}, d.Args...), " ")
}

type Config struct {
	Pattern             string          `yaml:"pattern"`
	FollowSymbolicLinks bool            `yaml:"followSymbolicLinks"`
	ExtraArgs           string          `yaml:"extraArgs"`
	ContinueOnError     bool            `yaml:"continueOnError"`
	Since               string          `yaml:"since"` // git revision; limits formatting to changed files
	Tool                tool.Descriptor `yaml:"tool"`
	Dependency          Dependency      `yaml:"dependency"`

	WorkDir      string `yaml:"-"` // base for relative patterns
	TempDir      string `yaml:"-"`
	ToolCacheDir string `yaml:"-"`
	Arch         string `yaml:"-"`
	APIURL       string `yaml:"-"`
	Token        string `yaml:"-"`
	InActions    bool   `yaml:"-"`
	StepSummary  string `yaml:"-"` // job summary file, empty outside Actions
	Source       string `yaml:"-"` // config file that was read, empty if none
}

// Overrides carries values given on the command line. Nil fields are not set.
type Overrides struct {
	ConfigPath          *string
	Pattern             *string
	FollowSymbolicLinks *bool
	ExtraArgs           *string
	ContinueOnError     *bool
	Since               *string
	ToolVersion         *string
	ToolURL             *string
	WorkDir             *string
}

func defaults() Config {
	return Config{
		Pattern:             DefaultPattern,
		FollowSymbolicLinks: true,
		Tool:                tool.DefaultDescriptor(),
		Dependency:          Dependency{Command: "perl", Args: []string{"-v"}},
	}
}

func New(env fsh.EnvProvider, o Overrides, compiler validator.Compiler) (*Config, error) {
	cfg := defaults()

	if o.WorkDir != nil && *o.WorkDir != "" {
		wd, err := filepath.Abs(*o.WorkDir)
		if err != nil {
			return nil, err
		}
		cfg.WorkDir = wd
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		cfg.WorkDir = wd
	}

	path, err := configPath(env, o, cfg.WorkDir)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err = cfg.load(path, compiler); err != nil {
			return nil, err
		}
		cfg.Source = path
	}

	if err = cfg.applyEnv(env); err != nil {
		return nil, err
	}
	cfg.applyOverrides(o)

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// configPath returns the file to read. An explicitly named file must exist; the default
// file is only read when present.
func configPath(env fsh.EnvProvider, o Overrides, workDir string) (string, error) {
	explicit := env.Get(ConfigEnvVar)
	if o.ConfigPath != nil && *o.ConfigPath != "" {
		explicit = *o.ConfigPath
	}
	if explicit != "" {
		if !filepath.IsAbs(explicit) {
			explicit = filepath.Join(workDir, explicit)
		}
		if _, err := os.Stat(explicit); err != nil {
			return "", &MissingConfigError{Path: explicit}
		}
		return explicit, nil
	}

	def := filepath.Join(workDir, DefaultConfigFile)
	if _, err := os.Stat(def); err == nil {
		return def, nil
	}
	return "", nil
}

func (c *Config) load(path string, compiler validator.Compiler) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw interface{}
	if err = yaml.Unmarshal(data, &raw); err != nil {
		return &InvalidYAMLError{Path: path, Wrapped: err}
	}
	if raw == nil {
		return nil
	}

	if err = validateDocument(raw, compiler); err != nil {
		return &InvalidConfigError{Path: path, Wrapped: err}
	}

	// A configured dependency replaces the default probe, arguments included.
	if m, ok := raw.(map[string]interface{}); ok {
		if _, ok = m["dependency"]; ok {
			c.Dependency = Dependency{}
		}
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return &InvalidYAMLError{Path: path, Wrapped: err}
	}
	c.Tool = c.Tool.WithVersion(c.Tool.Version)
	return nil
}

func validateDocument(raw interface{}, compiler validator.Compiler) error {
	schema, err := validator.ParseJSON(schemaJSON)
	if err != nil {
		return err
	}
	if err = compiler.AddSchema(schemaID, schema); err != nil {
		return err
	}
	v, err := compiler.Compile(schemaID)
	if err != nil {
		return err
	}
	doc, err := validator.NormalizeDocument(raw)
	if err != nil {
		return err
	}
	return v.Validate(doc)
}

func (c *Config) applyEnv(env fsh.EnvProvider) error {
	if v := Input(env, InputPattern); v != "" {
		c.Pattern = v
	}
	if v := Input(env, InputExtraArgs); v != "" {
		c.ExtraArgs = v
	}
	if v := Input(env, InputSince); v != "" {
		c.Since = v
	}
	if err := boolInput(env, InputFollowSymlinks, &c.FollowSymbolicLinks); err != nil {
		return err
	}
	if err := boolInput(env, InputContinueOnError, &c.ContinueOnError); err != nil {
		return err
	}

	c.InActions = env.Get("GITHUB_ACTIONS") == "true"
	c.StepSummary = env.Get("GITHUB_STEP_SUMMARY")

	c.TempDir = env.Get("RUNNER_TEMP")
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}

	c.ToolCacheDir = env.Get("RUNNER_TOOL_CACHE")
	if c.ToolCacheDir == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			dir = c.TempDir
		}
		c.ToolCacheDir = filepath.Join(dir, "pgfa", "tools")
	}

	c.Arch = strings.ToLower(env.Get("RUNNER_ARCH"))
	if c.Arch == "" {
		c.Arch = ArchFor(runtime.GOARCH)
	}

	c.APIURL = strings.TrimSuffix(env.Get("GITHUB_API_URL"), "/")
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}

	c.Token = Input(env, InputToken)
	if c.Token == "" {
		c.Token = env.Get("GITHUB_TOKEN")
	}
	return nil
}

func (c *Config) applyOverrides(o Overrides) {
	if o.Pattern != nil {
		c.Pattern = *o.Pattern
	}
	if o.FollowSymbolicLinks != nil {
		c.FollowSymbolicLinks = *o.FollowSymbolicLinks
	}
	if o.ExtraArgs != nil {
		c.ExtraArgs = *o.ExtraArgs
	}
	if o.ContinueOnError != nil {
		c.ContinueOnError = *o.ContinueOnError
	}
	if o.Since != nil {
		c.Since = *o.Since
	}
	if o.ToolVersion != nil && *o.ToolVersion != "" {
		c.Tool = c.Tool.WithVersion(*o.ToolVersion)
	}
	if o.ToolURL != nil && *o.ToolURL != "" {
		c.Tool.URL = *o.ToolURL
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Pattern) == "" {
		return &MissingPropertyError{Property: "pattern"}
	}
	if c.Dependency.Command == "" {
		return &MissingPropertyError{Property: "dependency.command"}
	}
	if err := c.Tool.Validate(); err != nil {
		return &InvalidToolError{Wrapped: err}
	}
	return validateHTTPURL("GITHUB_API_URL", c.APIURL)
}

// Input returns the trimmed value of action input name. The runner exports inputs as
// INPUT_<NAME> with the name upper-cased; hyphens are kept, so the underscore spelling is
// tried as well.
func Input(env fsh.EnvProvider, name string) string {
	key := "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
	if v := strings.TrimSpace(env.Get(key)); v != "" {
		return v
	}
	if alt := strings.ReplaceAll(key, "-", "_"); alt != key {
		return strings.TrimSpace(env.Get(alt))
	}
	return ""
}

// ParseBool accepts true or false in any letter case.
func ParseBool(name, value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, &InvalidInputError{Name: name, Value: value, Want: "true or false"}
}

func boolInput(env fsh.EnvProvider, name string, dst *bool) error {
	v := Input(env, name)
	if v == "" {
		return nil
	}
	b, err := ParseBool(name, v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

// ArchFor maps a Go architecture name onto the names used by the runner.
func ArchFor(goarch string) string {
	switch goarch {
	case "amd64":
		return "x64"
	case "386":
		return "x86"
	}
	return goarch
}

func validateHTTPURL(prop, val string) error {
	u, err := url.Parse(val)
	if err != nil {
		return &InvalidURLError{Property: prop, Value: val, Wrapped: err}
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return &InvalidURLError{
			Property: prop,
			Value:    val,
			Wrapped:  fmt.Errorf("scheme must be http or https"),
		}
	}
	return nil
}
