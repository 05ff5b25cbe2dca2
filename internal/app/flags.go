package app

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/andyballingall/pgformat-action/internal/config"
	"github.com/andyballingall/pgformat-action/internal/report"
)

// pathValue implements pflag.Value to provide a custom type name in help text.
type pathValue string

func (p *pathValue) String() string {
	return string(*p)
}

func (p *pathValue) Set(v string) error {
	*p = pathValue(v)
	return nil
}

func (p *pathValue) Type() string {
	return "<path>"
}

// versionValue accepts a release number such as 5.1 or v5.1, or "latest".
type versionValue string

func (v *versionValue) String() string {
	return string(*v)
}

func (v *versionValue) Set(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " /\\") {
		return fmt.Errorf("must be a release number such as 5.1, or 'latest'")
	}
	*v = versionValue(s)
	return nil
}

func (v *versionValue) Type() string {
	return "<version>"
}

// reportValue selects the report printed after a format run. Empty means no report.
type reportValue string

func (r *reportValue) String() string {
	return string(*r)
}

func (r *reportValue) Set(v string) error {
	switch v {
	case "", report.FormatText, report.FormatJSON, report.FormatMarkdown:
		*r = reportValue(v)
		return nil
	}
	return fmt.Errorf("must be one of %s, %s, %s", report.FormatText, report.FormatJSON, report.FormatMarkdown)
}

func (r *reportValue) Type() string {
	return "<format>"
}

// boolValue is a pflag.Value that accepts true or false in any letter case, the same
// values the action inputs accept.
type boolValue bool

func (b *boolValue) String() string {
	return fmt.Sprintf("%t", bool(*b))
}

func (b *boolValue) Set(s string) error {
	v, err := config.ParseBool("flag", s)
	if err != nil {
		return fmt.Errorf("must be 'true' or 'false'")
	}
	*b = boolValue(v)
	return nil
}

func (b *boolValue) Type() string {
	return "<bool>"
}

// configFlags are the flags that override configuration values. They are persistent on
// the root command so every subcommand resolves the same configuration.
type configFlags struct {
	configPath      pathValue
	workDir         pathValue
	pattern         string
	followSymlinks  boolValue
	extraArgs       string
	continueOnError boolValue
	since           string
	toolVersion     versionValue
	toolURL         string
}

func (f *configFlags) register(fs *pflag.FlagSet) {
	fs.Var(&f.configPath, "config", "Configuration file (default "+config.DefaultConfigFile+" if present)")
	fs.Var(&f.workDir, "workdir", "Directory relative patterns are resolved against (default current directory)")
	fs.StringVarP(&f.pattern, "pattern", "p", "", "Glob patterns of the files to format, one per line (default "+config.DefaultPattern+")")
	f.followSymlinks = true
	fs.Var(&f.followSymlinks, "follow-symbolic-links", "Traverse symbolic links to directories")
	fs.StringVarP(&f.extraArgs, "extra-args", "a", "", "Extra pg_format arguments, placed after -i")
	fs.VarP(&f.continueOnError, "continue-on-error", "C",
		"Format every file even if one fails (default is to stop on the first failure)")
	fs.StringVar(&f.since, "since", "", "Only format files changed since this git revision")
	fs.Var(&f.toolVersion, "tool-version", "pgFormatter release to use, or 'latest'")
	fs.StringVar(&f.toolURL, "tool-url", "", "Archive URL of the release; {{version}} is replaced")

	fs.Lookup("follow-symbolic-links").NoOptDefVal = "true"
	fs.Lookup("continue-on-error").NoOptDefVal = "true"
}

// overrides returns the values of the flags that were given on the command line.
func (f *configFlags) overrides(fs *pflag.FlagSet) config.Overrides {
	var o config.Overrides
	if fs.Changed("config") {
		o.ConfigPath = ptr(f.configPath.String())
	}
	if fs.Changed("workdir") {
		o.WorkDir = ptr(f.workDir.String())
	}
	if fs.Changed("pattern") {
		o.Pattern = ptr(f.pattern)
	}
	if fs.Changed("follow-symbolic-links") {
		o.FollowSymbolicLinks = ptr(bool(f.followSymlinks))
	}
	if fs.Changed("extra-args") {
		o.ExtraArgs = ptr(f.extraArgs)
	}
	if fs.Changed("continue-on-error") {
		o.ContinueOnError = ptr(bool(f.continueOnError))
	}
	if fs.Changed("since") {
		o.Since = ptr(f.since)
	}
	if fs.Changed("tool-version") {
		o.ToolVersion = ptr(f.toolVersion.String())
	}
	if fs.Changed("tool-url") {
		o.ToolURL = ptr(f.toolURL)
	}
	return o
}

func ptr[T any](v T) *T {
	return &v
}
