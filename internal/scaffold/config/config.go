// Package config provides optional configuration file support for the
// scaffolder. Files are YAML (a "scaffold:" section) or TOML (a [scaffold]
// table), chosen by extension.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/muhammadderic/create-mderic-boilerplates/internal/scaffold/core"
)

// Config holds the settings that used to be hard-coded in the tool.
type Config struct {
	RepoURL    string   `yaml:"repo_url" toml:"repo_url"`
	Branch     string   `yaml:"branch" toml:"branch"`
	TargetDir  string   `yaml:"target_dir" toml:"target_dir"`
	StagingDir string   `yaml:"staging_dir" toml:"staging_dir"`
	Exclude    []string `yaml:"exclude" toml:"exclude"`
}

// configWrapper is used to parse the "scaffold" section from a file.
type configWrapper struct {
	Scaffold *Config `yaml:"scaffold" toml:"scaffold"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		RepoURL:    core.DefaultRepoURL,
		TargetDir:  core.DefaultTargetDir,
		StagingDir: core.DefaultStagingDir,
	}
}

// LoadConfig loads configuration from a YAML or TOML file.
// Fields missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return nil, ErrConfigPathEmpty()
	}

	format := strings.ToLower(filepath.Ext(trimmedPath))
	if format != ".yaml" && format != ".yml" && format != ".toml" {
		return nil, ErrConfigUnsupported(trimmedPath)
	}

	data, err := os.ReadFile(trimmedPath)
	if err != nil {
		return nil, WrapReadError(trimmedPath, err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrConfigEmpty(trimmedPath)
	}

	var wrapper configWrapper
	if format == ".toml" {
		if _, err := toml.Decode(string(data), &wrapper); err != nil {
			return nil, ErrConfigInvalidTOML(trimmedPath, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &wrapper); err != nil {
			return nil, ErrConfigInvalidYAML(trimmedPath, err)
		}
	}

	if wrapper.Scaffold == nil {
		return nil, ErrConfigMissingSection(trimmedPath)
	}
	return wrapper.Scaffold.withDefaults(), nil
}

// withDefaults fills fields left empty by the file with built-in values
func (c *Config) withDefaults() *Config {
	d := Default()
	c.RepoURL = ResolveValue(c.RepoURL, d.RepoURL)
	c.TargetDir = ResolveValue(c.TargetDir, d.TargetDir)
	c.StagingDir = ResolveValue(c.StagingDir, d.StagingDir)
	return c
}

// ResolveValue returns the explicit value if non-empty, otherwise the config value.
// This implements the precedence: explicit > config > default.
func ResolveValue(explicit, configValue string) string {
	if explicit != "" {
		return explicit
	}
	return configValue
}

// ResolveList returns explicit if it has entries, otherwise configValue.
func ResolveList(explicit, configValue []string) []string {
	if len(explicit) > 0 {
		return explicit
	}
	return configValue
}

// Options merges cfg with explicit command-line values into run options.
func (c *Config) Options(template, workDir string, explicit Config) core.Options {
	return core.Options{
		WorkDir:    workDir,
		RepoURL:    ResolveValue(explicit.RepoURL, c.RepoURL),
		Branch:     ResolveValue(explicit.Branch, c.Branch),
		StagingDir: ResolveValue(explicit.StagingDir, c.StagingDir),
		TargetDir:  ResolveValue(explicit.TargetDir, c.TargetDir),
		Template:   template,
		Exclude:    ResolveList(explicit.Exclude, c.Exclude),
	}
}
