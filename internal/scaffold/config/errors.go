package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"

	"github.com/muhammadderic/create-mderic-boilerplates/internal/scaffold/core"
)

var yamlLineCol = regexp.MustCompile(`\[(\d+):(\d+)\]`)

// ErrConfigNotFound creates an error for when the config file doesn't exist
func ErrConfigNotFound(path string) *core.ScaffoldError {
	return &core.ScaffoldError{
		Type:    core.ErrTypeNotFound,
		Message: fmt.Sprintf("config file not found: %s", path),
		Hint:    "Specify an existing file with --config or omit the flag to use defaults.",
	}
}

// ErrConfigPermissionDenied creates an error for when the config file cannot be read
func ErrConfigPermissionDenied(path string, cause error) *core.ScaffoldError {
	return &core.ScaffoldError{
		Type:    core.ErrTypeNotFound,
		Message: fmt.Sprintf("cannot read config file: %s", path),
		Cause:   cause,
		Hint:    "Check file permissions with 'ls -la' and ensure the file is readable.",
	}
}

// ErrConfigEmpty creates an error for when the config file is empty
func ErrConfigEmpty(path string) *core.ScaffoldError {
	return &core.ScaffoldError{
		Type:    core.ErrTypeInvalidInput,
		Message: fmt.Sprintf("config file is empty: %s", path),
		Hint:    "Add a scaffold section or remove the --config flag to use defaults.",
	}
}

// ErrConfigPathEmpty creates an error for when the config path is empty or whitespace
func ErrConfigPathEmpty() *core.ScaffoldError {
	return &core.ScaffoldError{
		Type:    core.ErrTypeInvalidInput,
		Message: "config file path cannot be empty or whitespace",
		Hint:    "Provide a valid file path with --config or omit the flag to use defaults.",
	}
}

// ErrConfigUnsupported creates an error for unknown config file extensions
func ErrConfigUnsupported(path string) *core.ScaffoldError {
	return &core.ScaffoldError{
		Type:    core.ErrTypeInvalidInput,
		Message: fmt.Sprintf("unsupported config format: %s", path),
		Hint:    "Use a .yaml, .yml or .toml file.",
	}
}

// ErrConfigMissingSection creates an error for a file without a scaffold section
func ErrConfigMissingSection(path string) *core.ScaffoldError {
	return &core.ScaffoldError{
		Type:    core.ErrTypeInvalidInput,
		Message: fmt.Sprintf("config file missing required 'scaffold' section: %s", path),
		Hint:    "Add a section, for example:\n  scaffold:\n    repo_url: https://github.com/you/boilerplates.git\n    target_dir: backend",
	}
}

// ErrConfigInvalidYAML creates an error for invalid YAML syntax.
// Line and column are taken from the goccy/go-yaml message when present.
func ErrConfigInvalidYAML(path string, cause error) *core.ScaffoldError {
	message := fmt.Sprintf("invalid YAML syntax in %s", path)
	if cause != nil {
		if m := yamlLineCol.FindStringSubmatch(cause.Error()); len(m) == 3 {
			message = fmt.Sprintf("invalid YAML syntax in %s at line %s, column %s", path, m[1], m[2])
		}
	}

	return &core.ScaffoldError{
		Type:    core.ErrTypeInvalidInput,
		Message: message,
		Cause:   cause,
		Hint:    "Check for proper indentation, missing colons, or unclosed quotes near the indicated location.",
	}
}

// ErrConfigInvalidTOML creates an error for invalid TOML syntax
func ErrConfigInvalidTOML(path string, cause error) *core.ScaffoldError {
	message := fmt.Sprintf("invalid TOML syntax in %s", path)
	var perr toml.ParseError
	if errors.As(cause, &perr) {
		message = fmt.Sprintf("invalid TOML syntax in %s at line %d", path, perr.Position.Line)
	}

	return &core.ScaffoldError{
		Type:    core.ErrTypeInvalidInput,
		Message: message,
		Cause:   cause,
		Hint:    "Check for unquoted strings or a missing [scaffold] table header.",
	}
}

// WrapReadError wraps an os error from reading a config file
func WrapReadError(path string, err error) *core.ScaffoldError {
	if os.IsNotExist(err) {
		return ErrConfigNotFound(path)
	}
	if os.IsPermission(err) {
		return ErrConfigPermissionDenied(path, err)
	}
	return &core.ScaffoldError{
		Type:    core.ErrTypeFilesystem,
		Message: fmt.Sprintf("failed to read config file: %s", path),
		Cause:   err,
		Hint:    "Check that the file exists and is readable.",
	}
}
