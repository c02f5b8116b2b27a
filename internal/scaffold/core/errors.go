package core

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for better error handling
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeInvalidInput
	ErrTypeNotFound
	ErrTypeExternal
	ErrTypeFilesystem
	ErrTypeCleanup
)

// ScaffoldError provides structured error information
type ScaffoldError struct {
	Type    ErrorType
	Message string
	Cause   error
	Hint    string
}

func (e *ScaffoldError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ScaffoldError) Unwrap() error {
	return e.Cause
}

// WithHint adds a helpful hint to the error
func (e *ScaffoldError) WithHint(hint string) *ScaffoldError {
	e.Hint = hint
	return e
}

// FormatWithHint returns the error message with hint if available
func (e *ScaffoldError) FormatWithHint() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s\n  Hint: %s", e.Error(), e.Hint)
	}
	return e.Error()
}

// TemplateNotFoundError is returned when the requested boilerplate is not a
// directory of the fetched collection. It is a user error, not a fault.
type TemplateNotFoundError struct {
	Name      string
	Available []string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("boilerplate %q not found", e.Name)
}

// CleanupError reports a staging directory that could not be removed.
type CleanupError struct {
	Path  string
	Cause error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("failed to clean up %s: %v", e.Path, e.Cause)
}

func (e *CleanupError) Unwrap() error {
	return e.Cause
}

// RemoveRetryError is returned once every removal attempt failed with a
// retryable error.
type RemoveRetryError struct {
	Path     string
	Attempts int
	Last     error
}

func (e *RemoveRetryError) Error() string {
	return fmt.Sprintf("failed to remove directory after %d attempts: %s", e.Attempts, e.Path)
}

func (e *RemoveRetryError) Unwrap() error {
	return e.Last
}

// ErrInvalidTemplateName creates an error for names that are not a single path element
func ErrInvalidTemplateName(name string) *ScaffoldError {
	msg := fmt.Sprintf("invalid boilerplate name: %q", name)
	if strings.TrimSpace(name) == "" {
		msg = "boilerplate name cannot be empty"
	}
	return &ScaffoldError{
		Type:    ErrTypeInvalidInput,
		Message: msg,
		Hint:    "Pass the name of a single boilerplate directory, e.g. express-api.",
	}
}

// ErrUnsafeStaging creates an error for a staging path that overlaps the
// working or target directory
func ErrUnsafeStaging(path, reason string) *ScaffoldError {
	return &ScaffoldError{
		Type:    ErrTypeInvalidInput,
		Message: fmt.Sprintf("cannot use %s as the temporary clone folder: %s", path, reason),
		Hint:    "Pick a new folder name for --staging, or omit it to use " + DefaultStagingDir + ".",
	}
}

// ErrStagingExists creates an error for a staging path that is already in use
func ErrStagingExists(path string) *ScaffoldError {
	return &ScaffoldError{
		Type:    ErrTypeInvalidInput,
		Message: fmt.Sprintf("temporary clone folder already exists and is not empty: %s", path),
		Hint:    "It may be left over from an interrupted run. Remove it and try again.",
	}
}

// ErrCloneFailed creates an error for a failed fetch of the template collection
func ErrCloneFailed(url string, cause error) *ScaffoldError {
	return &ScaffoldError{
		Type:    ErrTypeExternal,
		Message: fmt.Sprintf("failed to clone %s", url),
		Cause:   cause,
		Hint:    "Check your network connection and that git is installed and on PATH.",
	}
}

// ErrCopyFailed creates an error for a failed copy into the target directory
func ErrCopyFailed(src, dst string, cause error) *ScaffoldError {
	return &ScaffoldError{
		Type:    ErrTypeFilesystem,
		Message: fmt.Sprintf("failed to copy %s to %s", src, dst),
		Cause:   cause,
	}
}

// ErrTargetFailed creates an error for a target directory that cannot be created
func ErrTargetFailed(path string, cause error) *ScaffoldError {
	return &ScaffoldError{
		Type:    ErrTypeFilesystem,
		Message: fmt.Sprintf("failed to create target directory %s", path),
		Cause:   cause,
		Hint:    "Make sure the path is not an existing file and that you have write permission.",
	}
}

// FormatError formats an error with user-friendly output
func FormatError(err error) string {
	var scErr *ScaffoldError
	if errors.As(err, &scErr) {
		return scErr.FormatWithHint()
	}
	return err.Error()
}

// SplitErrors flattens errors produced by errors.Join so each one can be
// reported on its own.
func SplitErrors(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, SplitErrors(e)...)
		}
		return out
	}
	return []error{err}
}
