// Package core implements the scaffolding workflow: fetch the template
// collection into a staging directory, locate one template, merge it into
// the target directory and remove the staging directory on every exit path.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// DefaultRepoURL is the template collection cloned when none is configured
	DefaultRepoURL = "https://github.com/muhammadderic/mderic-boilerplates.git"
	// DefaultStagingDir is the staging directory name under the working directory
	DefaultStagingDir = "__mderic-boilerplates-tmp__"
	// DefaultTargetDir is the target directory name under the working directory
	DefaultTargetDir = "backend"
)

// Options holds everything a single run needs. Nothing is read from the
// process environment once Options are built.
type Options struct {
	WorkDir    string
	RepoURL    string
	Branch     string
	StagingDir string
	TargetDir  string
	Template   string
	Exclude    []string
}

// Result describes a successful run
type Result struct {
	Template     string    `json:"template"`
	TemplatePath string    `json:"template_path,omitempty"`
	TargetDir    string    `json:"target_dir"`
	Stats        CopyStats `json:"stats"`
}

// Scaffolder runs the fetch, locate, copy, cleanup workflow.
type Scaffolder struct {
	Fetcher Fetcher
	Copier  Copier
	Remover *Remover

	// Out receives progress lines. Nil or Quiet silences them.
	Out      io.Writer
	Quiet    bool
	Decorate bool
}

// NewScaffolder creates a Scaffolder backed by git and the local filesystem.
func NewScaffolder(branch string, out, errOut io.Writer) *Scaffolder {
	return &Scaffolder{
		Fetcher: NewGitFetcher(branch, out, errOut),
		Copier:  NewTreeCopier(),
		Remover: NewRemover(),
		Out:     out,
	}
}

// ValidateTemplateName checks that name is usable as a single directory name.
func ValidateTemplateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidTemplateName(name)
	}
	if name == "." || name == ".." || strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		return ErrInvalidTemplateName(name)
	}
	return nil
}

// resolve fills defaults and turns relative directory names into paths
// under the working directory.
func (o Options) resolve() (Options, error) {
	if o.WorkDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return o, fmt.Errorf("failed to get working directory: %w", err)
		}
		o.WorkDir = cwd
	}
	if o.RepoURL == "" {
		o.RepoURL = DefaultRepoURL
	}
	if o.StagingDir == "" {
		o.StagingDir = DefaultStagingDir
	}
	if o.TargetDir == "" {
		o.TargetDir = DefaultTargetDir
	}
	if !filepath.IsAbs(o.StagingDir) {
		o.StagingDir = filepath.Join(o.WorkDir, o.StagingDir)
	}
	if !filepath.IsAbs(o.TargetDir) {
		o.TargetDir = filepath.Join(o.WorkDir, o.TargetDir)
	}
	o.WorkDir = filepath.Clean(o.WorkDir)
	o.StagingDir = filepath.Clean(o.StagingDir)
	o.TargetDir = filepath.Clean(o.TargetDir)

	if err := checkStagingPath(o.StagingDir, o.WorkDir, o.TargetDir); err != nil {
		return o, err
	}
	return o, nil
}

// checkStagingPath rejects staging locations whose removal would take the
// working or target directory with it, or that live inside the target.
func checkStagingPath(staging, workDir, target string) error {
	switch {
	case staging == workDir || isWithin(staging, workDir):
		return ErrUnsafeStaging(staging, "it contains the working directory")
	case staging == target || isWithin(staging, target):
		return ErrUnsafeStaging(staging, "it contains the target directory")
	case isWithin(target, staging):
		return ErrUnsafeStaging(staging, "it is inside the target directory")
	}
	return nil
}

// isWithin reports whether path is strictly below dir. Both must be clean.
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// checkStagingEmpty refuses to reuse a staging directory that already has
// content. Only directories this run created are ever removed.
func checkStagingEmpty(staging string) error {
	info, err := os.Lstat(staging)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", staging, err)
	}
	if !info.IsDir() {
		return ErrStagingExists(staging)
	}
	entries, err := os.ReadDir(staging)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", staging, err)
	}
	if len(entries) > 0 {
		return ErrStagingExists(staging)
	}
	return nil
}

// Run executes one scaffolding run. Once the fetch has started, the staging
// directory is removed before Run returns, whatever the outcome. A cleanup
// failure that follows another error is joined to it as a *CleanupError.
func (s *Scaffolder) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := ValidateTemplateName(opts.Template); err != nil {
		return nil, err
	}

	opts, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	staging := opts.StagingDir
	if err := checkStagingEmpty(staging); err != nil {
		return nil, err
	}

	// 1. Fetch
	s.progress("🔄", "Cloning boilerplates...")
	if err := s.Fetcher.Fetch(ctx, opts.RepoURL, staging); err != nil {
		return nil, s.fail(staging, ErrCloneFailed(opts.RepoURL, err))
	}

	// 2. Locate
	templatePath := filepath.Join(staging, opts.Template)
	info, err := os.Stat(templatePath)
	if err != nil || !info.IsDir() {
		if err != nil && !os.IsNotExist(err) {
			return nil, s.fail(staging, fmt.Errorf("failed to stat %s: %w", templatePath, err))
		}
		available, listErr := ListTemplates(staging)
		if listErr != nil {
			return nil, s.fail(staging, listErr)
		}
		return nil, s.fail(staging, &TemplateNotFoundError{Name: opts.Template, Available: available})
	}

	// 3. Prepare target
	if err := os.MkdirAll(opts.TargetDir, 0755); err != nil {
		return nil, s.fail(staging, ErrTargetFailed(opts.TargetDir, err))
	}

	// 4. Copy
	s.progress("📁", "Copying boilerplate %q to %s folder...", opts.Template, filepath.Base(opts.TargetDir))
	copyOpts := MergeOptions()
	copyOpts.Exclude = NewExcludeMatcher(opts.Exclude)
	stats, err := s.Copier.CopyTree(templatePath, opts.TargetDir, copyOpts)
	if err != nil {
		return nil, s.fail(staging, ErrCopyFailed(templatePath, opts.TargetDir, err))
	}

	// 5. Cleanup
	if err := s.Remover.Remove(staging); err != nil {
		return nil, &CleanupError{Path: staging, Cause: err}
	}

	result := &Result{
		Template:     opts.Template,
		TemplatePath: templatePath,
		TargetDir:    opts.TargetDir,
	}
	if stats != nil {
		result.Stats = *stats
	}
	return result, nil
}

// fail performs best-effort cleanup after primary and reports both when the
// cleanup fails too.
func (s *Scaffolder) fail(staging string, primary error) error {
	if err := s.Remover.Remove(staging); err != nil {
		return errors.Join(primary, &CleanupError{Path: staging, Cause: err})
	}
	return primary
}

func (s *Scaffolder) progress(mark, format string, args ...interface{}) {
	if s.Out == nil || s.Quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if s.Decorate {
		msg = mark + " " + msg
	}
	fmt.Fprintln(s.Out, msg)
}

// ListTemplates returns the names of the immediate children of dir, sorted.
func ListTemplates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list boilerplates: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
