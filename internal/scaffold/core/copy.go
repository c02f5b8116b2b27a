package core

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Copier copies a directory tree into a destination directory.
type Copier interface {
	CopyTree(src, dst string, opts CopyOptions) (*CopyStats, error)
}

// CopyOptions controls conflict handling while copying
type CopyOptions struct {
	// Overwrite replaces files that already exist at the destination.
	Overwrite bool
	// ErrorOnExist fails on an existing file when Overwrite is false.
	// Without it existing files are skipped.
	ErrorOnExist bool
	// Exclude skips matching paths. Nil copies everything.
	Exclude *ExcludeMatcher
}

// MergeOptions is the policy used for scaffolding: overwrite collisions,
// keep everything else already in the destination.
func MergeOptions() CopyOptions {
	return CopyOptions{Overwrite: true, ErrorOnExist: false}
}

// CopyStats summarizes a finished copy
type CopyStats struct {
	Files    int   `json:"files"`
	Dirs     int   `json:"dirs"`
	Symlinks int   `json:"symlinks,omitempty"`
	Skipped  int   `json:"skipped,omitempty"`
	Excluded int   `json:"excluded,omitempty"`
	Bytes    int64 `json:"bytes"`
}

// TreeCopier is the filesystem implementation of Copier.
type TreeCopier struct{}

// NewTreeCopier creates a new TreeCopier
func NewTreeCopier() *TreeCopier {
	return &TreeCopier{}
}

// CopyTree copies the contents of src into dst, creating dst if needed.
// Entries already in dst that are not part of src are left untouched.
func (c *TreeCopier) CopyTree(src, dst string, opts CopyOptions) (*CopyStats, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("source does not exist: %w", err)
	}
	if !srcInfo.IsDir() {
		return nil, fmt.Errorf("source is not a directory: %s", src)
	}

	stats := &CopyStats{}
	if err := copyDir(src, dst, ".", opts, stats); err != nil {
		return stats, err
	}
	return stats, nil
}

func copyDir(src, dst, rel string, opts CopyOptions, stats *CopyStats) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		relPath := filepath.Join(rel, entry.Name())

		if opts.Exclude.Excluded(relPath, entry.IsDir()) {
			stats.Excluded++
			continue
		}

		switch {
		case entry.Type()&os.ModeSymlink != 0:
			copied, err := copySymlink(srcPath, dstPath, opts)
			if err != nil {
				return err
			}
			if copied {
				stats.Symlinks++
			} else {
				stats.Skipped++
			}
		case entry.IsDir():
			if err := copyDir(srcPath, dstPath, relPath, opts, stats); err != nil {
				return err
			}
			stats.Dirs++
		default:
			n, copied, err := copyFile(srcPath, dstPath, opts)
			if err != nil {
				return err
			}
			if copied {
				stats.Files++
				stats.Bytes += n
			} else {
				stats.Skipped++
			}
		}
	}

	return nil
}

// checkExisting decides what to do with an existing destination entry.
// It returns proceed=false when the entry must be kept.
func checkExisting(dst string, opts CopyOptions) (proceed bool, err error) {
	info, err := os.Lstat(dst)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if !opts.Overwrite {
		if opts.ErrorOnExist {
			return false, fmt.Errorf("destination already exists: %s", dst)
		}
		return false, nil
	}
	if info.IsDir() {
		return false, fmt.Errorf("cannot overwrite directory with file: %s", dst)
	}
	// Replace rather than truncate: the old entry may be read-only or a
	// symlink that must not be written through.
	if err := os.Remove(dst); err != nil {
		return false, err
	}
	return true, nil
}

func copyFile(src, dst string, opts CopyOptions) (int64, bool, error) {
	proceed, err := checkExisting(dst, opts)
	if err != nil || !proceed {
		return 0, false, err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return 0, false, err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return 0, false, err
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return 0, false, err
	}

	n, err := io.Copy(dstFile, srcFile)
	if err != nil {
		dstFile.Close()
		return n, false, err
	}
	if err := dstFile.Close(); err != nil {
		return n, false, err
	}

	// Copy permissions
	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return n, false, err
	}
	return n, true, nil
}

func copySymlink(src, dst string, opts CopyOptions) (bool, error) {
	proceed, err := checkExisting(dst, opts)
	if err != nil || !proceed {
		return false, err
	}

	target, err := os.Readlink(src)
	if err != nil {
		return false, err
	}
	if err := os.Symlink(target, dst); err != nil {
		return false, err
	}
	return true, nil
}
