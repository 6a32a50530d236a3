// Package archive exposes directories and package archives as read-only
// trees that can be searched with globstar patterns.
//
// Directories are served straight from disk through go-billy's osfs.
// Archives (.zip, .whl, .tar, .tar.gz, .tgz) are unpacked into an in-memory
// memfs when opened, so the archive file handle is released before
// [OpenArchive] returns and every later read is served from memory.
package archive

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	derrors "github.com/matzehuels/depconv/pkg/errors"
)

// Tree is the capability converters need from a source location: finding
// entries by pattern and reading files. Paths are slash-separated and
// relative to the tree root.
type Tree interface {
	// Glob returns the sorted paths of all files and directories matching
	// pattern. The pattern may contain a single "**" segment.
	Glob(pattern string) ([]string, error)
	// ReadFile returns the content of the named file.
	ReadFile(name string) ([]byte, error)
	// IsFile reports whether name is a regular file.
	IsFile(name string) bool
	// Join joins path elements with the tree's separator.
	Join(elem ...string) string
}

// FS is a [Tree] backed by a billy filesystem.
type FS struct {
	fs     billy.Filesystem
	source string
}

var _ Tree = (*FS)(nil)

// Source returns the directory or archive path the tree was opened from.
func (t *FS) Source() string { return t.source }

// Join joins path elements into a slash-separated relative path.
func (t *FS) Join(elem ...string) string { return path.Join(elem...) }

// Glob walks the tree and returns every entry matching pattern. Each call
// performs a fresh walk.
func (t *FS) Glob(pattern string) ([]string, error) {
	if err := validatePattern(pattern); err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "glob %q", pattern)
	}

	var matches []string
	err := util.Walk(t.fs, "/", func(p string, _ os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(filepath.ToSlash(p), "/")
		if rel == "" {
			return nil
		}
		ok, err := Match(pattern, rel)
		if err != nil {
			return err
		}
		if ok {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		// An archive without entries has no root directory in memory.
		if os.IsNotExist(err) && len(matches) == 0 {
			return nil, nil
		}
		return nil, derrors.Wrap(derrors.ErrCodeInternal, err, "walk %s", t.source)
	}
	sort.Strings(matches)
	return matches, nil
}

// ReadFile reads the named file. A missing file yields an error with code
// [derrors.ErrCodeFileNotFound].
func (t *FS) ReadFile(name string) ([]byte, error) {
	f, err := t.fs.Open("/" + strings.TrimPrefix(name, "/"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, derrors.Wrap(derrors.ErrCodeFileNotFound, err, "%s not found in %s", name, t.source)
		}
		return nil, derrors.Wrap(derrors.ErrCodeInternal, err, "open %s", name)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInternal, err, "read %s", name)
	}
	return data, nil
}

// IsFile reports whether name is present in the tree and is not a directory.
func (t *FS) IsFile(name string) bool {
	fi, err := t.fs.Stat("/" + strings.TrimPrefix(name, "/"))
	return err == nil && fi.Mode().IsRegular()
}

// Exists reports whether name is present in the tree.
func (t *FS) Exists(name string) bool {
	_, err := t.fs.Stat("/" + strings.TrimPrefix(name, "/"))
	return err == nil
}
