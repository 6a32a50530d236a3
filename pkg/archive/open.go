package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"io"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	derrors "github.com/matzehuels/depconv/pkg/errors"
)

// maxEntrySize bounds a single archive member read into memory. Larger
// members make the archive invalid.
var maxEntrySize int64 = 64 << 20

type kind int

const (
	kindNone kind = iota
	kindZip
	kindTar
	kindTarGz
)

func archiveKind(p string) kind {
	name := strings.ToLower(p)
	switch {
	case strings.HasSuffix(name, ".zip"), strings.HasSuffix(name, ".whl"):
		return kindZip
	case strings.HasSuffix(name, ".tar"):
		return kindTar
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"), strings.HasSuffix(name, ".gz"):
		return kindTarGz
	}
	return kindNone
}

// IsArchive reports whether p has an archive extension that
// [OpenArchive] can read.
func IsArchive(p string) bool {
	return archiveKind(p) != kindNone
}

// Open opens p as a directory tree or, when it is a regular file with an
// archive extension, as an archive tree.
func Open(p string) (*FS, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, statError(p, err)
	}
	if info.IsDir() {
		return OpenDir(p)
	}
	return OpenArchive(p)
}

// OpenDir returns a tree rooted at the directory dir.
func OpenDir(dir string) (*FS, error) {
	if err := derrors.ValidatePath(dir); err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, statError(dir, err)
	}
	if !info.IsDir() {
		return nil, derrors.New(derrors.ErrCodeInvalidPath, "%s is not a directory", dir)
	}
	return &FS{fs: osfs.New(dir), source: dir}, nil
}

// OpenArchive reads the archive at p into memory and returns a tree over
// its members. Member paths are cleaned; members that would escape the
// archive root are skipped.
func OpenArchive(p string) (*FS, error) {
	if err := derrors.ValidatePath(p); err != nil {
		return nil, err
	}
	k := archiveKind(p)
	if k == kindNone {
		return nil, derrors.New(derrors.ErrCodeUnsupported, "unsupported archive type: %s", p)
	}

	t := &FS{fs: memfs.New(), source: p}
	var err error
	switch k {
	case kindZip:
		err = t.loadZip(p)
	default:
		err = t.loadTar(p, k == kindTarGz)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// NewMemory returns an in-memory tree holding files, keyed by
// slash-separated path.
func NewMemory(files map[string][]byte) (*FS, error) {
	t := &FS{fs: memfs.New(), source: "memory"}
	for name, data := range files {
		if err := t.add(name, data); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *FS) loadZip(p string) error {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return openError(p, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if err := t.addZipMember(f); err != nil {
			return derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "read %s from %s", f.Name, p)
		}
	}
	return nil
}

func (t *FS) addZipMember(f *zip.File) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	data, err := readEntry(rc, maxEntrySize)
	if err != nil {
		return err
	}
	return t.add(f.Name, data)
}

func (t *FS) loadTar(p string, gz bool) error {
	f, err := os.Open(p)
	if err != nil {
		return openError(p, err)
	}
	defer f.Close()

	var r io.Reader = f
	if gz {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "read gzip stream %s", p)
		}
		defer zr.Close()
		r = zr
	}

	tr := tar.NewReader(r)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "read tar %s", p)
		}
		if h.Typeflag != tar.TypeReg {
			continue
		}
		data, err := readEntry(tr, maxEntrySize)
		if err != nil {
			return derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "read %s from %s", h.Name, p)
		}
		if err := t.add(h.Name, data); err != nil {
			return err
		}
	}
}

// readEntry reads r fully and fails when it holds more than limit bytes.
func readEntry(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, derrors.New(derrors.ErrCodeInvalidFormat, "entry exceeds %d bytes", limit)
	}
	return data, nil
}

func (t *FS) add(name string, data []byte) error {
	name = strings.ReplaceAll(name, "\\", "/")
	if slices.Contains(strings.Split(name, "/"), "..") {
		return nil
	}
	clean := path.Clean("/" + name)
	if clean == "/" {
		return nil
	}
	if err := util.WriteFile(t.fs, clean, data, 0o644); err != nil {
		return derrors.Wrap(derrors.ErrCodeInternal, err, "store %s", name)
	}
	return nil
}

func statError(p string, err error) error {
	if os.IsNotExist(err) {
		return derrors.Wrap(derrors.ErrCodeFileNotFound, err, "%s does not exist", p)
	}
	return derrors.Wrap(derrors.ErrCodeInvalidPath, err, "stat %s", p)
}

func openError(p string, err error) error {
	if os.IsNotExist(err) {
		return derrors.Wrap(derrors.ErrCodeFileNotFound, err, "%s does not exist", p)
	}
	return derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "open archive %s", p)
}
