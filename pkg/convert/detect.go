package convert

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/depconv/pkg/archive"
	derrors "github.com/matzehuels/depconv/pkg/errors"
)

// supporter is implemented by converters that recognize their manifest
// file names.
type supporter interface {
	Supports(name string) bool
}

// Detect guesses the format of the manifest at p.
//
// Directories named *.egg-info or *.dist-info map to [EggInfo] and [Wheel].
// Other directories are probed for pyproject.toml and requirements files
// and otherwise assumed to contain an egg-info tree. Files are matched by
// name; archives that are not wheels are treated as source distributions.
func Detect(p string) (Format, error) {
	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, derrors.Wrap(derrors.ErrCodeFileNotFound, err, "%s does not exist", p)
		}
		return 0, derrors.Wrap(derrors.ErrCodeInvalidPath, err, "stat %s", p)
	}
	name := filepath.Base(p)

	if info.IsDir() {
		switch {
		case strings.HasSuffix(name, ".egg-info"):
			return EggInfo, nil
		case strings.HasSuffix(name, ".dist-info"):
			return Wheel, nil
		}
		if fileExists(filepath.Join(p, "pyproject.toml")) {
			return sniffPyProject(filepath.Join(p, "pyproject.toml"))
		}
		if fileExists(filepath.Join(p, "requirements.lock")) {
			return PipLock, nil
		}
		if fileExists(filepath.Join(p, "requirements.txt")) {
			return Pip, nil
		}
		return EggInfo, nil
	}

	if name == "pyproject.toml" {
		return sniffPyProject(p)
	}
	for _, f := range Formats() {
		c, _ := New(f)
		if s, ok := c.(supporter); ok && s.Supports(name) {
			return f, nil
		}
	}
	if archive.IsArchive(name) {
		return EggInfo, nil
	}
	return 0, derrors.New(derrors.ErrCodeUnsupported, "cannot detect manifest format of %s", name)
}

// sniffPyProject distinguishes a Poetry project from a PEP 621 one.
// [tool.poetry] wins when both tables are present.
func sniffPyProject(p string) (Format, error) {
	var doc struct {
		Tool struct {
			Poetry map[string]any `toml:"poetry"`
		} `toml:"tool"`
		Project map[string]any `toml:"project"`
	}
	if _, err := toml.DecodeFile(p, &doc); err != nil {
		return 0, derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "parse %s", p)
	}
	switch {
	case doc.Tool.Poetry != nil:
		return Poetry, nil
	case doc.Project != nil:
		return PyProject, nil
	}
	return 0, derrors.New(derrors.ErrCodeUnsupported, "%s has neither [tool.poetry] nor [project]", p)
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
