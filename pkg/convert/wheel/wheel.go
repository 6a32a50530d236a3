// Package wheel converts wheel metadata: the METADATA file of a *.dist-info
// directory, either installed or packed inside a .whl archive.
package wheel

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/depconv/pkg/archive"
	"github.com/matzehuels/depconv/pkg/coremeta"
	derrors "github.com/matzehuels/depconv/pkg/errors"
	"github.com/matzehuels/depconv/pkg/project"
)

const (
	dirSuffix    = ".dist-info"
	metadataFile = "METADATA"
)

// Converter reads and writes wheel METADATA.
type Converter struct {
	// OmitReadme disables writing the long description body.
	OmitReadme bool
}

// New returns a wheel converter.
func New() *Converter { return &Converter{} }

// Lock reports false.
func (c *Converter) Lock() bool { return false }

// Supports reports whether name is a wheel, a dist-info directory or a
// METADATA file.
func (c *Converter) Supports(name string) bool {
	return name == metadataFile || strings.HasSuffix(name, ".whl") || strings.HasSuffix(name, dirSuffix)
}

// Load reads METADATA from a *.dist-info directory, from the single
// dist-info directory below another directory or inside a .whl archive,
// or from a flat METADATA file.
func (c *Converter) Load(path string) (*project.Root, error) {
	if err := derrors.ValidatePath(path); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, derrors.Wrap(derrors.ErrCodeFileNotFound, err, "%s does not exist", path)
		}
		return nil, derrors.Wrap(derrors.ErrCodeInvalidPath, err, "stat %s", path)
	}

	var (
		tree *archive.FS
		dir  string
	)
	switch {
	case info.IsDir() && strings.HasSuffix(filepath.Base(path), dirSuffix):
		if tree, err = archive.OpenDir(path); err != nil {
			return nil, err
		}
	case info.IsDir():
		if tree, err = archive.OpenDir(path); err != nil {
			return nil, err
		}
		if dir, err = single(tree, "**/*"+dirSuffix); err != nil {
			return nil, err
		}
	case archive.IsArchive(path):
		if tree, err = archive.OpenArchive(path); err != nil {
			return nil, err
		}
		if dir, err = single(tree, "*"+dirSuffix); err != nil {
			return nil, err
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return c.Loads(string(data))
	}

	data, err := tree.ReadFile(tree.Join(dir, metadataFile))
	if err != nil {
		return nil, err
	}
	return c.Loads(string(data))
}

func single(tree archive.Tree, pattern string) (string, error) {
	found, err := tree.Glob(pattern)
	if err != nil {
		return "", err
	}
	switch len(found) {
	case 0:
		return "", derrors.New(derrors.ErrCodeNotFound, "cannot find dist-info")
	case 1:
		return found[0], nil
	}
	return "", derrors.New(derrors.ErrCodeAmbiguousSource, "too many dist-info directories: %s", strings.Join(found, ", "))
}

// Loads parses METADATA text.
func (c *Converter) Loads(content string) (*project.Root, error) {
	root, err := coremeta.Decode(content)
	if err != nil {
		return nil, err
	}
	if err := root.Validate(); err != nil {
		return nil, err
	}
	return root, nil
}

// Dumps writes METADATA with one Requires-Dist line per entry of reqs. The
// readme is stored as the message body in its own format, announced by
// Description-Content-Type.
func (c *Converter) Dumps(reqs []project.Dependency, root *project.Root, _ string) (string, error) {
	if root == nil {
		return "", derrors.New(derrors.ErrCodeInvalidInput, "nil project")
	}
	out := coremeta.Encode(reqs, root, coremeta.FieldRequiresDist)
	if root.Readme != nil && !c.OmitReadme {
		out += "\n" + coremeta.FieldDescriptionType + ": " + root.Readme.Format.ContentType()
		out += "\n\n" + strings.TrimRight(root.Readme.Content, "\n") + "\n"
	}
	return out, nil
}
