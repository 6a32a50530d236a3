// Package egginfo converts setuptools egg-info metadata: PKG-INFO header
// files, requires.txt requirement lists, *.egg-info directories and source
// distributions that embed one.
package egginfo

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/matzehuels/depconv/pkg/archive"
	"github.com/matzehuels/depconv/pkg/coremeta"
	derrors "github.com/matzehuels/depconv/pkg/errors"
	"github.com/matzehuels/depconv/pkg/project"
	"github.com/matzehuels/depconv/pkg/readme"
)

const (
	dirSuffix    = ".egg-info"
	infoFile     = "PKG-INFO"
	requiresFile = "requires.txt"

	// defaultName names a requirement list that does not mention its project.
	defaultName = "root"
)

// headerMarker distinguishes PKG-INFO text from a requirement list.
const headerMarker = "Name: "

var (
	assignNameRE = regexp.MustCompile(`(?m)^\s*name\s*=\s*["']([^"']+)["']`)
	headerNameRE = regexp.MustCompile(`(?m)^Name:\s*(\S+)`)
)

// Converter reads and writes egg-info metadata. The zero value is ready to
// use.
type Converter struct {
	// OmitReadme disables appending the readme to dumped PKG-INFO text.
	OmitReadme bool
}

// New returns an egg-info converter.
func New() *Converter { return &Converter{} }

// Lock reports false: egg-info declares constraints, not pins.
func (c *Converter) Lock() bool { return false }

// Supports reports whether name is an egg-info file or directory name.
func (c *Converter) Supports(name string) bool {
	return name == infoFile || name == requiresFile || strings.HasSuffix(name, dirSuffix)
}

// Load reads egg-info metadata from path:
//
//   - a *.egg-info directory is read directly;
//   - any other directory is searched for exactly one *.egg-info below it;
//   - an archive (.zip, .tar, .tar.gz) is searched the same way and its
//     readme is attached;
//   - anything else is read as a PKG-INFO or requires.txt file.
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

	switch {
	case info.IsDir() && strings.HasSuffix(filepath.Base(path), dirSuffix):
		tree, err := archive.OpenDir(path)
		if err != nil {
			return nil, err
		}
		return c.LoadDir(tree, "")

	case info.IsDir():
		tree, err := archive.OpenDir(path)
		if err != nil {
			return nil, err
		}
		return c.search(tree)

	case archive.IsArchive(path):
		tree, err := archive.OpenArchive(path)
		if err != nil {
			return nil, err
		}
		root, err := c.search(tree)
		if err != nil {
			return nil, err
		}
		rm, err := readme.Discover(tree)
		if err != nil {
			return nil, err
		}
		if rm != nil {
			root.Readme = rm
		}
		return root, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeFileNotFound, err, "read %s", path)
	}
	return c.Loads(string(data))
}

func (c *Converter) search(tree archive.Tree) (*project.Root, error) {
	candidates, err := tree.Glob("**/*" + dirSuffix)
	if err != nil {
		return nil, err
	}
	return c.LoadDir(tree, candidates...)
}

// LoadDir reads the single egg-info directory among candidates, given as
// paths within tree ("" is the tree root). PKG-INFO supplies the metadata;
// when it declares no dependencies, they are taken from requires.txt if
// that file exists.
//
// Zero candidates fail with NOT_FOUND and more than one with
// AMBIGUOUS_SOURCE.
func (c *Converter) LoadDir(tree archive.Tree, candidates ...string) (*project.Root, error) {
	switch len(candidates) {
	case 0:
		return nil, derrors.New(derrors.ErrCodeNotFound, "cannot find egg-info")
	case 1:
	default:
		return nil, derrors.New(derrors.ErrCodeAmbiguousSource, "too many egg-info directories: %s", strings.Join(candidates, ", "))
	}
	dir := candidates[0]

	data, err := tree.ReadFile(tree.Join(dir, infoFile))
	if err != nil {
		return nil, err
	}
	root, err := parseInfo(string(data))
	if err != nil {
		return nil, err
	}
	if len(root.Dependencies) > 0 {
		return root, nil
	}

	data, err = tree.ReadFile(tree.Join(dir, requiresFile))
	switch {
	case derrors.Is(err, derrors.ErrCodeFileNotFound):
		return root, nil
	case err != nil:
		return nil, err
	}
	if err := parseRequires(string(data), root); err != nil {
		return nil, err
	}
	return root, nil
}

// Loads parses PKG-INFO text, or a requires.txt requirement list when the
// text has no "Name: " field.
func (c *Converter) Loads(content string) (*project.Root, error) {
	if strings.Contains(content, headerMarker) {
		return parseInfo(content)
	}
	root := project.New(guessName(content))
	if err := parseRequires(content, root); err != nil {
		return nil, err
	}
	return root, nil
}

// Dumps writes root as PKG-INFO text with one Requires line per entry of
// reqs. content is ignored: PKG-INFO is always generated from scratch.
func (c *Converter) Dumps(reqs []project.Dependency, root *project.Root, _ string) (string, error) {
	if root == nil {
		return "", derrors.New(derrors.ErrCodeInvalidInput, "nil project")
	}
	out := coremeta.Encode(reqs, root, coremeta.FieldRequires)
	if root.Readme != nil && !c.OmitReadme {
		out += "\n\n" + root.Readme.AsRST()
	}
	return out, nil
}

func parseInfo(content string) (*project.Root, error) {
	root, err := coremeta.Decode(content)
	if err != nil {
		return nil, err
	}
	if err := root.Validate(); err != nil {
		return nil, err
	}
	return root, nil
}

// parseRequires attaches every requirement in content to root.
//
// Section headers such as "[socks]" or "[:python_version < '3']" are
// skipped and their requirements are attached unconditionally. A line
// that is not a valid requirement as a whole is split on whitespace and
// each token is parsed on its own.
func parseRequires(content string, root *project.Root) error {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || isSection(line) || isNameLine(line) {
			continue
		}
		if deps, err := project.FromString(root, line); err == nil {
			root.AttachDependencies(deps...)
			continue
		}
		for _, tok := range strings.Fields(line) {
			deps, err := project.FromString(root, tok)
			if err != nil {
				return err
			}
			root.AttachDependencies(deps...)
		}
	}
	return nil
}

func isSection(line string) bool {
	return strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]")
}

func isNameLine(line string) bool {
	return assignNameRE.MatchString(line) || headerNameRE.MatchString(line)
}

// guessName looks for a project name in a requirement list. It is a
// heuristic: `name = "x"` and `Name: x` lines are recognized when they
// hold a valid distribution name.
func guessName(content string) string {
	for _, re := range []*regexp.Regexp{assignNameRE, headerNameRE} {
		m := re.FindStringSubmatch(content)
		if m != nil && derrors.ValidatePythonPackageName(m[1]) == nil {
			return m[1]
		}
	}
	return defaultName
}
