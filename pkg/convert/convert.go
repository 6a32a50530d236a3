package convert

import (
	"slices"
	"strings"

	"github.com/matzehuels/depconv/pkg/convert/egginfo"
	"github.com/matzehuels/depconv/pkg/convert/pip"
	"github.com/matzehuels/depconv/pkg/convert/poetry"
	"github.com/matzehuels/depconv/pkg/convert/pyproject"
	"github.com/matzehuels/depconv/pkg/convert/wheel"
	derrors "github.com/matzehuels/depconv/pkg/errors"
	"github.com/matzehuels/depconv/pkg/project"
)

// Converter translates between one manifest format and [project.Root].
type Converter interface {
	// Load reads the manifest at path, which may be a directory, an
	// archive or a flat file depending on the format.
	Load(path string) (*project.Root, error)
	// Loads parses manifest text without filesystem access.
	Loads(content string) (*project.Root, error)
	// Dumps serializes root with reqs as its dependencies. content is an
	// existing document to update in place, or "" to generate a new one.
	Dumps(reqs []project.Dependency, root *project.Root, content string) (string, error)
	// Lock reports whether the format describes pinned versions.
	Lock() bool
}

// Format identifies a manifest format.
type Format int

const (
	EggInfo Format = iota + 1
	Wheel
	Pip
	PipLock
	Poetry
	PyProject
)

var formatNames = map[Format]string{
	EggInfo:   "egginfo",
	Wheel:     "wheel",
	Pip:       "pip",
	PipLock:   "piplock",
	Poetry:    "poetry",
	PyProject: "pyproject",
}

var formatAliases = map[string]Format{
	"egg-info":          EggInfo,
	"pkg-info":          EggInfo,
	"sdist":             EggInfo,
	"whl":               Wheel,
	"dist-info":         Wheel,
	"requirements":      Pip,
	"requirements.txt":  Pip,
	"requirements.lock": PipLock,
	"pip-lock":          PipLock,
	"pep621":            PyProject,
}

// Formats returns every supported format in declaration order.
func Formats() []Format {
	return []Format{EggInfo, Wheel, Pip, PipLock, Poetry, PyProject}
}

// String returns the canonical format name.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseFormat resolves a format name or alias, case-insensitively.
func ParseFormat(name string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for f, n := range formatNames {
		if n == key {
			return f, nil
		}
	}
	if f, ok := formatAliases[key]; ok {
		return f, nil
	}
	return 0, derrors.New(derrors.ErrCodeUnsupported, "unknown format %q (available: %s)", name, strings.Join(FormatNames(), ", "))
}

// FormatNames returns the canonical names of all formats.
func FormatNames() []string {
	names := make([]string, 0, len(formatNames))
	for _, f := range Formats() {
		names = append(names, f.String())
	}
	return names
}

// New returns a fresh converter for f.
func New(f Format) (Converter, error) {
	switch f {
	case EggInfo:
		return egginfo.New(), nil
	case Wheel:
		return wheel.New(), nil
	case Pip:
		return pip.New(), nil
	case PipLock:
		return pip.NewLock(), nil
	case Poetry:
		return poetry.New(), nil
	case PyProject:
		return pyproject.New(), nil
	}
	return nil, derrors.New(derrors.ErrCodeUnsupported, "unknown format %d", int(f))
}

// Lookup parses name and returns its converter.
func Lookup(name string) (Format, Converter, error) {
	f, err := ParseFormat(name)
	if err != nil {
		return 0, nil, err
	}
	c, err := New(f)
	return f, c, err
}

// Valid reports whether f is one of [Formats].
func (f Format) Valid() bool { return slices.Contains(Formats(), f) }
