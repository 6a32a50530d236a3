// Package pip converts pip requirement files. The declaration form
// (requirements.txt) keeps constraints as written; the lock form
// (requirements.lock) pins every dependency to an exact version.
package pip

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	derrors "github.com/matzehuels/depconv/pkg/errors"
	"github.com/matzehuels/depconv/pkg/project"
)

// rootName names the project described by a requirement file, which never
// declares one.
const rootName = "root"

var (
	bareVersionRE = regexp.MustCompile(`^[0-9][0-9A-Za-z.!+_-]*$`)
	hashOptionRE  = regexp.MustCompile(`\s--hash[= ]\S+`)
	directRefRE   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*\s*(\[[^\]]*\])?\s*@`)
)

// Converter reads and writes pip requirement files.
type Converter struct {
	lock bool
}

// New returns a converter for requirements.txt.
func New() *Converter { return &Converter{} }

// NewLock returns a converter for pinned requirement files.
func NewLock() *Converter { return &Converter{lock: true} }

// Lock reports whether the converter writes pinned versions.
func (c *Converter) Lock() bool { return c.lock }

// Supports reports whether name looks like a requirement file of this
// converter's kind.
func (c *Converter) Supports(name string) bool {
	if !strings.HasPrefix(name, "requirements") && !strings.HasPrefix(name, "constraints") {
		return false
	}
	if c.lock {
		return strings.HasSuffix(name, ".lock")
	}
	return strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".in")
}

func (c *Converter) defaultFile() string {
	if c.lock {
		return "requirements.lock"
	}
	return "requirements.txt"
}

// Load reads the requirement file at path. A directory is read through
// its requirements.txt (requirements.lock for the lock form).
func (c *Converter) Load(path string) (*project.Root, error) {
	if err := derrors.ValidatePath(path); err != nil {
		return nil, err
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, c.defaultFile())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, derrors.Wrap(derrors.ErrCodeFileNotFound, err, "%s does not exist", path)
		}
		return nil, derrors.Wrap(derrors.ErrCodeInvalidPath, err, "read %s", path)
	}
	return c.Loads(string(data))
}

// Loads parses requirement file text. Comments, blank lines, option lines
// and editable or URL-only entries are skipped; backslash continuations are
// joined and per-requirement options such as --hash are dropped.
func (c *Converter) Loads(content string) (*project.Root, error) {
	root := project.New(rootName)
	for _, line := range logicalLines(content) {
		if skipLine(line) {
			continue
		}
		deps, err := project.FromString(root, stripOptions(line))
		if err != nil {
			return nil, err
		}
		root.AttachDependencies(deps...)
	}
	return root, nil
}

// Dumps writes one requirement per line. When content is given, its
// leading comment and option lines (index URLs, constraint includes) are
// kept as the header of the new file.
func (c *Converter) Dumps(reqs []project.Dependency, root *project.Root, content string) (string, error) {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") && !strings.HasPrefix(trimmed, "-") {
			break
		}
		if trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	for _, d := range reqs {
		if c.lock {
			d.Version = pin(d.Version)
		}
		lines = append(lines, d.String())
	}
	if len(lines) == 0 {
		return "", nil
	}
	return strings.Join(lines, "\n") + "\n", nil
}

// pin turns a bare version into an exact constraint. Other constraints
// are kept.
func pin(v string) string {
	if bareVersionRE.MatchString(v) {
		return "==" + v
	}
	return v
}

// logicalLines joins backslash continuations and strips comments.
func logicalLines(content string) []string {
	var (
		out []string
		buf strings.Builder
	)
	for _, raw := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		line := stripComment(raw)
		if strings.HasSuffix(strings.TrimRight(line, " \t"), `\`) {
			buf.WriteString(strings.TrimSuffix(strings.TrimRight(line, " \t"), `\`))
			buf.WriteString(" ")
			continue
		}
		buf.WriteString(line)
		if s := strings.TrimSpace(buf.String()); s != "" {
			out = append(out, s)
		}
		buf.Reset()
	}
	if s := strings.TrimSpace(buf.String()); s != "" {
		out = append(out, s)
	}
	return out
}

// stripComment removes a "#" comment that starts the line or follows
// whitespace.
func stripComment(line string) string {
	if strings.HasPrefix(strings.TrimSpace(line), "#") {
		return ""
	}
	for i := 1; i < len(line); i++ {
		if line[i] == '#' && (line[i-1] == ' ' || line[i-1] == '\t') {
			return line[:i]
		}
	}
	return line
}

func skipLine(line string) bool {
	switch {
	case strings.HasPrefix(line, "-"):
		return true
	case strings.HasPrefix(line, ".") || strings.HasPrefix(line, "/"):
		return true
	case strings.Contains(line, "://") && !directRefRE.MatchString(line):
		return true
	}
	return false
}

func stripOptions(line string) string {
	line = hashOptionRE.ReplaceAllString(line, "")
	if i := strings.Index(line, " --"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}
