// Package poetry converts the [tool.poetry] table of pyproject.toml.
package poetry

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	derrors "github.com/matzehuels/depconv/pkg/errors"
	"github.com/matzehuels/depconv/pkg/project"
	"github.com/matzehuels/depconv/pkg/readme"
	"github.com/matzehuels/depconv/pkg/requirement"
)

const fileName = "pyproject.toml"

var authorRE = regexp.MustCompile(`^\s*(.*?)\s*<([^>]*)>\s*$`)

type document struct {
	Tool struct {
		Poetry *section `toml:"poetry"`
	} `toml:"tool"`
}

type section struct {
	Name          string         `toml:"name"`
	Version       string         `toml:"version"`
	Description   string         `toml:"description"`
	License       string         `toml:"license"`
	Authors       []string       `toml:"authors"`
	Maintainers   []string       `toml:"maintainers"`
	Readme        any            `toml:"readme"`
	Homepage      string         `toml:"homepage"`
	Repository    string         `toml:"repository"`
	Documentation string         `toml:"documentation"`
	Keywords      []string       `toml:"keywords"`
	Classifiers   []string       `toml:"classifiers"`
	Dependencies  map[string]any `toml:"dependencies"`
}

// Converter reads and writes Poetry project definitions.
type Converter struct{}

// New returns a Poetry converter.
func New() *Converter { return &Converter{} }

// Lock reports false: pyproject.toml declares constraints.
func (c *Converter) Lock() bool { return false }

// Supports reports whether name is pyproject.toml.
func (c *Converter) Supports(name string) bool { return name == fileName }

// Load reads pyproject.toml at path, or inside path when it is a
// directory. A readme file named by the project is read from the same
// directory.
func (c *Converter) Load(path string) (*project.Root, error) {
	if err := derrors.ValidatePath(path); err != nil {
		return nil, err
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, fileName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, derrors.Wrap(derrors.ErrCodeFileNotFound, err, "%s does not exist", path)
		}
		return nil, derrors.Wrap(derrors.ErrCodeInvalidPath, err, "read %s", path)
	}
	root, sec, err := parse(string(data))
	if err != nil {
		return nil, err
	}
	if name := readmeFile(sec.Readme); name != "" {
		if body, err := os.ReadFile(filepath.Join(filepath.Dir(path), name)); err == nil {
			root.Readme = readme.New(filepath.Base(name), string(body))
		}
	}
	return root, nil
}

// Loads parses pyproject.toml text.
func (c *Converter) Loads(content string) (*project.Root, error) {
	root, _, err := parse(content)
	return root, err
}

func parse(content string) (*project.Root, *section, error) {
	var doc document
	md, err := toml.Decode(content, &doc)
	if err != nil {
		return nil, nil, derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "parse %s", fileName)
	}
	sec := doc.Tool.Poetry
	if sec == nil {
		return nil, nil, derrors.New(derrors.ErrCodeInvalidManifest, "%s has no [tool.poetry] table", fileName)
	}

	root := project.New(project.Clean(sec.Name))
	if v := project.Clean(sec.Version); v != "" {
		root.Version = v
	}
	root.Description = project.Clean(sec.Description)
	root.License = project.Clean(sec.License)
	root.Keywords = sec.Keywords
	root.Classifiers = sec.Classifiers
	root.SetLink(string(project.LinkHome), sec.Homepage)
	root.SetLink(string(project.LinkProject), sec.Repository)
	root.Authors = parseAuthors(sec.Authors, sec.Maintainers)

	for _, name := range dependencyOrder(md, sec.Dependencies) {
		if strings.EqualFold(name, "python") {
			continue
		}
		deps, err := dependencies(root, name, sec.Dependencies[name])
		if err != nil {
			return nil, nil, err
		}
		root.AttachDependencies(deps...)
	}

	if err := root.Validate(); err != nil {
		return nil, nil, err
	}
	return root, sec, nil
}

// dependencyOrder lists dependency names in document order.
func dependencyOrder(md toml.MetaData, deps map[string]any) []string {
	var names []string
	seen := make(map[string]bool, len(deps))
	for _, key := range md.Keys() {
		if len(key) != 4 || key[0] != "tool" || key[1] != "poetry" || key[2] != "dependencies" {
			continue
		}
		if name := key[3]; !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	// Keys the metadata missed still get a stable position.
	var rest []string
	for name := range deps {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func dependencies(root *project.Root, name string, value any) ([]project.Dependency, error) {
	switch v := value.(type) {
	case string:
		spec, err := ToPEP440(v)
		if err != nil {
			return nil, err
		}
		return []project.Dependency{{Name: name, Version: spec, Source: root.RawName}}, nil
	case map[string]any:
		d, ok, err := tableDependency(root, name, v)
		if err != nil || !ok {
			return nil, err
		}
		return []project.Dependency{d}, nil
	case []map[string]any:
		var out []project.Dependency
		for _, item := range v {
			d, ok, err := tableDependency(root, name, item)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, d)
			}
		}
		return out, nil
	case []any:
		var out []project.Dependency
		for _, item := range v {
			deps, err := dependencies(root, name, item)
			if err != nil {
				return nil, err
			}
			out = append(out, deps...)
		}
		return out, nil
	}
	return nil, derrors.New(derrors.ErrCodeInvalidManifest, "dependency %q has unsupported value %v", name, value)
}

// tableDependency converts an inline table. Local path dependencies have
// no requirement form and report ok=false.
func tableDependency(root *project.Root, name string, t map[string]any) (project.Dependency, bool, error) {
	d := project.Dependency{Name: name, Source: root.RawName}
	if _, ok := t["path"]; ok {
		return d, false, nil
	}

	spec, err := ToPEP440(stringValue(t["version"]))
	if err != nil {
		return d, false, err
	}
	d.Version = spec

	if extras, ok := t["extras"].([]any); ok {
		for _, e := range extras {
			d.Extras = append(d.Extras, stringValue(e))
		}
		d.Extras = requirement.NormalizeExtras(d.Extras)
	}

	switch {
	case t["url"] != nil:
		d.URL, d.Version = stringValue(t["url"]), ""
	case t["git"] != nil:
		d.URL, d.Version = "git+"+stringValue(t["git"]), ""
		for _, ref := range []string{"rev", "tag", "branch"} {
			if r := stringValue(t[ref]); r != "" {
				d.URL += "@" + r
				break
			}
		}
	}

	var markers []string
	if m := stringValue(t["markers"]); m != "" {
		markers = append(markers, m)
	}
	if py := stringValue(t["python"]); py != "" {
		m, err := PythonMarker(py)
		if err != nil {
			return d, false, err
		}
		if m != "" {
			markers = append(markers, m)
		}
	}
	switch len(markers) {
	case 1:
		d.Markers = markers[0]
	case 2:
		d.Markers = "(" + markers[0] + ") and (" + markers[1] + ")"
	}
	if d.Markers != "" {
		if d.Markers, err = requirement.ParseMarker(d.Markers); err != nil {
			return d, false, err
		}
	}
	return d, true, nil
}

// parseAuthors keeps the first author and, when there is one, the first
// maintainer.
func parseAuthors(authors, maintainers []string) []project.Author {
	if len(authors) == 0 {
		return nil
	}
	out := []project.Author{parseAuthor(authors[0])}
	if len(maintainers) > 0 {
		out = append(out, parseAuthor(maintainers[0]))
	}
	return out
}

func parseAuthor(s string) project.Author {
	if m := authorRE.FindStringSubmatch(s); m != nil {
		return project.Author{Name: m[1], Mail: m[2]}
	}
	return project.Author{Name: strings.TrimSpace(s)}
}

func formatAuthor(a project.Author) string {
	if a.Mail == "" {
		return a.Name
	}
	return a.Name + " <" + a.Mail + ">"
}

func readmeFile(v any) string {
	switch r := v.(type) {
	case string:
		return r
	case []any:
		if len(r) > 0 {
			return stringValue(r[0])
		}
	}
	return ""
}

func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// Dumps writes a [tool.poetry] table for root with reqs as its
// dependencies. When content holds an existing pyproject.toml, every other
// table is kept and the existing python constraint is carried over.
func (c *Converter) Dumps(reqs []project.Dependency, root *project.Root, content string) (string, error) {
	if root == nil {
		return "", derrors.New(derrors.ErrCodeInvalidInput, "nil project")
	}
	doc := make(map[string]any)
	if content != "" {
		if _, err := toml.Decode(content, &doc); err != nil {
			return "", derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "parse existing %s", fileName)
		}
	}
	tool := table(doc, "tool")
	sec := table(tool, "poetry")

	sec["name"] = root.RawName
	sec["version"] = root.Version
	setString(sec, "description", root.Description)
	setString(sec, "license", root.License)
	setString(sec, "homepage", root.Link(project.LinkHome))
	setString(sec, "repository", root.Link(project.LinkProject))
	if a, ok := root.Author(); ok {
		sec["authors"] = []string{formatAuthor(a)}
	}
	if m, ok := root.Maintainer(); ok {
		sec["maintainers"] = []string{formatAuthor(m)}
	}
	if len(root.Keywords) > 0 {
		sec["keywords"] = root.Keywords
	}
	if len(root.Classifiers) > 0 {
		sec["classifiers"] = root.Classifiers
	}

	deps := make(map[string]any, len(reqs)+1)
	if old, ok := sec["dependencies"].(map[string]any); ok {
		if py, ok := old["python"]; ok {
			deps["python"] = py
		}
	}
	for _, group := range groupDependencies(reqs) {
		if len(group) == 1 {
			deps[group[0].Name] = dependencyValue(group[0])
			continue
		}
		// Differing constraints on one name use poetry's multiple
		// constraints form.
		tables := make([]map[string]any, len(group))
		for i, d := range group {
			tables[i] = dependencyTable(d)
		}
		deps[group[0].Name] = tables
	}
	sec["dependencies"] = deps

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return "", derrors.Wrap(derrors.ErrCodeInternal, err, "encode %s", fileName)
	}
	return buf.String(), nil
}

func dependencyValue(d project.Dependency) any {
	version := d.Version
	if version == "" {
		version = "*"
	}
	if len(d.Extras) == 0 && d.Markers == "" && d.URL == "" {
		return version
	}
	return dependencyTable(d)
}

func dependencyTable(d project.Dependency) map[string]any {
	version := d.Version
	if version == "" {
		version = "*"
	}
	t := make(map[string]any)
	switch {
	case strings.HasPrefix(d.URL, "git+"):
		repo := strings.TrimPrefix(d.URL, "git+")
		if i := strings.LastIndex(repo, "@"); i > strings.LastIndex(repo, "/") {
			repo, t["rev"] = repo[:i], repo[i+1:]
		}
		t["git"] = repo
	case d.URL != "":
		t["url"] = d.URL
	default:
		t["version"] = version
	}
	if len(d.Extras) > 0 {
		t["extras"] = d.Extras
	}
	if d.Markers != "" {
		t["markers"] = d.Markers
	}
	return t
}

// groupDependencies buckets reqs by normalized name in first-seen order.
// Entries of one name that differ only in extras collapse into a single
// entry carrying the union of their extras.
func groupDependencies(reqs []project.Dependency) [][]project.Dependency {
	var (
		groups [][]project.Dependency
		index  = make(map[string]int)
	)
	for _, d := range reqs {
		key := project.NormalizeName(d.Name)
		i, ok := index[key]
		if !ok {
			index[key] = len(groups)
			groups = append(groups, []project.Dependency{d})
			continue
		}
		merged := false
		for j, prev := range groups[i] {
			if prev.Version == d.Version && prev.Markers == d.Markers && prev.URL == d.URL {
				prev.Extras = requirement.NormalizeExtras(append(slices.Clone(prev.Extras), d.Extras...))
				groups[i][j] = prev
				merged = true
				break
			}
		}
		if !merged {
			groups[i] = append(groups[i], d)
		}
	}
	return groups
}

func table(parent map[string]any, key string) map[string]any {
	if t, ok := parent[key].(map[string]any); ok {
		return t
	}
	t := make(map[string]any)
	parent[key] = t
	return t
}

func setString(t map[string]any, key, value string) {
	if value != "" {
		t[key] = value
	}
}
