// Package pyproject converts the PEP 621 [project] table of pyproject.toml.
package pyproject

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	derrors "github.com/matzehuels/depconv/pkg/errors"
	"github.com/matzehuels/depconv/pkg/project"
	"github.com/matzehuels/depconv/pkg/readme"
)

const fileName = "pyproject.toml"

// urlKeys maps [project.urls] labels to link kinds. The first label of
// each kind is used when writing.
var urlKeys = []struct {
	label string
	kind  project.LinkKind
}{
	{"Homepage", project.LinkHome},
	{"Download", project.LinkDownload},
	{"Repository", project.LinkProject},
	{"Source", project.LinkProject},
}

type document struct {
	Project *table `toml:"project"`
}

type table struct {
	Name         string            `toml:"name"`
	Version      string            `toml:"version"`
	Description  string            `toml:"description"`
	Readme       any               `toml:"readme"`
	License      any               `toml:"license"`
	Keywords     []string          `toml:"keywords"`
	Classifiers  []string          `toml:"classifiers"`
	Authors      []person          `toml:"authors"`
	Maintainers  []person          `toml:"maintainers"`
	Dependencies []string          `toml:"dependencies"`
	URLs         map[string]string `toml:"urls"`
}

type person struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// Converter reads and writes PEP 621 project metadata.
type Converter struct{}

// New returns a PEP 621 converter.
func New() *Converter { return &Converter{} }

// Lock reports false.
func (c *Converter) Lock() bool { return false }

// Supports reports whether name is pyproject.toml.
func (c *Converter) Supports(name string) bool { return name == fileName }

// Load reads pyproject.toml at path, or inside path when it is a
// directory. A readme given as a file name is read from the same
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
	root, t, err := parse(string(data))
	if err != nil {
		return nil, err
	}
	if name, _ := readmeSource(t.Readme); name != "" && root.Readme == nil {
		if body, err := os.ReadFile(filepath.Join(filepath.Dir(path), name)); err == nil {
			root.Readme = readme.New(filepath.Base(name), string(body))
		}
	}
	return root, nil
}

// Loads parses pyproject.toml text. An inline readme
// (readme = {text = "...", content-type = "..."}) is attached.
func (c *Converter) Loads(content string) (*project.Root, error) {
	root, _, err := parse(content)
	return root, err
}

func parse(content string) (*project.Root, *table, error) {
	var doc document
	if _, err := toml.Decode(content, &doc); err != nil {
		return nil, nil, derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "parse %s", fileName)
	}
	t := doc.Project
	if t == nil {
		return nil, nil, derrors.New(derrors.ErrCodeInvalidManifest, "%s has no [project] table", fileName)
	}

	root := project.New(project.Clean(t.Name))
	if v := project.Clean(t.Version); v != "" {
		root.Version = v
	}
	root.Description = project.Clean(t.Description)
	root.License = license(t.License)
	root.Keywords = t.Keywords
	root.Classifiers = t.Classifiers
	for _, u := range urlKeys {
		if root.Link(u.kind) == "" {
			root.SetLink(string(u.kind), urlValue(t.URLs, u.label))
		}
	}
	if len(t.Authors) > 0 {
		root.Authors = append(root.Authors, project.Author{Name: t.Authors[0].Name, Mail: t.Authors[0].Email})
		if len(t.Maintainers) > 0 {
			root.Authors = append(root.Authors, project.Author{Name: t.Maintainers[0].Name, Mail: t.Maintainers[0].Email})
		}
	}
	if _, text := readmeSource(t.Readme); text != nil {
		root.Readme = text
	}

	for _, line := range t.Dependencies {
		deps, err := project.FromString(root, line)
		if err != nil {
			return nil, nil, err
		}
		root.AttachDependencies(deps...)
	}

	if err := root.Validate(); err != nil {
		return nil, nil, err
	}
	return root, t, nil
}

// urlValue finds label in urls case-insensitively.
func urlValue(urls map[string]string, label string) string {
	for k, v := range urls {
		if strings.EqualFold(k, label) {
			return v
		}
	}
	return ""
}

func license(v any) string {
	switch l := v.(type) {
	case string:
		return project.Clean(l)
	case map[string]any:
		if text, ok := l["text"].(string); ok {
			return project.Clean(text)
		}
	}
	return ""
}

// readmeSource returns either the readme file name or an inline readme.
func readmeSource(v any) (string, *readme.Readme) {
	switch r := v.(type) {
	case string:
		return r, nil
	case map[string]any:
		if file, ok := r["file"].(string); ok {
			return file, nil
		}
		if text, ok := r["text"].(string); ok {
			ct, _ := r["content-type"].(string)
			return "", readme.FromContentType(ct, text)
		}
	}
	return "", nil
}

// Dumps writes a [project] table for root with reqs as its dependencies.
// Other tables of an existing content document are kept.
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
	t, ok := doc["project"].(map[string]any)
	if !ok {
		t = make(map[string]any)
		doc["project"] = t
	}

	t["name"] = root.RawName
	t["version"] = root.Version
	if root.Description != "" {
		t["description"] = root.Description
	}
	if root.License != "" {
		t["license"] = map[string]any{"text": root.License}
	}
	if len(root.Keywords) > 0 {
		t["keywords"] = root.Keywords
	}
	if len(root.Classifiers) > 0 {
		t["classifiers"] = root.Classifiers
	}
	if a, ok := root.Author(); ok {
		t["authors"] = []map[string]any{personValue(a)}
	}
	if m, ok := root.Maintainer(); ok {
		t["maintainers"] = []map[string]any{personValue(m)}
	}

	urls := make(map[string]any)
	for _, kind := range project.LinkKinds() {
		if link := root.Link(kind); link != "" {
			urls[labelFor(kind)] = link
		}
	}
	if len(urls) > 0 {
		t["urls"] = urls
	}

	lines := make([]string, 0, len(reqs))
	for _, d := range reqs {
		lines = append(lines, d.Requirement().String())
	}
	t["dependencies"] = lines

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return "", derrors.Wrap(derrors.ErrCodeInternal, err, "encode %s", fileName)
	}
	return buf.String(), nil
}

func labelFor(kind project.LinkKind) string {
	for _, u := range urlKeys {
		if u.kind == kind {
			return u.label
		}
	}
	return string(kind)
}

func personValue(a project.Author) map[string]any {
	p := map[string]any{"name": a.Name}
	if a.Mail != "" {
		p["email"] = a.Mail
	}
	return p
}
