package project

import (
	"slices"
	"strings"

	derrors "github.com/matzehuels/depconv/pkg/errors"
	"github.com/matzehuels/depconv/pkg/readme"
)

// DefaultVersion is the version of a project that does not declare one.
const DefaultVersion = "0.0.0"

// Unknown is the core-metadata sentinel for an absent value.
const Unknown = "UNKNOWN"

// LinkKind names one of the project URLs a root can carry.
type LinkKind string

const (
	LinkHome     LinkKind = "home"
	LinkDownload LinkKind = "download"
	LinkProject  LinkKind = "project"
)

// LinkKinds returns all link kinds in their serialization order.
func LinkKinds() []LinkKind {
	return []LinkKind{LinkHome, LinkDownload, LinkProject}
}

// ParseLinkKind reports whether s names a known link kind.
func ParseLinkKind(s string) (LinkKind, bool) {
	k := LinkKind(s)
	return k, slices.Contains(LinkKinds(), k)
}

// Author is a person credited by the project. Mail may be empty.
type Author struct {
	Name string
	Mail string
}

// Root is the project whose manifest is being converted.
//
// Authors is ordered: index 0 is the author, index 1 the maintainer.
type Root struct {
	RawName      string
	Version      string
	Description  string
	License      string
	Keywords     []string
	Classifiers  []string
	Platforms    []string
	Links        map[LinkKind]string
	Authors      []Author
	Dependencies []Dependency
	Readme       *readme.Readme
}

// New returns an empty root named rawName with the default version.
func New(rawName string) *Root {
	return &Root{
		RawName: rawName,
		Version: DefaultVersion,
		Links:   make(map[LinkKind]string),
	}
}

// Name returns the PEP 503 normalized project name.
func (r *Root) Name() string { return NormalizeName(r.RawName) }

// SetLink records url under kind. Unknown kinds and empty or UNKNOWN urls
// are dropped; the return value reports whether the link was stored.
func (r *Root) SetLink(kind, url string) bool {
	k, ok := ParseLinkKind(kind)
	url = Clean(url)
	if !ok || url == "" {
		return false
	}
	if r.Links == nil {
		r.Links = make(map[LinkKind]string)
	}
	r.Links[k] = url
	return true
}

// Link returns the url stored under kind, or "".
func (r *Root) Link(kind LinkKind) string { return r.Links[kind] }

// Author returns the first credited person, if any.
func (r *Root) Author() (Author, bool) {
	if len(r.Authors) == 0 {
		return Author{}, false
	}
	return r.Authors[0], true
}

// Maintainer returns the second credited person, if any.
func (r *Root) Maintainer() (Author, bool) {
	if len(r.Authors) < 2 {
		return Author{}, false
	}
	return r.Authors[1], true
}

// Validate checks the invariants a loaded root must satisfy.
func (r *Root) Validate() error {
	if err := derrors.ValidatePackageName(r.RawName); err != nil {
		return derrors.Wrap(derrors.ErrCodeInvalidManifest, err, "project has no usable name")
	}
	for k := range r.Links {
		if _, ok := ParseLinkKind(string(k)); !ok {
			return derrors.New(derrors.ErrCodeInvalidManifest, "unknown link kind %q", k)
		}
	}
	return nil
}

// Clone returns a deep copy of r.
func (r *Root) Clone() *Root {
	if r == nil {
		return nil
	}
	c := *r
	c.Keywords = slices.Clone(r.Keywords)
	c.Classifiers = slices.Clone(r.Classifiers)
	c.Platforms = slices.Clone(r.Platforms)
	c.Authors = slices.Clone(r.Authors)
	c.Links = make(map[LinkKind]string, len(r.Links))
	for k, v := range r.Links {
		c.Links[k] = v
	}
	c.Dependencies = make([]Dependency, len(r.Dependencies))
	for i, d := range r.Dependencies {
		c.Dependencies[i] = d.clone()
	}
	if len(r.Dependencies) == 0 {
		c.Dependencies = nil
	}
	c.Readme = r.Readme.Clone()
	return &c
}

// Clean normalizes a textual metadata value: surrounding whitespace is
// removed and the UNKNOWN sentinel becomes "".
func Clean(s string) string {
	s = strings.TrimSpace(s)
	if s == Unknown {
		return ""
	}
	return s
}
