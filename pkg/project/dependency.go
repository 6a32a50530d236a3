package project

import (
	"slices"
	"strings"

	"github.com/matzehuels/depconv/pkg/requirement"
)

// Dependency is a single declared requirement of a [Root].
type Dependency struct {
	Name    string   // Distribution name as declared
	Extras  []string // Sorted, deduplicated
	Version string   // Comma-joined version constraint, may be empty
	Markers string   // Environment marker without ";", may be empty
	URL     string   // Direct reference, set instead of Version
	Source  string   // Raw name of the declaring root
}

// FromRequirement builds the dependencies described by req on behalf of
// source. A requirement names a single extras combination, so the result
// has exactly one element. source may be nil for free-standing
// requirements.
func FromRequirement(source *Root, req requirement.Requirement) []Dependency {
	var label string
	if source != nil {
		label = source.RawName
	}
	return []Dependency{{
		Name:    req.Name,
		Extras:  requirement.NormalizeExtras(req.Extras),
		Version: req.Specifier,
		Markers: req.Marker,
		URL:     req.URL,
		Source:  label,
	}}
}

// FromString parses s as a PEP 508 requirement and builds its dependencies.
// Parse failures carry the MALFORMED_REQUIREMENT error code.
func FromString(source *Root, s string) ([]Dependency, error) {
	req, err := requirement.Parse(s)
	if err != nil {
		return nil, err
	}
	return FromRequirement(source, req), nil
}

// Key identifies a dependency within a root: normalized name plus extras.
func (d Dependency) Key() string {
	key := NormalizeName(d.Name)
	if len(d.Extras) > 0 {
		key += "[" + strings.Join(d.Extras, ",") + "]"
	}
	return key
}

// Requirement converts d back to a requirement value.
func (d Dependency) Requirement() requirement.Requirement {
	return requirement.Requirement{
		Name:      d.Name,
		Extras:    slices.Clone(d.Extras),
		Specifier: d.Version,
		URL:       d.URL,
		Marker:    d.Markers,
	}
}

// String renders d as a requirement line: name, bracketed extras, the
// version constraint, and "; " followed by markers when present.
func (d Dependency) String() string {
	if d.URL != "" {
		return d.Requirement().String()
	}
	var b strings.Builder
	b.WriteString(d.Name)
	if len(d.Extras) > 0 {
		b.WriteString("[" + strings.Join(d.Extras, ",") + "]")
	}
	b.WriteString(d.Version)
	if d.Markers != "" {
		b.WriteString("; " + d.Markers)
	}
	return b.String()
}

func (d Dependency) clone() Dependency {
	d.Extras = slices.Clone(d.Extras)
	return d
}

// AttachDependencies appends deps to the root. A dependency whose key is
// already present is merged into the existing entry instead: version
// constraints are intersected by joining their clauses, and markers are
// combined with "or" (an unconditional side makes the result
// unconditional). Order of first appearance is kept.
func (r *Root) AttachDependencies(deps ...Dependency) {
	index := make(map[string]int, len(r.Dependencies)+len(deps))
	for i, d := range r.Dependencies {
		index[d.Key()] = i
	}
	for _, d := range deps {
		d = d.clone()
		d.Extras = requirement.NormalizeExtras(d.Extras)
		key := d.Key()
		if i, ok := index[key]; ok {
			r.Dependencies[i] = merge(r.Dependencies[i], d)
			continue
		}
		index[key] = len(r.Dependencies)
		r.Dependencies = append(r.Dependencies, d)
	}
}

func merge(a, b Dependency) Dependency {
	a.Version = joinConstraints(a.Version, b.Version)
	a.Markers = joinMarkers(a.Markers, b.Markers)
	if a.URL == "" {
		a.URL = b.URL
	}
	return a
}

func joinConstraints(a, b string) string {
	if a == "" {
		return b
	}
	clauses := strings.Split(a, ",")
	for _, c := range strings.Split(b, ",") {
		if c != "" && !slices.Contains(clauses, c) {
			clauses = append(clauses, c)
		}
	}
	return strings.Join(clauses, ",")
}

func joinMarkers(a, b string) string {
	switch {
	case a == "" || b == "":
		return ""
	case a == b:
		return a
	}
	return "(" + a + ") or (" + b + ")"
}
