package requirement

import (
	"regexp"
	"slices"
	"strings"

	derrors "github.com/matzehuels/depconv/pkg/errors"
)

var (
	nameRE       = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?`)
	identifierRE = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?$`)
)

// Requirement is a parsed PEP 508 dependency specification.
type Requirement struct {
	Name      string   // Distribution name as written
	Extras    []string // Sorted, deduplicated extras
	Specifier string   // Comma-joined version clauses, e.g. ">=1.0,<2"
	URL       string   // Direct reference after "@", mutually exclusive with Specifier
	Marker    string   // Canonical environment marker, without the leading ";"
}

// Parse parses a single requirement string such as
// `requests[security,socks]>=2.8.1,==2.8.*; python_version < "2.7"`.
//
// Legacy parenthesized specifiers (`six (>=1.10)`) are accepted. Any deviation
// from the grammar fails with [derrors.ErrCodeMalformedRequirement].
func Parse(s string) (Requirement, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return Requirement{}, malformed(s, "empty requirement")
	}

	name := nameRE.FindString(text)
	if name == "" {
		return Requirement{}, malformed(s, "expected package name")
	}
	req := Requirement{Name: name}
	rest := strings.TrimLeft(text[len(name):], " \t")

	if strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return Requirement{}, malformed(s, "unclosed extras")
		}
		extras, err := parseExtras(rest[1:end])
		if err != nil {
			return Requirement{}, malformed(s, err.Error())
		}
		req.Extras = extras
		rest = strings.TrimLeft(rest[end+1:], " \t")
	}

	if strings.HasPrefix(rest, "@") {
		url, tail, err := splitURL(strings.TrimLeft(rest[1:], " \t"))
		if err != nil {
			return Requirement{}, malformed(s, err.Error())
		}
		req.URL = url
		rest = tail
	} else {
		spec := rest
		tail := ""
		if i := strings.IndexByte(rest, ';'); i >= 0 {
			spec, tail = rest[:i], rest[i:]
		}
		specifier, err := parseSpecifier(spec)
		if err != nil {
			return Requirement{}, malformed(s, err.Error())
		}
		req.Specifier = specifier
		rest = tail
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return req, nil
	}
	if !strings.HasPrefix(rest, ";") {
		return Requirement{}, malformed(s, "unexpected trailing text "+quote(rest))
	}
	marker, err := parseMarker(rest[1:])
	if err != nil {
		return Requirement{}, malformed(s, err.Error())
	}
	req.Marker = marker
	return req, nil
}

// MustParse is like [Parse] but panics on error. It is intended for tests
// and static tables.
func MustParse(s string) Requirement {
	req, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return req
}

// String renders the requirement in canonical PEP 508 form.
func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[" + strings.Join(r.Extras, ",") + "]")
	}
	switch {
	case r.URL != "":
		b.WriteString(" @ " + r.URL)
		if r.Marker != "" {
			b.WriteString(" ")
		}
	case r.Specifier != "":
		b.WriteString(r.Specifier)
	}
	if r.Marker != "" {
		b.WriteString("; " + r.Marker)
	}
	return b.String()
}

func parseExtras(s string) ([]string, error) {
	var extras []string
	for _, part := range strings.Split(s, ",") {
		extra := strings.TrimSpace(part)
		if extra == "" {
			if strings.TrimSpace(s) == "" {
				break
			}
			return nil, syntaxError("empty extra name")
		}
		if !identifierRE.MatchString(extra) {
			return nil, syntaxError("invalid extra name " + quote(extra))
		}
		extras = append(extras, extra)
	}
	return NormalizeExtras(extras), nil
}

// NormalizeExtras returns a sorted copy of extras with duplicates removed.
func NormalizeExtras(extras []string) []string {
	if len(extras) == 0 {
		return nil
	}
	out := slices.Clone(extras)
	slices.Sort(out)
	return slices.Compact(out)
}

func splitURL(s string) (url, rest string, err error) {
	end := strings.IndexAny(s, " \t")
	if end < 0 {
		end = len(s)
	}
	url = s[:end]
	if url == "" || !strings.Contains(url, ":") {
		return "", "", syntaxError("invalid URL " + quote(url))
	}
	rest = s[end:]
	if strings.HasSuffix(url, ";") {
		return "", "", syntaxError("missing whitespace before marker after URL")
	}
	return url, rest, nil
}

func malformed(input, reason string) error {
	return derrors.New(derrors.ErrCodeMalformedRequirement, "invalid requirement %q: %s", input, reason)
}

// syntaxError carries a grammar violation up to Parse, which wraps it with
// the offending input.
type syntaxError string

func (e syntaxError) Error() string { return string(e) }

func quote(s string) string { return `"` + s + `"` }
