// Package readme finds, classifies and renders project long descriptions.
package readme

import (
	"path"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/matzehuels/depconv/pkg/archive"
	derrors "github.com/matzehuels/depconv/pkg/errors"
)

// Format is the markup language of a readme.
type Format string

const (
	FormatRST      Format = "rst"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// Readme is a named long description together with its markup format.
type Readme struct {
	Name    string
	Content string
	Format  Format
}

// New returns a readme whose format is derived from the extension of name.
func New(name, content string) *Readme {
	return &Readme{Name: name, Content: content, Format: FormatFromName(name)}
}

// FromContentType builds a readme from a core-metadata
// Description-Content-Type value such as "text/markdown; charset=UTF-8".
// Unknown or empty content types are treated as reStructuredText, the
// historical default for PKG-INFO bodies.
func FromContentType(contentType, content string) *Readme {
	f := FormatRST
	mime, _, _ := strings.Cut(contentType, ";")
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "text/markdown":
		f = FormatMarkdown
	case "text/plain":
		f = FormatText
	}
	return &Readme{Name: "README." + string(f), Content: content, Format: f}
}

// FormatFromName maps a file name to a readme format.
func FormatFromName(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".rst", ".rest":
		return FormatRST
	}
	return FormatText
}

// ContentType returns the core-metadata content type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown"
	case FormatText:
		return "text/plain"
	}
	return "text/x-rst"
}

// Discover looks for a README file in tree and returns the shallowest one.
// At equal depth reStructuredText is preferred over Markdown over plain
// text. It returns nil and no error when the tree has no readme.
func Discover(tree archive.Tree) (*Readme, error) {
	var candidates []string
	for _, pattern := range []string{"**/README*", "**/readme*", "**/Readme*"} {
		found, err := tree.Glob(pattern)
		if err != nil {
			return nil, err
		}
		for _, name := range found {
			if isReadmeName(name) && tree.IsFile(name) {
				candidates = append(candidates, name)
			}
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if da, db := strings.Count(a, "/"), strings.Count(b, "/"); da != db {
			return da < db
		}
		if ra, rb := formatRank(a), formatRank(b); ra != rb {
			return ra < rb
		}
		return a < b
	})

	name := candidates[0]
	data, err := tree.ReadFile(name)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInternal, err, "read readme %s", name)
	}
	return New(path.Base(name), string(data)), nil
}

// isReadmeName reports whether the base name of p, without its extension,
// is "readme" in any case. README, README.md and readme.rst qualify;
// readme_check.py does not.
func isReadmeName(p string) bool {
	base := path.Base(p)
	return strings.EqualFold(strings.TrimSuffix(base, path.Ext(base)), "readme")
}

func formatRank(name string) int {
	switch FormatFromName(name) {
	case FormatRST:
		return 0
	case FormatMarkdown:
		return 1
	}
	return 2
}

// AsRST returns the content as reStructuredText. Markdown is converted;
// other formats are returned unchanged.
func (r *Readme) AsRST() string {
	if r.Format != FormatMarkdown {
		return r.Content
	}
	return markdownToRST([]byte(r.Content))
}

// Render formats the readme for a terminal of the given width. Markdown is
// rendered with glamour; other formats are returned as-is.
func (r *Readme) Render(width int) (string, error) {
	if r.Format != FormatMarkdown {
		return r.Content, nil
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", derrors.Wrap(derrors.ErrCodeInternal, err, "create renderer")
	}
	out, err := tr.Render(r.Content)
	if err != nil {
		return "", derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "render %s", r.Name)
	}
	return out, nil
}

// Clone returns a copy of r. It returns nil for a nil readme.
func (r *Readme) Clone() *Readme {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
