package coremeta

import (
	"strings"

	"github.com/matzehuels/depconv/pkg/project"
	"github.com/matzehuels/depconv/pkg/readme"
)

// MetadataVersion is the core-metadata version written by [Encode].
const MetadataVersion = "2.1"

// Field names shared by PKG-INFO and METADATA.
const (
	FieldName            = "Name"
	FieldVersion         = "Version"
	FieldSummary         = "Summary"
	FieldHomePage        = "Home-Page"
	FieldDownloadURL     = "Download-URL"
	FieldProjectURL      = "Project-URL"
	FieldAuthor          = "Author"
	FieldAuthorEmail     = "Author-email"
	FieldMaintainer      = "Maintainer"
	FieldMaintainerEmail = "Maintainer-email"
	FieldLicense         = "License"
	FieldKeywords        = "Keywords"
	FieldClassifier      = "Classifier"
	FieldPlatform        = "Platform"
	FieldRequires        = "Requires"
	FieldRequiresDist    = "Requires-Dist"
	FieldDescription     = "Description"
	FieldDescriptionType = "Description-Content-Type"
	FieldMetadataVersion = "Metadata-Version"
)

var linkFields = []struct {
	kind  project.LinkKind
	field string
}{
	{project.LinkHome, FieldHomePage},
	{project.LinkDownload, FieldDownloadURL},
	{project.LinkProject, FieldProjectURL},
}

// Decode parses a core-metadata document into a root. Requires values come
// before Requires-Dist values; both are parsed as PEP 508 requirements and
// a malformed one fails the whole decode.
//
// A non-empty body, or failing that a Description field, becomes the
// readme.
func Decode(text string) (*project.Root, error) {
	h, body := Parse(text)
	root := project.New(h.Get(FieldName))
	if v := h.Get(FieldVersion); v != "" {
		root.Version = v
	}
	root.Description = h.Get(FieldSummary)
	root.License = h.Get(FieldLicense)
	root.Keywords = SplitKeywords(h.Get(FieldKeywords))
	root.Classifiers = h.Values(FieldClassifier)
	root.Platforms = h.Values(FieldPlatform)

	for _, l := range linkFields {
		root.SetLink(string(l.kind), h.Get(l.field))
	}

	// The maintainer only fills the second slot when an author exists.
	if name := h.Get(FieldAuthor); name != "" {
		root.Authors = append(root.Authors, project.Author{
			Name: name,
			Mail: h.Lookup(FieldAuthorEmail, "author_email"),
		})
		if name := h.Get(FieldMaintainer); name != "" {
			root.Authors = append(root.Authors, project.Author{
				Name: name,
				Mail: h.Lookup(FieldMaintainerEmail, "maintainer_email"),
			})
		}
	}

	reqs := append(h.Values(FieldRequires), h.Values(FieldRequiresDist)...)
	for _, line := range reqs {
		deps, err := project.FromString(root, line)
		if err != nil {
			return nil, err
		}
		root.AttachDependencies(deps...)
	}

	if body == "" {
		body = h.Get(FieldDescription)
	}
	if strings.TrimSpace(body) != "" {
		root.Readme = readme.FromContentType(h.Get(FieldDescriptionType), body)
	}
	return root, nil
}

// Encode writes root as a core-metadata header block. One requiresField
// line is written per entry of reqs; root.Dependencies is not consulted.
// The readme is not included.
func Encode(reqs []project.Dependency, root *project.Root, requiresField string) string {
	var w Writer
	w.Add(FieldMetadataVersion, MetadataVersion)
	w.Add(FieldName, root.RawName)
	w.Add(FieldVersion, root.Version)
	w.Add(FieldSummary, root.Description)
	for _, l := range linkFields {
		w.Add(l.field, root.Link(l.kind))
	}
	if a, ok := root.Author(); ok {
		w.Add(FieldAuthor, a.Name)
		w.Add(FieldAuthorEmail, a.Mail)
	}
	if m, ok := root.Maintainer(); ok {
		w.Add(FieldMaintainer, m.Name)
		w.Add(FieldMaintainerEmail, m.Mail)
	}
	w.Add(FieldLicense, root.License)
	w.Add(FieldKeywords, strings.Join(root.Keywords, ","))
	w.AddAll(FieldClassifier, root.Classifiers)
	w.AddAll(FieldPlatform, root.Platforms)
	for _, d := range reqs {
		w.Add(requiresField, d.String())
	}
	return w.String()
}
