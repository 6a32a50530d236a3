package io

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	derrors "github.com/matzehuels/depconv/pkg/errors"
	"github.com/matzehuels/depconv/pkg/project"
	"github.com/matzehuels/depconv/pkg/readme"
)

type document struct {
	Name           string            `json:"name" yaml:"name"`
	NormalizedName string            `json:"normalized_name,omitempty" yaml:"normalized_name,omitempty"`
	Version        string            `json:"version" yaml:"version"`
	Description    string            `json:"description,omitempty" yaml:"description,omitempty"`
	License        string            `json:"license,omitempty" yaml:"license,omitempty"`
	Keywords       []string          `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Classifiers    []string          `json:"classifiers,omitempty" yaml:"classifiers,omitempty"`
	Platforms      []string          `json:"platforms,omitempty" yaml:"platforms,omitempty"`
	Links          map[string]string `json:"links,omitempty" yaml:"links,omitempty"`
	Authors        []author          `json:"authors,omitempty" yaml:"authors,omitempty"`
	Dependencies   []dependency      `json:"dependencies" yaml:"dependencies"`
	Readme         *readmeDoc        `json:"readme,omitempty" yaml:"readme,omitempty"`
}

type author struct {
	Name string `json:"name" yaml:"name"`
	Mail string `json:"mail,omitempty" yaml:"mail,omitempty"`
}

type dependency struct {
	Name        string   `json:"name" yaml:"name"`
	Extras      []string `json:"extras,omitempty" yaml:"extras,omitempty"`
	Version     string   `json:"version,omitempty" yaml:"version,omitempty"`
	Markers     string   `json:"markers,omitempty" yaml:"markers,omitempty"`
	URL         string   `json:"url,omitempty" yaml:"url,omitempty"`
	Requirement string   `json:"requirement" yaml:"requirement"`
}

type readmeDoc struct {
	Name    string `json:"name" yaml:"name"`
	Format  string `json:"format" yaml:"format"`
	Content string `json:"content" yaml:"content"`
}

func fromRoot(root *project.Root) document {
	doc := document{
		Name:           root.RawName,
		NormalizedName: root.Name(),
		Version:        root.Version,
		Description:    root.Description,
		License:        root.License,
		Keywords:       root.Keywords,
		Classifiers:    root.Classifiers,
		Platforms:      root.Platforms,
		Dependencies:   make([]dependency, 0, len(root.Dependencies)),
	}
	if len(root.Links) > 0 {
		doc.Links = make(map[string]string, len(root.Links))
		for k, v := range root.Links {
			doc.Links[string(k)] = v
		}
	}
	for _, a := range root.Authors {
		doc.Authors = append(doc.Authors, author{Name: a.Name, Mail: a.Mail})
	}
	for _, d := range root.Dependencies {
		doc.Dependencies = append(doc.Dependencies, dependency{
			Name:        d.Name,
			Extras:      d.Extras,
			Version:     d.Version,
			Markers:     d.Markers,
			URL:         d.URL,
			Requirement: d.String(),
		})
	}
	if r := root.Readme; r != nil {
		doc.Readme = &readmeDoc{Name: r.Name, Format: string(r.Format), Content: r.Content}
	}
	return doc
}

func (doc document) toRoot() *project.Root {
	root := project.New(doc.Name)
	if doc.Version != "" {
		root.Version = doc.Version
	}
	root.Description = doc.Description
	root.License = doc.License
	root.Keywords = doc.Keywords
	root.Classifiers = doc.Classifiers
	root.Platforms = doc.Platforms
	for k, v := range doc.Links {
		root.SetLink(k, v)
	}
	for _, a := range doc.Authors {
		root.Authors = append(root.Authors, project.Author{Name: a.Name, Mail: a.Mail})
	}
	for _, d := range doc.Dependencies {
		root.Dependencies = append(root.Dependencies, project.Dependency{
			Name:    d.Name,
			Extras:  d.Extras,
			Version: d.Version,
			Markers: d.Markers,
			URL:     d.URL,
			Source:  root.RawName,
		})
	}
	if r := doc.Readme; r != nil {
		root.Readme = &readme.Readme{Name: r.Name, Format: readme.Format(r.Format), Content: r.Content}
	}
	return root
}

// WriteJSON encodes root as indented JSON and writes it to w.
func WriteJSON(root *project.Root, w io.Writer) error {
	if root == nil {
		return derrors.New(derrors.ErrCodeInvalidInput, "nil project")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fromRoot(root)); err != nil {
		return derrors.Wrap(derrors.ErrCodeInternal, err, "encode json")
	}
	return nil
}

// WriteYAML encodes root as YAML and writes it to w.
func WriteYAML(root *project.Root, w io.Writer) error {
	if root == nil {
		return derrors.New(derrors.ErrCodeInvalidInput, "nil project")
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fromRoot(root)); err != nil {
		return derrors.Wrap(derrors.ErrCodeInternal, err, "encode yaml")
	}
	return enc.Close()
}
