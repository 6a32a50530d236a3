// Package pkg provides the libraries behind depconv, a converter between
// Python package manifest formats.
//
// # Overview
//
// Every format is read into one canonical model and written back out from
// it, so any pair of formats can be converted:
//
//	manifest (egg-info, wheel, pip, poetry, pyproject)
//	         ↓
//	    [convert] Load / Loads
//	         ↓
//	    [project.Root] + [project.Dependency]
//	         ↓
//	    [convert] Dumps
//	         ↓
//	manifest in the target format
//
// # Quick Start
//
//	src, _ := convert.New(convert.EggInfo)
//	root, err := src.Load("dist/demo-1.0.tar.gz")
//	if err != nil {
//	    return err
//	}
//	dst, _ := convert.New(convert.Poetry)
//	text, err := dst.Dumps(root.Dependencies, root, "")
//
// # Packages
//
//   - [requirement]: PEP 508 requirement, specifier and marker parsing
//   - [project]: the canonical project and dependency model
//   - [coremeta]: the RFC 822 style header codec of PKG-INFO and METADATA
//   - [archive]: directories and sdist/wheel archives as globbable trees
//   - [readme]: readme discovery, Markdown to reST and terminal rendering
//   - [convert]: the converter contract, format registry and detection
//   - [io]: JSON and YAML export of the model
//   - [errors]: coded errors shared by all packages
//
// [requirement]: github.com/matzehuels/depconv/pkg/requirement
// [project]: github.com/matzehuels/depconv/pkg/project
// [project.Root]: github.com/matzehuels/depconv/pkg/project.Root
// [project.Dependency]: github.com/matzehuels/depconv/pkg/project.Dependency
// [coremeta]: github.com/matzehuels/depconv/pkg/coremeta
// [archive]: github.com/matzehuels/depconv/pkg/archive
// [readme]: github.com/matzehuels/depconv/pkg/readme
// [convert]: github.com/matzehuels/depconv/pkg/convert
// [io]: github.com/matzehuels/depconv/pkg/io
// [errors]: github.com/matzehuels/depconv/pkg/errors
package pkg
