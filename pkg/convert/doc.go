// Package convert defines the converter contract shared by all manifest
// formats and the closed set of formats this module supports.
//
// # Converters
//
// A [Converter] reads a manifest into the canonical [project.Root] and
// writes a root back out:
//
//	c, _ := convert.New(convert.EggInfo)
//	root, err := c.Load("dist/demo-1.0.tar.gz")
//	if err != nil {
//	    return err
//	}
//	text, err := c.Dumps(root.Dependencies, root, "")
//
// Load accepts a path and decides by itself whether it names a directory,
// an archive or a flat file. Loads parses text that has already been read
// and never touches the filesystem. Dumps serializes an explicit dependency
// list, which need not be root.Dependencies, and may update an existing
// document passed as content.
//
// Lock reports whether a format describes a pinned snapshot (a lock file)
// rather than declared constraints. It is informational and does not change
// how a format is parsed.
//
// # Formats
//
// [Format] enumerates the supported formats. [New] is a pure factory: every
// call returns a fresh converter and there is no global registry to mutate.
// [Detect] guesses the format of a path from its name and, for
// pyproject.toml, from its tables.
package convert
