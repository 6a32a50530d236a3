// Package io exports and imports the canonical project model.
//
// # Format
//
// A [project.Root] is written as a flat document:
//
//	{
//	  "name": "Demo_Pkg",
//	  "normalized_name": "demo-pkg",
//	  "version": "1.0",
//	  "links": {"home": "https://demo.test"},
//	  "authors": [{"name": "Ann", "mail": "ann@demo.test"}],
//	  "dependencies": [
//	    {"name": "six", "version": ">=1.10", "requirement": "six>=1.10"}
//	  ]
//	}
//
// Empty fields are omitted. Each dependency carries its rendered
// requirement line for readers that do not care about the individual
// fields. The readme is included with its format but without rendering.
//
// # Export
//
// [WriteJSON] and [WriteYAML] encode to any io.Writer. JSON is indented
// with two spaces so the output diffs cleanly.
//
// # Import
//
// [ReadJSON] decodes a JSON document back into a root. Dependencies are
// attributed to the decoded root and the result is validated the same way
// a converter validates what it loads.
package io
