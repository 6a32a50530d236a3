// Package project defines the canonical in-memory representation of a
// Python project: the [Root] with its metadata and the [Dependency] entries
// it declares.
//
// Every converter produces a *Root from its source format and serializes a
// *Root back. Roots are plain values: they hold no references into the
// converter or the file they were read from, and [Root.Clone] returns a
// fully independent copy.
//
// # Dependencies
//
// Dependencies are built from parsed PEP 508 requirements through
// [FromRequirement] and attached with [Root.AttachDependencies], which keeps
// them unique by normalized name and extras. Each dependency records the raw
// name of the root that declared it in its Source field.
package project
