// Package coremeta reads and writes Python core-metadata documents
// (PKG-INFO, METADATA): an RFC 822 style header block optionally followed
// by a free-form body.
//
// Parsing is lenient: keys keep their spelling, lookups are
// case-insensitive, lines without a colon are ignored, and a missing
// trailing newline is accepted.
package coremeta

import (
	"strings"

	"github.com/matzehuels/depconv/pkg/project"
)

// Field is one header line.
type Field struct {
	Key   string
	Value string
}

// Header is an ordered list of fields. Keys may repeat.
type Header struct {
	Fields []Field
}

// Parse splits text into its header block and body. The header ends at the
// first blank line; indented lines continue the previous field.
func Parse(text string) (*Header, string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	h := &Header{}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			if len(h.Fields) == 0 {
				continue
			}
			return h, strings.Trim(strings.Join(lines[i+1:], "\n"), "\n")
		}
		if line[0] == ' ' || line[0] == '\t' {
			if n := len(h.Fields); n > 0 {
				h.Fields[n-1].Value += "\n" + strings.TrimSpace(line)
			}
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		h.Fields = append(h.Fields, Field{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
	}
	return h, ""
}

// Get returns the first value stored under key, with UNKNOWN and blank
// values reported as "".
func (h *Header) Get(key string) string {
	for _, f := range h.Fields {
		if strings.EqualFold(f.Key, key) {
			return project.Clean(f.Value)
		}
	}
	return ""
}

// Lookup returns the first non-empty value among the given key spellings.
func (h *Header) Lookup(keys ...string) string {
	for _, k := range keys {
		if v := h.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// Values returns every non-empty value stored under key, in order.
func (h *Header) Values(key string) []string {
	var out []string
	for _, f := range h.Fields {
		if !strings.EqualFold(f.Key, key) {
			continue
		}
		if v := project.Clean(f.Value); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Has reports whether key occurs in the header.
func (h *Header) Has(key string) bool {
	for _, f := range h.Fields {
		if strings.EqualFold(f.Key, key) {
			return true
		}
	}
	return false
}

// SplitKeywords splits a comma-separated Keywords value, dropping blanks.
func SplitKeywords(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Writer accumulates header lines in insertion order.
type Writer struct {
	lines []string
}

// Add appends "key: value". Empty values are skipped.
func (w *Writer) Add(key, value string) {
	if value == "" {
		return
	}
	w.lines = append(w.lines, key+": "+value)
}

// AddAll appends one line per non-empty value.
func (w *Writer) AddAll(key string, values []string) {
	for _, v := range values {
		w.Add(key, v)
	}
}

// String joins the lines with "\n", without a trailing newline.
func (w *Writer) String() string {
	return strings.Join(w.lines, "\n")
}
