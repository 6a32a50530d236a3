// The globstar matcher below is adapted from the glob package of
// google/oss-rebuild (internal/glob/glob.go), Copyright 2025 Google LLC,
// licensed under the Apache License, Version 2.0.
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"errors"
	"path"
	"strings"
)

// Match reports whether name matches the shell pattern. In addition to the
// syntax accepted by [path.Match], the pattern may contain a single "**"
// segment that matches zero or more directory levels. "**" must be bounded
// by slashes or by the start or end of the pattern.
func Match(pattern, name string) (bool, error) {
	if !strings.Contains(pattern, "**") {
		return path.Match(pattern, name)
	}
	if err := validatePattern(pattern); err != nil {
		return false, err
	}

	prefix, suffix, _ := strings.Cut(pattern, "**")
	if prefix != "" {
		end := prefixEnd(name, strings.Count(prefix, "/"))
		if end < 0 {
			return false, nil
		}
		if ok, err := path.Match(prefix, name[:end]); err != nil || !ok {
			return false, err
		}
		name = name[end:]
	}

	suffix = strings.TrimPrefix(suffix, "/")
	if suffix == "" {
		return true, nil
	}
	// The suffix spans a fixed number of trailing segments; "**" absorbs
	// whatever is left in front of them.
	start := suffixStart(name, strings.Count(suffix, "/")+1)
	if start < 0 {
		return false, nil
	}
	return path.Match(suffix, name[start:])
}

func validatePattern(pattern string) error {
	if strings.Count(pattern, "**") > 1 {
		return errors.New("invalid pattern: only one '**' is permitted")
	}
	i := strings.Index(pattern, "**")
	if i < 0 {
		_, err := path.Match(pattern, "")
		return err
	}
	if i > 0 && pattern[i-1] != '/' || i+2 < len(pattern) && pattern[i+2] != '/' {
		return errors.New("invalid pattern: '**' must be surrounded by slashes or be at start/end of pattern")
	}
	return nil
}

// prefixEnd returns the index just past the n-th slash of name, or -1.
func prefixEnd(name string, n int) int {
	if n == 0 {
		return 0
	}
	seen := 0
	for i := 0; i < len(name); i++ {
		if name[i] == '/' {
			seen++
			if seen == n {
				return i + 1
			}
		}
	}
	return -1
}

// suffixStart returns the index where the last n segments of name begin,
// or -1 when name has fewer segments.
func suffixStart(name string, n int) int {
	seen := 0
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' {
			seen++
			if seen == n {
				return i + 1
			}
		}
	}
	if seen == n-1 {
		return 0
	}
	return -1
}
