package project

import (
	"regexp"
	"strings"
)

var separatorRun = regexp.MustCompile(`[-_.]+`)

// NormalizeName returns the PEP 503 normalized form of a distribution name:
// lower case with every run of "-", "_" and "." replaced by a single "-".
func NormalizeName(name string) string {
	return separatorRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}
