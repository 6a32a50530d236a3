package requirement

import (
	"regexp"
	"strings"

	version "github.com/aquasecurity/go-pep440-version"
)

var clauseRE = regexp.MustCompile(`^(~=|===|==|!=|<=|>=|<|>)\s*([^\s,;()]+)$`)

// ParseSpecifier validates a comma-separated list of version clauses and
// returns it in canonical form (clauses in input order, no whitespace).
// An optional pair of surrounding parentheses is removed. The empty string
// is a valid, unconstrained specifier.
func ParseSpecifier(s string) (string, error) {
	spec, err := parseSpecifier(s)
	if err != nil {
		return "", malformed(s, err.Error())
	}
	return spec, nil
}

func parseSpecifier(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") {
		if !strings.HasSuffix(s, ")") {
			return "", syntaxError("unclosed parenthesis in version specifier")
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		return "", nil
	}

	clauses := strings.Split(s, ",")
	for i, raw := range clauses {
		clause, err := parseClause(strings.TrimSpace(raw))
		if err != nil {
			return "", err
		}
		clauses[i] = clause
	}
	return strings.Join(clauses, ","), nil
}

func parseClause(s string) (string, error) {
	m := clauseRE.FindStringSubmatch(s)
	if m == nil {
		return "", syntaxError("invalid version clause " + quote(s))
	}
	op, ver := m[1], m[2]

	// Arbitrary equality compares strings and accepts any version text.
	if op == "===" {
		return op + ver, nil
	}

	check := ver
	if strings.HasSuffix(ver, ".*") {
		if op != "==" && op != "!=" {
			return "", syntaxError("wildcard only allowed with == and != in " + quote(s))
		}
		check = strings.TrimSuffix(ver, ".*")
	}
	if op == "~=" && !strings.Contains(check, ".") {
		return "", syntaxError("~= requires at least two release segments in " + quote(s))
	}
	if _, err := version.Parse(check); err != nil {
		return "", syntaxError("invalid version " + quote(ver) + ": " + err.Error())
	}
	return op + ver, nil
}
