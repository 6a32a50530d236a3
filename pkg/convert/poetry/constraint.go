package poetry

import (
	"regexp"
	"strconv"
	"strings"

	derrors "github.com/matzehuels/depconv/pkg/errors"
	"github.com/matzehuels/depconv/pkg/requirement"
)

var clauseRE = regexp.MustCompile(`(\^|~=|~|===|==|!=|<=|>=|<|>|=)?\s*([0-9*][^\s,]*)`)

// ToPEP440 translates a Poetry version constraint into a PEP 440
// specifier. Caret and tilde requirements become explicit ranges, a bare
// version becomes an exact match, and "*" means unconstrained. Alternatives
// joined with "||" cannot be expressed and are rejected.
func ToPEP440(constraint string) (string, error) {
	c := strings.TrimSpace(constraint)
	if c == "" || c == "*" {
		return "", nil
	}
	if strings.Contains(c, "||") {
		return "", derrors.New(derrors.ErrCodeUnsupported, "alternative constraints are not supported: %q", constraint)
	}

	var clauses []string
	for _, m := range clauseRE.FindAllStringSubmatch(c, -1) {
		op, ver := m[1], m[2]
		switch {
		case ver == "*":
			continue
		case op == "^":
			clauses = append(clauses, ">="+ver, "<"+bump(ver, caretIndex(ver)))
		case op == "~":
			clauses = append(clauses, ">="+ver, "<"+bump(ver, tildeIndex(ver)))
		case op == "" || op == "=":
			clauses = append(clauses, "=="+ver)
		default:
			clauses = append(clauses, op+ver)
		}
	}
	spec, err := requirement.ParseSpecifier(strings.Join(clauses, ","))
	if err != nil {
		return "", derrors.Wrap(derrors.ErrCodeMalformedRequirement, err, "constraint %q", constraint)
	}
	return spec, nil
}

// PythonMarker translates a Poetry python constraint into an environment
// marker over python_version.
func PythonMarker(constraint string) (string, error) {
	spec, err := ToPEP440(constraint)
	if err != nil || spec == "" {
		return "", err
	}
	var parts []string
	for _, clause := range strings.Split(spec, ",") {
		i := strings.IndexAny(clause, "0123456789")
		parts = append(parts, "python_version "+clause[:i]+` "`+clause[i:]+`"`)
	}
	return strings.Join(parts, " and "), nil
}

func releaseParts(ver string) []string {
	return strings.Split(ver, ".")
}

// caretIndex returns the segment a caret requirement may not change: the
// first non-zero one, or the last one when all are zero.
func caretIndex(ver string) int {
	parts := releaseParts(ver)
	for i, p := range parts {
		if leadingInt(p) != 0 {
			return i
		}
	}
	return len(parts) - 1
}

func tildeIndex(ver string) int {
	if len(releaseParts(ver)) >= 2 {
		return 1
	}
	return 0
}

// bump increments segment i of ver and zeroes the segments after it,
// keeping the number of segments.
func bump(ver string, i int) string {
	parts := releaseParts(ver)
	out := make([]string, len(parts))
	for j := range parts {
		switch {
		case j < i:
			out[j] = strconv.Itoa(leadingInt(parts[j]))
		case j == i:
			out[j] = strconv.Itoa(leadingInt(parts[j]) + 1)
		default:
			out[j] = "0"
		}
	}
	return strings.Join(out, ".")
}

func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}
