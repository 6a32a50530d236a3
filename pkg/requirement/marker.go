package requirement

import "strings"

// markerVariables lists the environment markers defined by PEP 508, with
// the legacy dotted spellings of PEP 345 mapped to their modern names.
var markerVariables = map[string]string{
	"implementation_name":            "implementation_name",
	"implementation_version":         "implementation_version",
	"os_name":                        "os_name",
	"platform_machine":               "platform_machine",
	"platform_python_implementation": "platform_python_implementation",
	"platform_release":               "platform_release",
	"platform_system":                "platform_system",
	"platform_version":               "platform_version",
	"python_full_version":            "python_full_version",
	"python_version":                 "python_version",
	"sys_platform":                   "sys_platform",
	"extra":                          "extra",

	"os.name":                        "os_name",
	"sys.platform":                   "sys_platform",
	"platform.version":               "platform_version",
	"platform.machine":               "platform_machine",
	"platform.python_implementation": "platform_python_implementation",
	"python_implementation":          "platform_python_implementation",
}

var markerOps = []string{"===", "==", "!=", "<=", ">=", "~=", "<", ">"}

// ParseMarker validates an environment marker expression and returns its
// canonical rendering: variables use their PEP 508 names, string literals are
// double-quoted, and tokens are separated by single spaces. Explicit
// parentheses are kept.
func ParseMarker(s string) (string, error) {
	m, err := parseMarker(s)
	if err != nil {
		return "", malformed(s, err.Error())
	}
	return m, nil
}

func parseMarker(s string) (string, error) {
	toks, err := tokenizeMarker(s)
	if err != nil {
		return "", err
	}
	if len(toks) == 0 {
		return "", syntaxError("empty marker")
	}
	p := &markerParser{toks: toks}
	node, err := p.parseOr()
	if err != nil {
		return "", err
	}
	if !p.done() {
		return "", syntaxError("unexpected " + quote(p.peek().text) + " in marker")
	}
	return node.render(), nil
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

func tokenizeMarker(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == '"' || c == '\'':
			end := strings.IndexByte(s[i+1:], c)
			if end < 0 {
				return nil, syntaxError("unterminated string in marker")
			}
			toks = append(toks, token{tokString, s[i+1 : i+1+end]})
			i += end + 2
		case strings.ContainsRune("=!<>~", rune(c)):
			op := matchOp(s[i:])
			if op == "" {
				return nil, syntaxError("invalid operator in marker near " + quote(s[i:]))
			}
			toks = append(toks, token{tokOp, op})
			i += len(op)
		case isIdentByte(c):
			j := i
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			toks = append(toks, token{tokIdent, s[i:j]})
			i = j
		default:
			return nil, syntaxError("unexpected character " + quote(string(c)) + " in marker")
		}
	}
	return toks, nil
}

func matchOp(s string) string {
	for _, op := range markerOps {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '.' ||
		'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

type markerNode interface {
	render() string
}

type markerBool struct {
	op          string // "and" or "or"
	left, right markerNode
}

func (n markerBool) render() string {
	return n.left.render() + " " + n.op + " " + n.right.render()
}

type markerGroup struct{ inner markerNode }

func (n markerGroup) render() string { return "(" + n.inner.render() + ")" }

type markerCompare struct {
	lhs, op, rhs string
}

func (n markerCompare) render() string {
	return n.lhs + " " + n.op + " " + n.rhs
}

type markerParser struct {
	toks []token
	pos  int
}

func (p *markerParser) done() bool  { return p.pos >= len(p.toks) }
func (p *markerParser) peek() token { return p.toks[p.pos] }

func (p *markerParser) keyword(word string) bool {
	if !p.done() && p.peek().kind == tokIdent && p.peek().text == word {
		p.pos++
		return true
	}
	return false
}

func (p *markerParser) parseOr() (markerNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.keyword("or") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = markerBool{op: "or", left: left, right: right}
	}
	return left, nil
}

func (p *markerParser) parseAnd() (markerNode, error) {
	left, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	for p.keyword("and") {
		right, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		left = markerBool{op: "and", left: left, right: right}
	}
	return left, nil
}

func (p *markerParser) parseExpr() (markerNode, error) {
	if p.done() {
		return nil, syntaxError("unexpected end of marker")
	}
	if p.peek().kind == tokLParen {
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.done() || p.peek().kind != tokRParen {
			return nil, syntaxError("expected ) in marker")
		}
		p.pos++
		return markerGroup{inner: inner}, nil
	}

	lhs, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	op, err := p.parseOp()
	if err != nil {
		return nil, err
	}
	rhs, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return markerCompare{lhs: lhs, op: op, rhs: rhs}, nil
}

func (p *markerParser) parseValue() (string, error) {
	if p.done() {
		return "", syntaxError("unexpected end of marker")
	}
	tok := p.peek()
	switch tok.kind {
	case tokString:
		p.pos++
		if strings.Contains(tok.text, `"`) {
			return "'" + tok.text + "'", nil
		}
		return `"` + tok.text + `"`, nil
	case tokIdent:
		name, ok := markerVariables[tok.text]
		if !ok {
			return "", syntaxError("unknown marker variable " + quote(tok.text))
		}
		p.pos++
		return name, nil
	}
	return "", syntaxError("expected marker value, got " + quote(tok.text))
}

func (p *markerParser) parseOp() (string, error) {
	if p.done() {
		return "", syntaxError("expected marker operator")
	}
	tok := p.peek()
	switch {
	case tok.kind == tokOp:
		p.pos++
		return tok.text, nil
	case p.keyword("in"):
		return "in", nil
	case p.keyword("not"):
		if !p.keyword("in") {
			return "", syntaxError("expected 'in' after 'not' in marker")
		}
		return "not in", nil
	}
	return "", syntaxError("expected marker operator, got " + quote(tok.text))
}
