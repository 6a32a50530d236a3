package readme

import (
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Section adornments by heading level, following the Python docs convention.
var headingChars = []byte{'=', '-', '~', '^', '"', '\''}

func markdownToRST(src []byte) string {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	w := &rstWriter{src: src}
	w.blocks(doc)
	return strings.TrimRight(w.b.String(), "\n") + "\n"
}

type rstWriter struct {
	src []byte
	b   strings.Builder
}

func (w *rstWriter) blocks(parent ast.Node) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		w.block(n)
	}
}

func (w *rstWriter) block(n ast.Node) {
	switch n := n.(type) {
	case *ast.Heading:
		title := strings.TrimSpace(w.inline(n))
		level := min(max(n.Level, 1), len(headingChars))
		w.b.WriteString(title + "\n")
		w.b.WriteString(strings.Repeat(string(headingChars[level-1]), utf8.RuneCountInString(title)) + "\n\n")
	case *ast.Paragraph, *ast.TextBlock:
		w.b.WriteString(strings.TrimRight(w.inline(n), "\n") + "\n\n")
	case *ast.FencedCodeBlock:
		if lang := string(n.Language(w.src)); lang != "" {
			w.b.WriteString(".. code-block:: " + lang + "\n\n")
		} else {
			w.b.WriteString("::\n\n")
		}
		w.literal(n)
	case *ast.CodeBlock:
		w.b.WriteString("::\n\n")
		w.literal(n)
	case *ast.HTMLBlock:
		w.b.WriteString(".. raw:: html\n\n")
		w.literal(n)
	case *ast.List:
		w.list(n)
	case *ast.Blockquote:
		inner := &rstWriter{src: w.src}
		inner.blocks(n)
		w.b.WriteString(indent(strings.TrimRight(inner.b.String(), "\n"), "    ") + "\n\n")
	case *ast.ThematicBreak:
		w.b.WriteString("----\n\n")
	default:
		w.blocks(n)
	}
}

func (w *rstWriter) literal(n ast.Node) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(w.src)), "\n")
		if line == "" {
			w.b.WriteString("\n")
			continue
		}
		w.b.WriteString("    " + line + "\n")
	}
	w.b.WriteString("\n")
}

func (w *rstWriter) list(l *ast.List) {
	marker := "- "
	if l.IsOrdered() {
		marker = "#. "
	}
	pad := strings.Repeat(" ", len(marker))
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		inner := &rstWriter{src: w.src}
		inner.blocks(item)
		body := strings.TrimRight(inner.b.String(), "\n")
		if l.IsTight {
			// Tight items are rendered without blank lines between blocks.
			body = strings.ReplaceAll(body, "\n\n", "\n")
		}
		w.b.WriteString(marker + strings.TrimPrefix(indent(body, pad), pad) + "\n")
		if !l.IsTight {
			w.b.WriteString("\n")
		}
	}
	w.b.WriteString("\n")
}

func (w *rstWriter) inline(parent ast.Node) string {
	var b strings.Builder
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Text:
			b.Write(n.Segment.Value(w.src))
			if n.SoftLineBreak() || n.HardLineBreak() {
				b.WriteString("\n")
			}
		case *ast.String:
			b.Write(n.Value)
		case *ast.CodeSpan:
			b.WriteString("``" + w.inline(n) + "``")
		case *ast.Emphasis:
			mark := strings.Repeat("*", min(n.Level, 2))
			b.WriteString(mark + w.inline(n) + mark)
		case *ast.Link:
			label := w.inline(n)
			if label == "" {
				label = string(n.Destination)
			}
			b.WriteString("`" + label + " <" + string(n.Destination) + ">`_")
		case *ast.Image:
			b.WriteString("`" + w.inline(n) + " <" + string(n.Destination) + ">`_")
		case *ast.AutoLink:
			b.Write(n.URL(w.src))
		case *ast.RawHTML:
		default:
			b.WriteString(w.inline(n))
		}
	}
	return b.String()
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
