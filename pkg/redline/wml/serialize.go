package wml

import "strings"

// XMLDeclaration is the declaration Word writes at the start of every part.
const XMLDeclaration = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`

// neverSelfClose lists element names Word refuses to parse in self-closed
// form. An empty element with one of these names is always rendered as a
// matching open/close pair.
var neverSelfClose = map[string]bool{
	"w:t":             true,
	"w:r":             true,
	"w:p":             true,
	"w:tbl":           true,
	"w:tr":            true,
	"w:tc":            true,
	"w:document":      true,
	"w:body":          true,
	"w:hyperlink":     true,
	"w:sdt":           true,
	"w:sdtPr":         true,
	"w:sdtContent":    true,
	"w:rPr":           true,
	"w:pPr":           true,
	"w:sectPr":        true,
	"w:bookmarkStart": true,
	"w:bookmarkEnd":   true,
}

// NeverSelfClose reports whether the tag is banned from self-closed form.
func NeverSelfClose(tag string) bool {
	return neverSelfClose[tag]
}

// SerializeOptions controls rendering. The zero value emits no declaration
// and logs nothing.
type SerializeOptions struct {
	// Declaration prepends the standard XML declaration.
	Declaration bool
	// OnSelfCloseFix, when non-nil, is called with the tag name each time an
	// empty denylisted element is corrected to an open/close pair. The
	// correction itself is unconditional.
	OnSelfCloseFix func(tag string)
}

// Serialize renders the tree rooted at n back into part text. Children are
// rendered strictly in sequence order. Attribute values and element text use
// different escaping: quotes in visible text are left alone because escaping
// them would corrupt content.
func Serialize(n *Node, opts *SerializeOptions) string {
	var b strings.Builder
	if opts != nil && opts.Declaration {
		b.WriteString(XMLDeclaration)
		b.WriteByte('\n')
	}
	render(&b, n, opts)
	return b.String()
}

func render(b *strings.Builder, n *Node, opts *SerializeOptions) {
	b.WriteByte('<')
	b.WriteString(n.Tag)
	for _, a := range n.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(EscapeAttr(a.Value))
		b.WriteByte('"')
	}
	if len(n.Children) == 0 && n.Text == "" {
		if neverSelfClose[n.Tag] {
			if opts != nil && opts.OnSelfCloseFix != nil {
				opts.OnSelfCloseFix(n.Tag)
			}
			b.WriteString("></")
			b.WriteString(n.Tag)
			b.WriteByte('>')
		} else {
			b.WriteString("/>")
		}
		return
	}
	b.WriteByte('>')
	if len(n.Children) > 0 {
		for _, c := range n.Children {
			render(b, c, opts)
		}
	} else {
		b.WriteString(Escape(n.Text))
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
)

// Escape escapes element text content: only & < > are replaced.
func Escape(s string) string {
	return textEscaper.Replace(s)
}

// EscapeAttr escapes an attribute value: & < > " ' are all replaced.
func EscapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
