package wml

import (
	"fmt"
	"strconv"
	"strings"
)

// SizeLimitError is the only fatal parse failure: the part is larger than
// the configured ceiling and is rejected before any scanning happens.
type SizeLimitError struct {
	Size  int
	Limit int
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("part size %d exceeds limit %d", e.Size, e.Limit)
}

// IsSizeLimitError checks if an error is a size limit error.
func IsSizeLimitError(err error) bool {
	_, ok := err.(*SizeLimitError)
	return ok
}

// Diagnostic records one malformed construct the parser skipped. Diagnostics
// are values, not errors: the enclosing part still parses.
type Diagnostic struct {
	Offset int
	Tag    string
	Reason string
}

func (d Diagnostic) String() string {
	if d.Tag != "" {
		return fmt.Sprintf("offset %d <%s>: %s", d.Offset, d.Tag, d.Reason)
	}
	return fmt.Sprintf("offset %d: %s", d.Offset, d.Reason)
}

// ParseOptions controls parsing. The zero value applies the default size
// ceiling and collects no diagnostics.
type ParseOptions struct {
	// MaxSize is the part size ceiling in bytes. 0 means DefaultMaxPartSize;
	// negative disables the check.
	MaxSize int
	// Diagnostics, when non-nil, receives a record for every skipped
	// malformed construct.
	Diagnostics *[]Diagnostic
}

func (o *ParseOptions) limit() int {
	if o == nil || o.MaxSize == 0 {
		return DefaultMaxPartSize
	}
	return o.MaxSize
}

func (o *ParseOptions) diag(d Diagnostic) {
	if o != nil && o.Diagnostics != nil {
		*o.Diagnostics = append(*o.Diagnostics, d)
	}
}

// Parse builds an element tree from raw part text. The XML declaration,
// comments, and doctype are skipped. The first top-level element becomes the
// root; malformed constructs degrade to skips recorded in the diagnostics
// sink, never to errors. The only error returned is the size ceiling.
//
// While an element is open, raw text accumulates on the node; when it closes,
// a leaf keeps the decoded text and a parent discards interstitial whitespace
// (WML has no mixed content, so non-whitespace text next to element children
// is diagnosed and dropped).
func Parse(content string, opts *ParseOptions) (*Node, error) {
	if limit := opts.limit(); limit > 0 && len(content) > limit {
		return nil, &SizeLimitError{Size: len(content), Limit: limit}
	}

	var root *Node
	var stack []*Node

	appendText := func(raw string) {
		if len(stack) > 0 && raw != "" {
			top := stack[len(stack)-1]
			top.Text += raw
		}
	}

	i := 0
	for i < len(content) {
		lt := strings.IndexByte(content[i:], '<')
		if lt < 0 {
			appendText(content[i:])
			break
		}
		lt += i
		appendText(content[i:lt])
		i = lt

		switch {
		case strings.HasPrefix(content[i:], "<?"):
			end := strings.Index(content[i:], "?>")
			if end < 0 {
				opts.diag(Diagnostic{Offset: i, Reason: "unterminated processing instruction"})
				i = len(content)
				continue
			}
			i += end + 2
		case strings.HasPrefix(content[i:], "<!--"):
			end := strings.Index(content[i:], "-->")
			if end < 0 {
				opts.diag(Diagnostic{Offset: i, Reason: "unterminated comment"})
				i = len(content)
				continue
			}
			i += end + 3
		case strings.HasPrefix(content[i:], "<![CDATA["):
			end := strings.Index(content[i:], "]]>")
			if end < 0 {
				opts.diag(Diagnostic{Offset: i, Reason: "unterminated CDATA section"})
				i = len(content)
				continue
			}
			// CDATA text is already literal; re-escape so the shared
			// finalize path can decode uniformly
			appendText(Escape(content[i+9 : i+end]))
			i += end + 3
		case strings.HasPrefix(content[i:], "<!"):
			end := TagEnd(content, i)
			if end < 0 {
				i = len(content)
				continue
			}
			i = end + 1
		case strings.HasPrefix(content[i:], "</"):
			end := TagEnd(content, i)
			if end < 0 {
				opts.diag(Diagnostic{Offset: i, Reason: "unterminated close tag"})
				i = len(content)
				continue
			}
			name := strings.TrimSpace(content[i+2 : end])
			closeElement(&stack, name, i, opts)
			i = end + 1
		default:
			end := TagEnd(content, i)
			if end < 0 {
				opts.diag(Diagnostic{Offset: i, Reason: "unterminated open tag"})
				i = len(content)
				continue
			}
			markup := content[i+1 : end]
			selfClose := strings.HasSuffix(markup, "/")
			if selfClose {
				markup = markup[:len(markup)-1]
			}
			name := markup
			if sp := strings.IndexFunc(markup, func(r rune) bool { return r == ' ' || r == '\t' || r == '\r' || r == '\n' }); sp >= 0 {
				name = markup[:sp]
			}
			if name == "" {
				opts.diag(Diagnostic{Offset: i, Reason: "empty tag name"})
				i = end + 1
				continue
			}
			node := &Node{Tag: name, Attrs: decodeAttrs(parseAttrs(markup))}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.AppendChild(node)
			} else if root == nil {
				root = node
			} else {
				opts.diag(Diagnostic{Offset: i, Tag: name, Reason: "extra top-level element skipped"})
				i = end + 1
				continue
			}
			if !selfClose {
				stack = append(stack, node)
			}
			i = end + 1
		}
	}

	// unclosed elements at EOF: the wrappers are skipped, their children kept
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		opts.diag(Diagnostic{Offset: len(content), Tag: top.Tag, Reason: "unclosed element"})
		finalizeNode(top, len(content), opts)
		promoteSkipped(stack, top)
	}

	if root == nil {
		opts.diag(Diagnostic{Offset: 0, Reason: "no root element"})
		return &Node{}, nil
	}
	return root, nil
}

// finalizeNode settles the accumulated raw text when an element closes.
func finalizeNode(n *Node, offset int, opts *ParseOptions) {
	if len(n.Children) > 0 {
		if strings.TrimSpace(n.Text) != "" {
			opts.diag(Diagnostic{Offset: offset, Tag: n.Tag, Reason: "mixed element/text content; text discarded"})
		}
		n.Text = ""
		return
	}
	if n.Text != "" {
		n.Text = Unescape(n.Text)
	}
}

// closeElement pops the stack for a close tag. A close tag matching a deeper
// ancestor skips the intervening unmatched wrappers (their children are
// promoted); a close tag matching nothing is itself skipped.
func closeElement(stack *[]*Node, name string, offset int, opts *ParseOptions) {
	s := *stack
	match := -1
	for j := len(s) - 1; j >= 0; j-- {
		if s[j].Tag == name {
			match = j
			break
		}
	}
	if match < 0 {
		opts.diag(Diagnostic{Offset: offset, Tag: name, Reason: "close tag without open"})
		return
	}
	for len(s) > match+1 {
		top := s[len(s)-1]
		s = s[:len(s)-1]
		opts.diag(Diagnostic{Offset: offset, Tag: top.Tag, Reason: "unclosed element"})
		finalizeNode(top, offset, opts)
		promoteSkipped(s, top)
	}
	finalizeNode(s[match], offset, opts)
	*stack = s[:match]
}

// promoteSkipped replaces an unmatched wrapper with its own children in its
// parent, keeping sibling order. The wrapper degrades to partial data instead
// of aborting the part.
func promoteSkipped(stack []*Node, skipped *Node) {
	if len(stack) == 0 {
		return
	}
	parent := stack[len(stack)-1]
	for i, c := range parent.Children {
		if c == skipped {
			parent.ReplaceChildAt(i, skipped.Children...)
			return
		}
	}
}

func decodeAttrs(attrs []Attr) []Attr {
	for i := range attrs {
		if strings.IndexByte(attrs[i].Value, '&') >= 0 {
			attrs[i].Value = Unescape(attrs[i].Value)
		}
	}
	return attrs
}

// Unescape decodes the XML entity references &amp; &lt; &gt; &quot; &apos;
// and numeric character references. Unknown entities pass through verbatim.
func Unescape(s string) string {
	amp := strings.IndexByte(s, '&')
	if amp < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(s[:amp])
	for i := amp; i < len(s); {
		c := s[i]
		if c != '&' {
			b.WriteByte(c)
			i++
			continue
		}
		semi := strings.IndexByte(s[i:], ';')
		if semi < 0 || semi > 12 {
			b.WriteByte(c)
			i++
			continue
		}
		ent := s[i+1 : i+semi]
		switch ent {
		case "amp":
			b.WriteByte('&')
		case "lt":
			b.WriteByte('<')
		case "gt":
			b.WriteByte('>')
		case "quot":
			b.WriteByte('"')
		case "apos":
			b.WriteByte('\'')
		default:
			if strings.HasPrefix(ent, "#") {
				var n int64
				var err error
				if strings.HasPrefix(ent, "#x") || strings.HasPrefix(ent, "#X") {
					n, err = strconv.ParseInt(ent[2:], 16, 32)
				} else {
					n, err = strconv.ParseInt(ent[1:], 10, 32)
				}
				if err == nil && n > 0 {
					b.WriteRune(rune(n))
					i += semi + 1
					continue
				}
			}
			b.WriteByte('&')
			i++
			continue
		}
		i += semi + 1
	}
	return b.String()
}
