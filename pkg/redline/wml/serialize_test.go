package wml

import (
	"strings"
	"testing"
)

func TestSerializeOrderPreservation(t *testing.T) {
	// children [A, B, A, C, B] by tag must serialize in exactly that
	// sequence, never regrouped by name
	p := NewNode("w:p")
	for _, tag := range []string{"w:a", "w:b", "w:a", "w:c", "w:b"} {
		p.AppendChild(NewNode(tag))
	}
	got := Serialize(p, nil)
	want := `<w:p><w:a/><w:b/><w:a/><w:c/><w:b/></w:p>`
	if got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeEscaping(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{
			name: "text escapes amp lt gt only",
			node: &Node{Tag: "w:t", Text: `a & b < c > "d" 'e'`},
			want: `<w:t>a &amp; b &lt; c &gt; "d" 'e'</w:t>`,
		},
		{
			name: "attribute escapes quotes too",
			node: &Node{Tag: "w:x", Attrs: []Attr{{Name: "w:val", Value: `a&"b"<'c'>`}}},
			want: `<w:x w:val="a&amp;&quot;b&quot;&lt;&apos;c&apos;&gt;"/>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Serialize(tt.node, nil); got != tt.want {
				t.Errorf("Serialize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSerializeSelfCloseBan(t *testing.T) {
	var fixed []string
	opts := &SerializeOptions{OnSelfCloseFix: func(tag string) { fixed = append(fixed, tag) }}

	p := NewNode("w:p")
	p.AppendChild(NewNode("w:r")) // empty run: denylisted
	p.AppendChild(NewNode("w:br")) // not denylisted

	got := Serialize(p, opts)
	want := `<w:p><w:r></w:r><w:br/></w:p>`
	if got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
	if len(fixed) != 1 || fixed[0] != "w:r" {
		t.Errorf("fix callback saw %v, want [w:r]", fixed)
	}

	for _, tag := range []string{"w:t", "w:p", "w:tc", "w:tr", "w:tbl", "w:hyperlink", "w:sdt", "w:sdtPr", "w:sdtContent", "w:rPr", "w:pPr", "w:sectPr", "w:bookmarkStart", "w:bookmarkEnd", "w:body", "w:document"} {
		out := Serialize(NewNode(tag), nil)
		if strings.Contains(out, "/>") {
			t.Errorf("Serialize(%s) = %q: denylisted tag emitted self-closed", tag, out)
		}
	}
}

func TestSerializeDeclaration(t *testing.T) {
	n := NewNode("w:numbering")
	got := Serialize(n, &SerializeOptions{Declaration: true})
	if !strings.HasPrefix(got, XMLDeclaration) {
		t.Errorf("missing declaration: %q", got)
	}
	// declaration inclusion is the caller's choice
	if strings.Contains(Serialize(n, nil), "<?xml") {
		t.Error("declaration emitted without being requested")
	}
}

func TestRoundTripIdempotence(t *testing.T) {
	// parse(serialize(parse(x))) must be structurally equal to parse(x)
	inputs := []string{
		`<w:document xmlns:w="http://example/w"><w:body><w:p><w:r><w:t xml:space="preserve"> a &amp; b </w:t></w:r><w:hyperlink r:id="rId4"><w:r><w:t>link</w:t></w:r></w:hyperlink><w:r><w:t>tail</w:t></w:r></w:p></w:body></w:document>`,
		`<w:numbering><w:abstractNum w:abstractNumId="0"><w:lvl w:ilvl="0"><w:numFmt w:val="bullet"/><w:lvlText w:val="&#61623;"/></w:lvl></w:abstractNum><w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num></w:numbering>`,
		"<w:body>\n  <w:p>\n    <w:r><w:t>pretty printed</w:t></w:r>\n  </w:p>\n</w:body>",
	}
	for _, in := range inputs {
		first, err := Parse(in, nil)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		out := Serialize(first, nil)
		second, err := Parse(out, nil)
		if err != nil {
			t.Fatalf("reparse error = %v", err)
		}
		if !first.Equal(second) {
			t.Errorf("round trip not idempotent:\n first: %s\nsecond: %s", Serialize(first, nil), Serialize(second, nil))
		}
	}
}

func TestNodeSplice(t *testing.T) {
	p := NewNode("w:p")
	a, b, c := NewNode("w:a"), NewNode("w:b"), NewNode("w:c")
	p.Children = []*Node{a, b, c}

	// replace b with two promoted children, order kept
	x, y := NewNode("w:x"), NewNode("w:y")
	p.ReplaceChildAt(1, x, y)
	want := []string{"w:a", "w:x", "w:y", "w:c"}
	for i, tag := range want {
		if p.Children[i].Tag != tag {
			t.Fatalf("child %d = %q, want %q", i, p.Children[i].Tag, tag)
		}
	}

	// replace with nothing deletes the slot
	p.ReplaceChildAt(0)
	if len(p.Children) != 3 || p.Children[0].Tag != "w:x" {
		t.Errorf("children after delete = %+v", p.Children)
	}
}
