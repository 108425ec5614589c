package wml

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		xml     string
		wantErr bool
		check   func(t *testing.T, root *Node)
	}{
		{
			name: "simple paragraph",
			xml: `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
	<w:body>
		<w:p>
			<w:r>
				<w:t>Hello World</w:t>
			</w:r>
		</w:p>
	</w:body>
</w:document>`,
			check: func(t *testing.T, root *Node) {
				if root.Tag != "w:document" {
					t.Fatalf("root tag = %q, want w:document", root.Tag)
				}
				body := root.FirstChild("w:body")
				if body == nil {
					t.Fatal("missing w:body")
				}
				p := body.FirstChild("w:p")
				if p == nil {
					t.Fatal("missing w:p")
				}
				if got := p.InnerText(); got != "Hello World" {
					t.Errorf("paragraph text = %q, want %q", got, "Hello World")
				}
			},
		},
		{
			name: "interleaved children keep order",
			xml:  `<w:p><w:r><w:t>a</w:t></w:r><w:hyperlink/><w:r><w:t>b</w:t></w:r><w:ins/><w:hyperlink/></w:p>`,
			check: func(t *testing.T, root *Node) {
				want := []string{"w:r", "w:hyperlink", "w:r", "w:ins", "w:hyperlink"}
				if len(root.Children) != len(want) {
					t.Fatalf("child count = %d, want %d", len(root.Children), len(want))
				}
				for i, tag := range want {
					if root.Children[i].Tag != tag {
						t.Errorf("child %d = %q, want %q", i, root.Children[i].Tag, tag)
					}
				}
			},
		},
		{
			name: "attributes decoded and ordered",
			xml:  `<w:t xml:space="preserve" w:note="a &amp; b">  x  </w:t>`,
			check: func(t *testing.T, root *Node) {
				if len(root.Attrs) != 2 || root.Attrs[0].Name != "xml:space" || root.Attrs[1].Name != "w:note" {
					t.Fatalf("attrs = %+v", root.Attrs)
				}
				if v, _ := root.Attr("w:note"); v != "a & b" {
					t.Errorf("w:note = %q, want %q", v, "a & b")
				}
				if root.Text != "  x  " {
					t.Errorf("text = %q, want %q (leaf whitespace preserved)", root.Text, "  x  ")
				}
			},
		},
		{
			name: "entities in text",
			xml:  `<w:t>1 &lt; 2 &amp;&amp; &quot;q&quot; &#65;&#x42;</w:t>`,
			check: func(t *testing.T, root *Node) {
				want := `1 < 2 && "q" AB`
				if root.Text != want {
					t.Errorf("text = %q, want %q", root.Text, want)
				}
			},
		},
		{
			name: "unknown elements preserved opaquely",
			xml:  `<w:p><w14:glow w14:rad="101600"/><mc:AlternateContent><mc:Choice/></mc:AlternateContent></w:p>`,
			check: func(t *testing.T, root *Node) {
				if root.FirstChild("w14:glow") == nil {
					t.Error("w14:glow dropped")
				}
				ac := root.FirstChild("mc:AlternateContent")
				if ac == nil || ac.FirstChild("mc:Choice") == nil {
					t.Error("mc:AlternateContent subtree dropped")
				}
			},
		},
		{
			name:    "size ceiling is fatal",
			xml:     `<w:p>` + strings.Repeat("x", 64) + `</w:p>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &ParseOptions{}
			if tt.wantErr {
				opts.MaxSize = 16
			}
			root, err := Parse(tt.xml, opts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !IsSizeLimitError(err) {
					t.Fatalf("expected SizeLimitError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			tt.check(t, root)
		})
	}
}

func TestParseMalformedSkips(t *testing.T) {
	tests := []struct {
		name      string
		xml       string
		wantDiags int
		check     func(t *testing.T, root *Node)
	}{
		{
			name:      "unclosed wrapper keeps children",
			xml:       `<w:p><w:ins><w:r><w:t>x</w:t></w:r></w:p>`,
			wantDiags: 1,
			check: func(t *testing.T, root *Node) {
				// w:ins never closed: it is skipped, its run survives
				if root.FirstChild("w:ins") != nil {
					t.Error("unclosed w:ins should have been skipped")
				}
				r := root.FirstChild("w:r")
				if r == nil || r.InnerText() != "x" {
					t.Error("wrapped run lost")
				}
			},
		},
		{
			name:      "stray close tag skipped",
			xml:       `<w:p><w:r/></w:del></w:p>`,
			wantDiags: 1,
			check: func(t *testing.T, root *Node) {
				if len(root.Children) != 1 || root.Children[0].Tag != "w:r" {
					t.Errorf("children = %+v", root.Children)
				}
			},
		},
		{
			name:      "extra top-level element skipped",
			xml:       `<w:document></w:document><w:document/>`,
			wantDiags: 1,
			check: func(t *testing.T, root *Node) {
				if root.Tag != "w:document" {
					t.Errorf("root = %q", root.Tag)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var diags []Diagnostic
			root, err := Parse(tt.xml, &ParseOptions{Diagnostics: &diags})
			if err != nil {
				t.Fatalf("Parse() error = %v (malformed input must not error)", err)
			}
			if len(diags) != tt.wantDiags {
				t.Errorf("diagnostics = %d (%v), want %d", len(diags), diags, tt.wantDiags)
			}
			tt.check(t, root)
		})
	}
}

func TestParseWithoutDiagnosticsSinkStillSucceeds(t *testing.T) {
	root, err := Parse(`<w:p><w:r></w:p>`, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if root == nil || root.Tag != "w:p" {
		t.Fatalf("root = %+v", root)
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"no entities", "no entities"},
		{"&amp;&lt;&gt;&quot;&apos;", `&<>"'`},
		{"&#65;&#x41;&#X41;", "AAA"},
		{"&bogus;", "&bogus;"},
		{"trailing &", "trailing &"},
		{"&amp", "&amp"},
	}
	for _, tt := range tests {
		if got := Unescape(tt.in); got != tt.want {
			t.Errorf("Unescape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
