package wml

import (
	"strings"
	"testing"
)

func TestNextTag(t *testing.T) {
	tests := []struct {
		name string
		s    string
		tag  string
		from int
		want int
	}{
		{
			name: "simple match",
			s:    `<w:body><w:p/></w:body>`,
			tag:  "w:p",
			want: 8,
		},
		{
			name: "does not stop at longer name",
			s:    `<w:pPr><w:jc w:val="left"/></w:pPr><w:p>`,
			tag:  "w:p",
			want: 35,
		},
		{
			name: "respects from offset",
			s:    `<w:r/><w:r/>`,
			tag:  "w:r",
			from: 1,
			want: 6,
		},
		{
			name: "absent tag",
			s:    `<w:body></w:body>`,
			tag:  "w:tbl",
			want: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextTag(tt.s, tt.tag, tt.from); got != tt.want {
				t.Errorf("NextTag() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMatchClose(t *testing.T) {
	tests := []struct {
		name        string
		s           string
		tag         string
		wantContent string
		wantOK      bool
	}{
		{
			name:        "flat element",
			s:           `<w:t>Hello</w:t>`,
			tag:         "w:t",
			wantContent: "Hello",
			wantOK:      true,
		},
		{
			name:        "nested same-named tags",
			s:           `<w:sdt><w:sdtContent><w:sdt><w:sdtContent/></w:sdt></w:sdtContent></w:sdt>`,
			tag:         "w:sdt",
			wantContent: `<w:sdtContent><w:sdt><w:sdtContent/></w:sdt></w:sdtContent>`,
			wantOK:      true,
		},
		{
			name:        "self-closing",
			s:           `<w:br/>`,
			tag:         "w:br",
			wantContent: "",
			wantOK:      true,
		},
		{
			name:        "self-closing inner does not change depth",
			s:           `<w:p><w:p/></w:p>`,
			tag:         "w:p",
			wantContent: `<w:p/>`,
			wantOK:      true,
		},
		{
			name:   "unmatched open yields skip",
			s:      `<w:p><w:r>text`,
			tag:    "w:p",
			wantOK: false,
		},
		{
			name:        "gt inside attribute value",
			s:           `<w:p w:note="a>b"><w:r/></w:p>`,
			tag:         "w:p",
			wantContent: `<w:r/>`,
			wantOK:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := NextTag(tt.s, tt.tag, 0)
			if start < 0 {
				t.Fatalf("NextTag() did not find %q", tt.tag)
			}
			cs, ce, _, ok := MatchClose(tt.s, tt.tag, start)
			if ok != tt.wantOK {
				t.Fatalf("MatchClose() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got := tt.s[cs:ce]; got != tt.wantContent {
				t.Errorf("content = %q, want %q", got, tt.wantContent)
			}
		})
	}
}

func TestAttrValue(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		attr   string
		want   string
		wantOK bool
	}{
		{
			name:   "double quoted",
			s:      `<w:pStyle w:val="Heading1"/>`,
			attr:   "w:val",
			want:   "Heading1",
			wantOK: true,
		},
		{
			name:   "single quoted",
			s:      `<w:pStyle w:val='Heading1'/>`,
			attr:   "w:val",
			want:   "Heading1",
			wantOK: true,
		},
		{
			name:   "second of several",
			s:      `<Relationship Id="rId3" Type="image" Target="media/image1.png"/>`,
			attr:   "Type",
			want:   "image",
			wantOK: true,
		},
		{
			name:   "absent",
			s:      `<w:pStyle w:val="Heading1"/>`,
			attr:   "w:ascii",
			wantOK: false,
		},
		{
			name:   "name prefix does not match",
			s:      `<w:ind w:leftChars="0" w:left="720"/>`,
			attr:   "w:left",
			want:   "720",
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AttrValue(tt.s, 0, tt.attr)
			if ok != tt.wantOK {
				t.Fatalf("AttrValue() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("AttrValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegion(t *testing.T) {
	doc := `<?xml version="1.0"?><w:document><w:body><w:p><w:r><w:t>x</w:t></w:r></w:p></w:body></w:document>`
	body, ok := Region(doc, "w:body")
	if !ok {
		t.Fatal("Region() failed to find w:body")
	}
	if !strings.HasPrefix(body, "<w:body>") || !strings.HasSuffix(body, "</w:body>") {
		t.Errorf("Region() = %q, want full w:body element", body)
	}

	if _, ok := Region(doc, "w:ftr"); ok {
		t.Error("Region() found absent region")
	}
}

func TestInnerRaw(t *testing.T) {
	s := `<w:p><w:t>a &amp; b</w:t></w:p>`
	got, ok := InnerRaw(s, "w:t", 0)
	if !ok {
		t.Fatal("InnerRaw() failed")
	}
	// raw text: entities are not decoded at this layer
	if got != "a &amp; b" {
		t.Errorf("InnerRaw() = %q, want %q", got, "a &amp; b")
	}
}

func TestIsSelfClosing(t *testing.T) {
	if !IsSelfClosing(`<w:br/>`, 0) {
		t.Error("expected self-closing")
	}
	if IsSelfClosing(`<w:t></w:t>`, 0) {
		t.Error("expected not self-closing")
	}
}
