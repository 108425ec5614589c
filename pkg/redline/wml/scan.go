package wml

import "strings"

// DefaultMaxPartSize is the size ceiling applied to a part before any
// scanning happens. Parts larger than this are rejected outright: unbounded
// scan time on adversarial input is never acceptable.
const DefaultMaxPartSize = 10 * 1024 * 1024

// The scanner locates tag and attribute boundaries by explicit index
// arithmetic. It never delegates to a pattern engine that could backtrack,
// and it tracks nesting depth so a tag finds its own matching close even when
// same-named tags nest.

// isNameEnd reports whether c can terminate a tag name inside markup.
func isNameEnd(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '/', '>':
		return true
	}
	return false
}

// NextTag returns the index of the next opening tag with the given name at or
// after from, or -1. The match is exact: searching for "w:p" does not stop at
// "w:pPr".
func NextTag(s, tag string, from int) int {
	probe := "<" + tag
	for i := from; i <= len(s)-len(probe); {
		j := strings.Index(s[i:], probe)
		if j < 0 {
			return -1
		}
		p := i + j
		e := p + len(probe)
		if e < len(s) && isNameEnd(s[e]) {
			return p
		}
		i = p + 1
	}
	return -1
}

// TagEnd returns the index of the '>' closing the markup that starts at
// start, skipping '>' characters inside quoted attribute values. Returns -1
// when the markup never closes.
func TagEnd(s string, start int) int {
	var quote byte
	for i := start; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '>':
			return i
		}
	}
	return -1
}

// IsSelfClosing reports whether the open tag starting at start is written in
// self-closed form.
func IsSelfClosing(s string, start int) bool {
	end := TagEnd(s, start)
	return end > start && s[end-1] == '/'
}

// MatchClose locates the matching close of the open tag at start. It returns
// the content span [contentStart, closeStart) and the index one past the
// whole element. For a self-closed tag the content span is empty. ok is false
// when the close tag is missing, which callers treat as a skip rather than an
// error.
func MatchClose(s, tag string, start int) (contentStart, closeStart, elemEnd int, ok bool) {
	openEnd := TagEnd(s, start)
	if openEnd < 0 {
		return 0, 0, 0, false
	}
	if s[openEnd-1] == '/' {
		return openEnd + 1, openEnd + 1, openEnd + 1, true
	}
	contentStart = openEnd + 1
	closeProbe := "</" + tag
	depth := 1
	i := contentStart
	for {
		nextOpen := NextTag(s, tag, i)
		nextClose := indexCloseTag(s, closeProbe, i)
		if nextClose < 0 {
			return 0, 0, 0, false
		}
		if nextOpen >= 0 && nextOpen < nextClose {
			if !IsSelfClosing(s, nextOpen) {
				depth++
			}
			i = TagEnd(s, nextOpen) + 1
			continue
		}
		depth--
		if depth == 0 {
			end := TagEnd(s, nextClose)
			if end < 0 {
				return 0, 0, 0, false
			}
			return contentStart, nextClose, end + 1, true
		}
		i = TagEnd(s, nextClose) + 1
	}
}

// indexCloseTag finds the next "</tag>" at or after from, tolerating
// whitespace before '>'.
func indexCloseTag(s, closeProbe string, from int) int {
	for i := from; ; {
		j := strings.Index(s[i:], closeProbe)
		if j < 0 {
			return -1
		}
		p := i + j
		e := p + len(closeProbe)
		if e < len(s) && (s[e] == '>' || s[e] == ' ' || s[e] == '\t' || s[e] == '\r' || s[e] == '\n') {
			return p
		}
		i = p + 1
	}
}

// InnerRaw returns the raw text between the next matched tag pair at or
// after from. ok is false when the tag is absent or unmatched.
func InnerRaw(s, tag string, from int) (string, bool) {
	start := NextTag(s, tag, from)
	if start < 0 {
		return "", false
	}
	cs, ce, _, ok := MatchClose(s, tag, start)
	if !ok {
		return "", false
	}
	return s[cs:ce], true
}

// Region extracts one named top-level region of a part, e.g. the w:body of a
// document part, including its own open and close tags.
func Region(s, tag string) (string, bool) {
	start := NextTag(s, tag, 0)
	if start < 0 {
		return "", false
	}
	_, _, end, ok := MatchClose(s, tag, start)
	if !ok {
		return "", false
	}
	return s[start:end], true
}

// AttrValue extracts the named attribute's value from the open tag starting
// at start. The raw value is returned without entity decoding; Parse decodes
// entities when it builds the tree.
func AttrValue(s string, start int, name string) (string, bool) {
	end := TagEnd(s, start)
	if end < 0 {
		return "", false
	}
	attrs := parseAttrs(s[start+1 : end])
	for _, a := range attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// parseAttrs parses "name attr=\"v\" ..." markup content (without angle
// brackets) into attributes. The leading tag name and a trailing '/' are
// skipped. Malformed trailing fragments are dropped.
func parseAttrs(markup string) []Attr {
	var attrs []Attr
	i := 0
	// skip tag name
	for i < len(markup) && !isSpace(markup[i]) {
		i++
	}
	for i < len(markup) {
		for i < len(markup) && isSpace(markup[i]) {
			i++
		}
		if i >= len(markup) || markup[i] == '/' {
			break
		}
		nameStart := i
		for i < len(markup) && markup[i] != '=' && !isSpace(markup[i]) {
			i++
		}
		name := markup[nameStart:i]
		for i < len(markup) && isSpace(markup[i]) {
			i++
		}
		if i >= len(markup) || markup[i] != '=' {
			// attribute without value; not used by WML, preserved as empty
			if name != "" {
				attrs = append(attrs, Attr{Name: name})
			}
			continue
		}
		i++
		for i < len(markup) && isSpace(markup[i]) {
			i++
		}
		if i >= len(markup) || (markup[i] != '"' && markup[i] != '\'') {
			break
		}
		quote := markup[i]
		i++
		valStart := i
		for i < len(markup) && markup[i] != quote {
			i++
		}
		if i >= len(markup) {
			break
		}
		attrs = append(attrs, Attr{Name: name, Value: markup[valStart:i]})
		i++
	}
	return attrs
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
