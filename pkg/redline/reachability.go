package redline

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// numIDQuery matches every numbering-instance reference a paragraph can
// carry, regardless of namespace prefix binding in the part.
var numIDQuery = xpath.MustCompile("//*[local-name()='numPr']/*[local-name()='numId']")

// IsReachablePart reports whether paragraphs in the named part count as live
// references for garbage collection. Main body, headers, footers, footnotes,
// and endnotes all count equally.
func IsReachablePart(name string) bool {
	if name == DocumentPartName || name == "word/footnotes.xml" || name == "word/endnotes.xml" {
		return true
	}
	if !strings.HasPrefix(name, "word/") || !strings.HasSuffix(name, ".xml") {
		return false
	}
	base := strings.TrimSuffix(strings.TrimPrefix(name, "word/"), ".xml")
	return strings.HasPrefix(base, "header") || strings.HasPrefix(base, "footer")
}

// usedNumberingIDs scans the given parts for numbering-instance references
// and returns the set of live ids. Parts that fail to parse contribute
// nothing; reachability stays best-effort.
func usedNumberingIDs(parts map[string][]byte) map[int]bool {
	live := make(map[int]bool)
	for name, data := range parts {
		if !IsReachablePart(name) {
			continue
		}
		doc, err := xmlquery.Parse(bytes.NewReader(data))
		if err != nil {
			GetLogger().Warn("reachability scan skipped %s: %v", name, err)
			continue
		}
		for _, node := range xmlquery.QuerySelectorAll(doc, numIDQuery) {
			for _, attr := range node.Attr {
				if attr.Name.Local != "val" {
					continue
				}
				if id, err := strconv.Atoi(attr.Value); err == nil {
					live[id] = true
				}
			}
		}
	}
	return live
}
