package redline

import (
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// RelationshipsNamespace is the namespace of every .rels part.
const RelationshipsNamespace = "http://schemas.openxmlformats.org/package/2006/relationships"

// Relationship represents a relationship entry in a .rels part
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// relationshipsXML is the wire shape of a .rels part.
type relationshipsXML struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Namespace    string         `xml:"xmlns,attr"`
	Relationship []Relationship `xml:"Relationship"`
}

// RelationshipTable holds the relationship entries of one package part.
// Tables are session-scoped: one loaded document owns its tables exclusively.
type RelationshipTable struct {
	PartName string // the part the table belongs to, e.g. "word/numbering.xml"
	Entries  []Relationship
	dirty    bool
}

// RelsPathFor converts a part name to its relationships part name,
// e.g. "word/document.xml" -> "word/_rels/document.xml.rels".
func RelsPathFor(partName string) string {
	dir := ""
	base := partName
	if idx := strings.LastIndex(partName, "/"); idx != -1 {
		dir = partName[:idx]
		base = partName[idx+1:]
	}
	if dir == "" {
		return fmt.Sprintf("_rels/%s.rels", base)
	}
	return fmt.Sprintf("%s/_rels/%s.rels", dir, base)
}

// ParseRelationships parses a .rels part into a table.
func ParseRelationships(partName string, data []byte) (*RelationshipTable, error) {
	var rels relationshipsXML
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, NewPartError(RelsPathFor(partName), "parse relationships", err)
	}
	return &RelationshipTable{PartName: partName, Entries: rels.Relationship}, nil
}

// NewRelationshipTable returns an empty table for a part.
func NewRelationshipTable(partName string) *RelationshipTable {
	return &RelationshipTable{PartName: partName}
}

// Get returns the entry with the given id.
func (t *RelationshipTable) Get(id string) (Relationship, bool) {
	for _, rel := range t.Entries {
		if rel.ID == id {
			return rel, true
		}
	}
	return Relationship{}, false
}

// Add appends an entry. The caller is responsible for id uniqueness; use
// AddTarget or Duplicate to allocate ids.
func (t *RelationshipTable) Add(rel Relationship) {
	t.Entries = append(t.Entries, rel)
	t.dirty = true
}

// AddTarget adds a new entry for the given type and target, allocating the
// next free sequential id.
func (t *RelationshipTable) AddTarget(relType, target string) string {
	id := t.nextSequentialID()
	t.Add(Relationship{ID: id, Type: relType, Target: target})
	return id
}

// nextSequentialID returns "rId<max+1>" over the existing sequential ids.
func (t *RelationshipTable) nextSequentialID() string {
	maxID := 0
	for _, rel := range t.Entries {
		if strings.HasPrefix(rel.ID, "rId") {
			if num, err := strconv.Atoi(strings.TrimPrefix(rel.ID, "rId")); err == nil && num > maxID {
				maxID = num
			}
		}
	}
	return fmt.Sprintf("rId%d", maxID+1)
}

// FreshID returns a random id of the form the OpenXML SDK generates
// ("R" + 16 hex digits). Random ids cannot collide with sequential ids the
// table has not seen yet, which matters when entries are cloned while a tree
// still holds unvisited references.
func FreshID() string {
	u := uuid.New()
	return "R" + hex.EncodeToString(u[:8])
}

// Duplicate clones the entry with the given id under a fresh random id and
// returns the new id. Returns false when the id is unknown.
func (t *RelationshipTable) Duplicate(id string) (string, bool) {
	rel, ok := t.Get(id)
	if !ok {
		return "", false
	}
	fresh := FreshID()
	for {
		if _, taken := t.Get(fresh); !taken {
			break
		}
		fresh = FreshID()
	}
	rel.ID = fresh
	t.Add(rel)
	return fresh, true
}

// Remove deletes the entry with the given id.
func (t *RelationshipTable) Remove(id string) bool {
	for i, rel := range t.Entries {
		if rel.ID == id {
			t.Entries = append(t.Entries[:i], t.Entries[i+1:]...)
			t.dirty = true
			return true
		}
	}
	return false
}

// Empty reports whether the table has no entries left.
func (t *RelationshipTable) Empty() bool {
	return len(t.Entries) == 0
}

// Dirty reports whether the table changed since load.
func (t *RelationshipTable) Dirty() bool {
	return t.dirty
}

// Bytes serializes the table back into .rels part content.
func (t *RelationshipTable) Bytes() ([]byte, error) {
	rels := relationshipsXML{
		Namespace:    RelationshipsNamespace,
		Relationship: t.Entries,
	}
	body, err := xml.Marshal(rels)
	if err != nil {
		return nil, NewPartError(RelsPathFor(t.PartName), "serialize relationships", err)
	}
	return append([]byte(xml.Header), body...), nil
}
