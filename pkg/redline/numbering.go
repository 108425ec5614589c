package redline

import (
	"sort"
	"strconv"

	"github.com/jslattery/go-redline/pkg/redline/wml"
)

// MaxNumberingLevels is the number of indent levels a definition can carry.
const MaxNumberingLevels = 9

// NumberingLevel is one indent level of an abstract numbering definition.
// Fields mirror the structural content that matters for fingerprinting.
type NumberingLevel struct {
	Index         int
	Start         string
	Format        string // w:numFmt
	Text          string // w:lvlText
	Align         string // w:lvlJc
	IndentLeft    string // w:pPr/w:ind w:left
	IndentHanging string // w:pPr/w:ind w:hanging
	FontASCII     string // w:rPr/w:rFonts w:ascii
	FontHAnsi     string // w:rPr/w:rFonts w:hAnsi
	ParaStyle     string // w:pStyle
	PictBulletID  int    // w:lvlPicBulletId, -1 when absent
}

// AbstractNum is a reusable numbering definition: per-level formatting plus
// optional style links. Paragraphs never reference it directly, only through
// a NumInstance.
type AbstractNum struct {
	ID             int
	Name           string
	MultiLevelType string
	StyleLink      string
	NumStyleLink   string
	Levels         [MaxNumberingLevels]*NumberingLevel

	node *wml.Node
}

// NumInstance maps a concrete list id, referenced by paragraphs, to an
// abstract definition.
type NumInstance struct {
	ID         int
	AbstractID int

	node *wml.Node
}

// PictBullet is a picture bullet definition referencing a media asset by
// relationship id.
type PictBullet struct {
	ID    int
	RelID string

	node *wml.Node
}

// Numbering is the per-document numbering registry built over the
// word/numbering.xml tree. Mutations are applied to both the records and the
// tree so serialization stays order-faithful. The registry is session-scoped
// and never shared across documents.
type Numbering struct {
	root      *wml.Node
	Abstracts map[int]*AbstractNum
	Instances map[int]*NumInstance
	Bullets   map[int]*PictBullet
	dirty     bool
}

// ParseNumbering builds the registry from a parsed numbering part tree.
// Entries with unparseable ids are left in the tree untouched but stay out
// of the registry.
func ParseNumbering(root *wml.Node) *Numbering {
	n := &Numbering{
		root:      root,
		Abstracts: make(map[int]*AbstractNum),
		Instances: make(map[int]*NumInstance),
		Bullets:   make(map[int]*PictBullet),
	}
	if root == nil {
		return n
	}
	for _, child := range root.Children {
		switch child.Tag {
		case "w:abstractNum":
			if a := parseAbstractNum(child); a != nil {
				n.Abstracts[a.ID] = a
			}
		case "w:num":
			if inst := parseNumInstance(child); inst != nil {
				n.Instances[inst.ID] = inst
			}
		case "w:numPicBullet":
			if b := parsePictBullet(child); b != nil {
				n.Bullets[b.ID] = b
			}
		}
	}
	return n
}

func parseAbstractNum(node *wml.Node) *AbstractNum {
	id, ok := intAttr(node, "w:abstractNumId")
	if !ok {
		return nil
	}
	a := &AbstractNum{ID: id, node: node}
	a.Name = childVal(node, "w:name")
	a.MultiLevelType = childVal(node, "w:multiLevelType")
	a.StyleLink = childVal(node, "w:styleLink")
	a.NumStyleLink = childVal(node, "w:numStyleLink")
	for _, lvl := range node.ChildrenNamed("w:lvl") {
		idx, ok := intAttr(lvl, "w:ilvl")
		if !ok || idx < 0 || idx >= MaxNumberingLevels {
			continue
		}
		level := &NumberingLevel{
			Index:        idx,
			Start:        childVal(lvl, "w:start"),
			Format:       childVal(lvl, "w:numFmt"),
			Text:         childVal(lvl, "w:lvlText"),
			Align:        childVal(lvl, "w:lvlJc"),
			ParaStyle:    childVal(lvl, "w:pStyle"),
			PictBulletID: -1,
		}
		if pb := childVal(lvl, "w:lvlPicBulletId"); pb != "" {
			if v, err := strconv.Atoi(pb); err == nil {
				level.PictBulletID = v
			}
		}
		if pPr := lvl.FirstChild("w:pPr"); pPr != nil {
			if ind := pPr.FirstChild("w:ind"); ind != nil {
				level.IndentLeft = ind.AttrDefault("w:left", "")
				level.IndentHanging = ind.AttrDefault("w:hanging", "")
			}
		}
		if rPr := lvl.FirstChild("w:rPr"); rPr != nil {
			if fonts := rPr.FirstChild("w:rFonts"); fonts != nil {
				level.FontASCII = fonts.AttrDefault("w:ascii", "")
				level.FontHAnsi = fonts.AttrDefault("w:hAnsi", "")
			}
		}
		a.Levels[idx] = level
	}
	return a
}

func parseNumInstance(node *wml.Node) *NumInstance {
	id, ok := intAttr(node, "w:numId")
	if !ok {
		return nil
	}
	abstract := node.FirstChild("w:abstractNumId")
	if abstract == nil {
		return nil
	}
	abstractID, err := strconv.Atoi(abstract.AttrDefault("w:val", ""))
	if err != nil {
		return nil
	}
	return &NumInstance{ID: id, AbstractID: abstractID, node: node}
}

func parsePictBullet(node *wml.Node) *PictBullet {
	id, ok := intAttr(node, "w:numPicBulletId")
	if !ok {
		return nil
	}
	b := &PictBullet{ID: id, RelID: "", node: node}
	// the media reference hides inside w:pict/v:shape/v:imagedata
	node.Walk(func(n *wml.Node) bool {
		if n.Tag == "v:imagedata" {
			b.RelID = n.AttrDefault("r:id", "")
			return false
		}
		return true
	})
	return b
}

// Root returns the underlying numbering tree.
func (n *Numbering) Root() *wml.Node {
	return n.root
}

// Dirty reports whether any pass changed the registry since load.
func (n *Numbering) Dirty() bool {
	return n.dirty
}

// RemapInstance points the instance at a different abstract definition,
// updating both the record and the tree.
func (n *Numbering) RemapInstance(instID, abstractID int) bool {
	inst, ok := n.Instances[instID]
	if !ok {
		return false
	}
	inst.AbstractID = abstractID
	if ref := inst.node.FirstChild("w:abstractNumId"); ref != nil {
		ref.SetAttr("w:val", strconv.Itoa(abstractID))
	}
	n.dirty = true
	return true
}

// RemoveAbstract deletes an abstract definition from the registry and tree.
func (n *Numbering) RemoveAbstract(id int) bool {
	a, ok := n.Abstracts[id]
	if !ok {
		return false
	}
	delete(n.Abstracts, id)
	n.root.RemoveChild(a.node)
	n.dirty = true
	return true
}

// RemoveInstance deletes a numbering instance from the registry and tree.
func (n *Numbering) RemoveInstance(id int) bool {
	inst, ok := n.Instances[id]
	if !ok {
		return false
	}
	delete(n.Instances, id)
	n.root.RemoveChild(inst.node)
	n.dirty = true
	return true
}

// RemoveBullet deletes a picture bullet from the registry and tree.
func (n *Numbering) RemoveBullet(id int) bool {
	b, ok := n.Bullets[id]
	if !ok {
		return false
	}
	delete(n.Bullets, id)
	n.root.RemoveChild(b.node)
	n.dirty = true
	return true
}

// InstancesOf returns the ids of instances pointing at the given abstract
// definition, sorted for determinism.
func (n *Numbering) InstancesOf(abstractID int) []int {
	var ids []int
	for id, inst := range n.Instances {
		if inst.AbstractID == abstractID {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// BulletIDs returns the picture bullet ids referenced by the definition's
// levels.
func (a *AbstractNum) BulletIDs() []int {
	var ids []int
	for _, lvl := range a.Levels {
		if lvl != nil && lvl.PictBulletID >= 0 {
			ids = append(ids, lvl.PictBulletID)
		}
	}
	return ids
}

func intAttr(node *wml.Node, name string) (int, bool) {
	v, ok := node.Attr(name)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return id, true
}

func childVal(node *wml.Node, tag string) string {
	if c := node.FirstChild(tag); c != nil {
		return c.AttrDefault("w:val", "")
	}
	return ""
}
