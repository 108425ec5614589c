// Package wml implements the low-level XML tree used for WordprocessingML
// package parts: a position-based scanner over raw part text, an
// order-preserving element tree, and a serializer that renders the tree back
// into text Word will accept.
//
// The tree keeps every element's children as a single ordered sequence.
// Paragraphs routinely interleave plain runs, hyperlinks, and tracked-change
// wrappers; grouping children by tag name would destroy that interleaving, so
// the sequence is the source of truth and grouped access is derived from it.
package wml

// Attr is a single attribute on an element. Attribute order is preserved so
// serialized output stays stable across parse/serialize cycles.
type Attr struct {
	Name  string
	Value string
}

// Node is one element in a part tree. A node carries either Text (leaf) or
// Children; WML parts do not use mixed content. Unknown element names pass
// through untouched, which keeps parts written by newer schema versions
// loadable.
type Node struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// NewNode returns an element node with the given tag and no children.
func NewNode(tag string) *Node {
	return &Node{Tag: tag}
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrDefault returns the named attribute's value, or def when absent.
func (n *Node) AttrDefault(name, def string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return def
}

// SetAttr sets the named attribute, replacing an existing value in place so
// attribute order is not disturbed.
func (n *Node) SetAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// RemoveAttr deletes the named attribute if present.
func (n *Node) RemoveAttr(name string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return
		}
	}
}

// ChildrenNamed returns the children with the given tag, in document order.
func (n *Node) ChildrenNamed(tag string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first child with the given tag, or nil.
func (n *Node) FirstChild(tag string) *Node {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// AppendChild adds a child at the end of the sequence.
func (n *Node) AppendChild(c *Node) {
	n.Children = append(n.Children, c)
}

// InsertChildren splices nodes into the sequence at index i, preserving the
// relative order of both the existing children and the inserted ones.
func (n *Node) InsertChildren(i int, kids ...*Node) {
	if len(kids) == 0 {
		return
	}
	n.Children = append(n.Children[:i], append(append([]*Node{}, kids...), n.Children[i:]...)...)
}

// RemoveChildAt deletes the child at index i.
func (n *Node) RemoveChildAt(i int) {
	n.Children = append(n.Children[:i], n.Children[i+1:]...)
}

// RemoveChild deletes the first occurrence of c from the sequence.
func (n *Node) RemoveChild(c *Node) bool {
	for i, k := range n.Children {
		if k == c {
			n.RemoveChildAt(i)
			return true
		}
	}
	return false
}

// ReplaceChildAt replaces the child at index i with zero or more nodes,
// keeping every other sibling in place. This is the splice primitive the
// revision engine uses to promote a wrapper's children into its parent.
func (n *Node) ReplaceChildAt(i int, kids ...*Node) {
	rest := append(append([]*Node{}, kids...), n.Children[i+1:]...)
	n.Children = append(n.Children[:i], rest...)
}

// Walk visits n and every descendant in document order. Returning false from
// fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// InnerText concatenates the text of n and all descendants in document order.
func (n *Node) InnerText() string {
	if len(n.Children) == 0 {
		return n.Text
	}
	var out string
	for _, c := range n.Children {
		out += c.InnerText()
	}
	return out
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	cp := &Node{Tag: n.Tag, Text: n.Text}
	if len(n.Attrs) > 0 {
		cp.Attrs = append([]Attr{}, n.Attrs...)
	}
	for _, c := range n.Children {
		cp.Children = append(cp.Children, c.Clone())
	}
	return cp
}

// Equal reports deep structural equality of two subtrees: tag, attributes
// (order included), text, and children.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Tag != o.Tag || n.Text != o.Text || len(n.Attrs) != len(o.Attrs) || len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Attrs {
		if n.Attrs[i] != o.Attrs[i] {
			return false
		}
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}
