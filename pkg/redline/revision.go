package redline

import "github.com/jslattery/go-redline/pkg/redline/wml"

// RevisionOptions gates which tracked-change categories a pass resolves.
// A disabled category's elements are left untouched.
type RevisionOptions struct {
	Insertions bool
	Deletions  bool
	Moves      bool
	Formatting bool
}

// AcceptAll returns options that resolve every revision category.
func AcceptAll() RevisionOptions {
	return RevisionOptions{Insertions: true, Deletions: true, Moves: true, Formatting: true}
}

// Any reports whether at least one category is enabled.
func (o RevisionOptions) Any() bool {
	return o.Insertions || o.Deletions || o.Moves || o.Formatting
}

// RevisionResult reports what a revision pass did to one tree.
type RevisionResult struct {
	// Unwrapped counts wrappers whose children were promoted in place.
	Unwrapped int
	// Removed counts wrappers deleted together with their content.
	Removed int
	// MetadataCleared counts property-change descriptors and range markers
	// deleted outright.
	MetadataCleared int
	// RemappedEmbeds counts drawing references reassigned fresh relationship
	// ids during unwrapping.
	RemappedEmbeds int
}

func (r *RevisionResult) add(o RevisionResult) {
	r.Unwrapped += o.Unwrapped
	r.Removed += o.Removed
	r.MetadataCleared += o.MetadataCleared
	r.RemappedEmbeds += o.RemappedEmbeds
}

// Changed reports whether the pass modified the tree at all.
func (r RevisionResult) Changed() bool {
	return r.Unwrapped > 0 || r.Removed > 0 || r.MetadataCleared > 0 || r.RemappedEmbeds > 0
}

// Revision wrapper categories. Category is fixed by tag identity, never by
// content: an insertion wrapper is an insertion even when empty.
var (
	// unwrapped in place: the wrapper goes, its children stay
	insertionTags = map[string]bool{"w:ins": true}
	moveDestTags  = map[string]bool{"w:moveTo": true}
	// removed with content
	deletionTags   = map[string]bool{"w:del": true}
	moveSourceTags = map[string]bool{"w:moveFrom": true}
	// deleted outright, no promotion
	propertyChangeTags = map[string]bool{
		"w:rPrChange":       true,
		"w:pPrChange":       true,
		"w:tblPrChange":     true,
		"w:tblGridChange":   true,
		"w:trPrChange":      true,
		"w:tcPrChange":      true,
		"w:sectPrChange":    true,
		"w:numberingChange": true,
	}
	rangeMarkerTags = map[string]bool{
		"w:moveFromRangeStart": true,
		"w:moveFromRangeEnd":   true,
		"w:moveToRangeStart":   true,
		"w:moveToRangeEnd":     true,
	}
)

// IsRevisionTag reports whether the tag belongs to any revision category.
func IsRevisionTag(tag string) bool {
	return insertionTags[tag] || moveDestTags[tag] || deletionTags[tag] ||
		moveSourceTags[tag] || propertyChangeTags[tag] || rangeMarkerTags[tag]
}

// AcceptRevisionsInTree resolves tracked changes in one part tree. Passes run
// in a fixed pipeline order because later steps assume earlier steps already
// cleared certain wrapper categories: range markers, then property metadata,
// then deletions and move-sources, then move-destinations, then insertions,
// then a final sweep for wrapper tags the earlier splices exposed.
//
// rels may be nil when the part has no relationship table; embed remapping is
// then skipped.
//
// A tree containing none of the recognized wrapper tags is returned
// structurally unchanged.
func AcceptRevisionsInTree(root *wml.Node, opts RevisionOptions, rels *RelationshipTable) RevisionResult {
	var result RevisionResult
	if root == nil || !opts.Any() {
		return result
	}

	if opts.Moves {
		result.add(deleteOutrightPass(root, rangeMarkerTags))
	}
	if opts.Formatting {
		result.add(deleteOutrightPass(root, propertyChangeTags))
	}
	if opts.Deletions {
		result.add(removePass(root, deletionTags))
	}
	// ids allocated by embed remapping during this call; shared across the
	// unwrap passes so an embed promoted through nested wrappers is remapped
	// exactly once
	allocated := make(map[string]bool)
	if opts.Moves {
		result.add(removePass(root, moveSourceTags))
		result.add(unwrapPass(root, moveDestTags, rels, allocated))
	}
	if opts.Insertions {
		result.add(unwrapPass(root, insertionTags, rels, allocated))
	}
	result.add(sweepResidual(root, opts))
	return result
}

// unwrapPass promotes each matching wrapper's children into its parent at
// the wrapper's position. Traversal is post-order: children are fully
// resolved before the parent decides the fate of its own wrappers, so
// wrappers nested inside same-category wrappers resolve bottom-up.
func unwrapPass(n *wml.Node, tags map[string]bool, rels *RelationshipTable, allocated map[string]bool) RevisionResult {
	var result RevisionResult
	for _, c := range n.Children {
		result.add(unwrapPass(c, tags, rels, allocated))
	}
	for i := 0; i < len(n.Children); {
		c := n.Children[i]
		if !tags[c.Tag] {
			i++
			continue
		}
		if rels != nil {
			result.RemappedEmbeds += remapEmbeds(c, rels, allocated)
		}
		n.ReplaceChildAt(i, c.Children...)
		result.Unwrapped++
		i += len(c.Children)
	}
	return result
}

// removePass deletes each matching wrapper together with its content.
func removePass(n *wml.Node, tags map[string]bool) RevisionResult {
	var result RevisionResult
	for i := 0; i < len(n.Children); {
		c := n.Children[i]
		if tags[c.Tag] {
			n.RemoveChildAt(i)
			result.Removed++
			continue
		}
		result.add(removePass(c, tags))
		i++
	}
	return result
}

// deleteOutrightPass deletes matching metadata elements with no promotion.
func deleteOutrightPass(n *wml.Node, tags map[string]bool) RevisionResult {
	var result RevisionResult
	for i := 0; i < len(n.Children); {
		c := n.Children[i]
		if tags[c.Tag] {
			n.RemoveChildAt(i)
			result.MetadataCleared++
			continue
		}
		result.add(deleteOutrightPass(c, tags))
		i++
	}
	return result
}

// sweepResidual clears wrapper tags of enabled categories that the earlier
// passes exposed, e.g. a range marker that sat directly inside an unwrapped
// insertion.
func sweepResidual(root *wml.Node, opts RevisionOptions) RevisionResult {
	var result RevisionResult
	if opts.Moves {
		result.add(deleteOutrightPass(root, rangeMarkerTags))
	}
	if opts.Formatting {
		result.add(deleteOutrightPass(root, propertyChangeTags))
	}
	return result
}

// Drawing reference attributes rewritten during unwrapping. Tracked-change
// authoring tools may reuse one relationship id across separate wrapper
// contexts; once those contexts become siblings the reuse turns into
// duplicate-id corruption, so every embed inside an unwrapped wrapper gets a
// fresh id pointing at the same target.
var embedAttrs = map[string][]string{
	"a:blip":      {"r:embed", "r:link"},
	"v:imagedata": {"r:id"},
}

func remapEmbeds(wrapper *wml.Node, rels *RelationshipTable, allocated map[string]bool) int {
	remapped := 0
	wrapper.Walk(func(n *wml.Node) bool {
		attrs, ok := embedAttrs[n.Tag]
		if !ok {
			return true
		}
		for _, attr := range attrs {
			id, ok := n.Attr(attr)
			if !ok || id == "" {
				continue
			}
			// already remapped while unwrapping an inner wrapper; chaining
			// another duplicate would strand the intermediate entry
			if allocated[id] {
				continue
			}
			fresh, ok := rels.Duplicate(id)
			if !ok {
				// dangling reference; leave it for the host to report
				GetLogger().Warn("embed references unknown relationship %s", id)
				continue
			}
			n.SetAttr(attr, fresh)
			allocated[fresh] = true
			remapped++
		}
		return true
	})
	return remapped
}
