package redline

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jslattery/go-redline/pkg/redline/wml"
)

// Document is one load-transform-save session over a word-processing
// package. The tree and the numbering/relationship registries are owned
// exclusively by the single in-process caller for the session's duration;
// no concurrent access is supported.
type Document struct {
	config *Config
	logger *Logger

	parts   map[string][]byte
	order   []string
	dropped map[string]bool

	trees map[string]*wml.Node
	diags map[string][]wml.Diagnostic
	dirty map[string]bool

	rels         map[string]*RelationshipTable
	contentTypes *ContentTypes
	numbering    *Numbering
}

// Open reads a package from zip content.
func Open(r io.ReaderAt, size int64, config *Config) (*Document, error) {
	reader, err := NewPackageReader(r, size)
	if err != nil {
		return nil, NewPackageError("open", "", err)
	}
	parts, err := reader.ReadAll()
	if err != nil {
		return nil, NewPackageError("open", "", err)
	}
	if config == nil {
		config = GetGlobalConfig()
	}
	return &Document{
		config:  config,
		logger:  GetLogger(),
		parts:   parts,
		order:   reader.ListParts(),
		dropped: make(map[string]bool),
		trees:   make(map[string]*wml.Node),
		diags:   make(map[string][]wml.Diagnostic),
		dirty:   make(map[string]bool),
		rels:    make(map[string]*RelationshipTable),
	}, nil
}

// OpenBytes reads a package from an in-memory buffer.
func OpenBytes(content []byte, config *Config) (*Document, error) {
	return Open(bytes.NewReader(content), int64(len(content)), config)
}

// OpenFile reads a package from disk.
func OpenFile(path string, config *Config) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewPackageError("open", path, err)
	}
	return OpenBytes(content, config)
}

// PartNames returns the names of the package's parts in original order,
// excluding parts dropped during the session.
func (d *Document) PartNames() []string {
	names := make([]string, 0, len(d.order))
	for _, name := range d.order {
		if d.dropped[name] {
			continue
		}
		names = append(names, name)
	}
	return names
}

// HasPart reports whether the package still contains the named part.
func (d *Document) HasPart(name string) bool {
	_, ok := d.parts[name]
	return ok && !d.dropped[name]
}

// PartBytes returns the raw bytes of a part as currently loaded. Parts whose
// trees were mutated reflect the mutation only after Save.
func (d *Document) PartBytes(name string) ([]byte, bool) {
	if d.dropped[name] {
		return nil, false
	}
	content, ok := d.parts[name]
	return content, ok
}

// Part parses the named WML part on first use and returns its tree. Later
// calls return the same tree, so mutations accumulate within the session.
func (d *Document) Part(name string) (*wml.Node, error) {
	if tree, ok := d.trees[name]; ok {
		return tree, nil
	}
	content, ok := d.parts[name]
	if !ok || d.dropped[name] {
		return nil, NewPartError(name, "load", fmt.Errorf("part not found"))
	}

	var diags []wml.Diagnostic
	tree, err := wml.Parse(string(content), &wml.ParseOptions{
		MaxSize:     d.config.MaxPartSize,
		Diagnostics: &diags,
	})
	if err != nil {
		if sizeErr, ok := err.(*wml.SizeLimitError); ok {
			return nil, newSizeLimitError(name, sizeErr)
		}
		return nil, NewPartError(name, "parse", err)
	}
	if len(diags) > 0 {
		d.logger.WithField("part", name).Warn("parsed with %d skipped elements", len(diags))
		if d.config.Strict {
			return nil, NewPartError(name, "parse", fmt.Errorf("%d malformed elements: first is %s", len(diags), diags[0]))
		}
	}
	d.trees[name] = tree
	d.diags[name] = diags
	return tree, nil
}

// Diagnostics returns the malformed-element records collected while parsing
// the named part. Requesting diagnostics never fails the operation.
func (d *Document) Diagnostics(name string) []wml.Diagnostic {
	return d.diags[name]
}

// MarkDirty flags a parsed part for re-serialization on save.
func (d *Document) MarkDirty(name string) {
	d.dirty[name] = true
}

// Relationships returns the relationship table of the named part, creating
// an empty one when the package has none.
func (d *Document) Relationships(partName string) (*RelationshipTable, error) {
	if table, ok := d.rels[partName]; ok {
		return table, nil
	}
	relsPath := RelsPathFor(partName)
	content, ok := d.parts[relsPath]
	if !ok || d.dropped[relsPath] {
		table := NewRelationshipTable(partName)
		d.rels[partName] = table
		return table, nil
	}
	table, err := ParseRelationships(partName, content)
	if err != nil {
		return nil, err
	}
	d.rels[partName] = table
	return table, nil
}

// ContentTypes returns the content-type registry of the package.
func (d *Document) ContentTypes() (*ContentTypes, error) {
	if d.contentTypes != nil {
		return d.contentTypes, nil
	}
	content, ok := d.parts[ContentTypesPart]
	if !ok {
		d.contentTypes = &ContentTypes{}
		return d.contentTypes, nil
	}
	types, err := ParseContentTypes(content)
	if err != nil {
		return nil, err
	}
	d.contentTypes = types
	return types, nil
}

// Numbering returns the numbering registry, or an empty registry when the
// package has no numbering part.
func (d *Document) Numbering() (*Numbering, error) {
	if d.numbering != nil {
		return d.numbering, nil
	}
	if !d.HasPart(NumberingPartName) {
		d.numbering = ParseNumbering(nil)
		return d.numbering, nil
	}
	tree, err := d.Part(NumberingPartName)
	if err != nil {
		return nil, err
	}
	d.numbering = ParseNumbering(tree)
	return d.numbering, nil
}

// wmlParts returns the names of loaded-package parts that hold
// WordprocessingML trees this session transforms.
func (d *Document) wmlParts() []string {
	var names []string
	for _, name := range d.order {
		if d.dropped[name] {
			continue
		}
		if IsReachablePart(name) {
			names = append(names, name)
		}
	}
	return names
}

// AcceptRevisions resolves tracked changes in every content part: main body,
// headers, footers, footnotes, and endnotes. Parts whose trees change are
// marked dirty.
func (d *Document) AcceptRevisions(opts RevisionOptions) (RevisionResult, error) {
	var total RevisionResult
	for _, name := range d.wmlParts() {
		tree, err := d.Part(name)
		if err != nil {
			return total, err
		}
		rels, err := d.Relationships(name)
		if err != nil {
			return total, err
		}
		result := AcceptRevisionsInTree(tree, opts, rels)
		if result.Changed() {
			d.MarkDirty(name)
			d.logger.WithFields(Fields{
				"part":      name,
				"unwrapped": result.Unwrapped,
				"removed":   result.Removed,
			}).Debug("revisions resolved")
		}
		total.add(result)
	}
	return total, nil
}

// Consolidate merges structurally identical numbering definitions. Ids in
// protect are excluded from grouping entirely.
func (d *Document) Consolidate(protect ...int) (ConsolidateResult, error) {
	numbering, err := d.Numbering()
	if err != nil {
		return ConsolidateResult{}, err
	}
	protected := make(map[int]bool, len(protect))
	for _, id := range protect {
		protected[id] = true
	}
	result := numbering.Consolidate(protected)
	if result.RemovedDefinitions > 0 || result.RemappedInstances > 0 {
		d.MarkDirty(NumberingPartName)
	}
	return result, nil
}

// UsedNumberingIDs returns the set of numbering-instance ids referenced by
// paragraphs anywhere reachable in the package.
func (d *Document) UsedNumberingIDs() map[int]bool {
	parts := make(map[string][]byte)
	for _, name := range d.wmlParts() {
		// a mutated tree may reference different ids than the loaded bytes
		if tree, ok := d.trees[name]; ok && d.dirty[name] {
			parts[name] = []byte(wml.Serialize(tree, nil))
		} else {
			parts[name] = d.parts[name]
		}
	}
	return usedNumberingIDs(parts)
}

// CollectGarbage removes numbering instances no reachable paragraph uses,
// then definitions no surviving instance points at, then picture bullets
// only those definitions used, then the bullets' relationship entries. A
// relationship part left empty is dropped rather than serialized as an empty
// shell. A no-op run leaves every dirty flag untouched.
func (d *Document) CollectGarbage() (GCResult, error) {
	numbering, err := d.Numbering()
	if err != nil {
		return GCResult{}, err
	}
	if numbering.Root() == nil {
		return GCResult{}, nil
	}

	result, orphanRelIDs := sweepNumbering(numbering, d.UsedNumberingIDs())

	if len(orphanRelIDs) > 0 {
		table, err := d.Relationships(NumberingPartName)
		if err != nil {
			return result, err
		}
		stillUsed := make(map[string]bool)
		for _, b := range numbering.Bullets {
			stillUsed[b.RelID] = true
		}
		for _, relID := range orphanRelIDs {
			if stillUsed[relID] {
				continue
			}
			if table.Remove(relID) {
				result.RelationshipsRemoved++
			}
		}
		if table.Empty() && table.Dirty() {
			relsPath := RelsPathFor(NumberingPartName)
			if _, ok := d.parts[relsPath]; ok {
				d.dropPart(relsPath)
				result.DroppedParts = append(result.DroppedParts, relsPath)
			}
		}
	}

	if result.Changed() {
		d.MarkDirty(NumberingPartName)
	}
	return result, nil
}

// dropPart removes a part from the package and its content-type override.
func (d *Document) dropPart(name string) {
	d.dropped[name] = true
	if types, err := d.ContentTypes(); err == nil {
		types.RemoveOverride(name)
	}
	d.logger.WithField("part", name).Debug("part dropped")
}

// Dirty reports whether any part needs re-serialization.
func (d *Document) Dirty() bool {
	if len(d.dirty) > 0 || len(d.dropped) > 0 {
		return true
	}
	for _, table := range d.rels {
		if table.Dirty() {
			return true
		}
	}
	if d.contentTypes != nil && d.contentTypes.Dirty() {
		return true
	}
	if d.numbering != nil && d.numbering.Dirty() {
		return true
	}
	return false
}

// Save writes the package back out. Untouched parts are copied
// byte-for-byte; dirty trees and registries are re-serialized; dropped parts
// are omitted.
func (d *Document) Save(w io.Writer) error {
	out := make(map[string][]byte, len(d.parts))
	for name, content := range d.parts {
		if d.dropped[name] {
			continue
		}
		out[name] = content
	}

	selfCloseWarn := func(tag string) {
		d.logger.Warn("corrected self-closed <%s/> to open/close pair", tag)
	}
	if d.numbering != nil && d.numbering.Dirty() {
		d.dirty[NumberingPartName] = true
	}
	for name := range d.dirty {
		tree, ok := d.trees[name]
		if !ok {
			continue
		}
		serialized := wml.Serialize(tree, &wml.SerializeOptions{
			Declaration:    true,
			OnSelfCloseFix: selfCloseWarn,
		})
		out[name] = []byte(serialized)
	}

	for _, table := range d.rels {
		if !table.Dirty() {
			continue
		}
		relsPath := RelsPathFor(table.PartName)
		if d.dropped[relsPath] {
			continue
		}
		content, err := table.Bytes()
		if err != nil {
			return err
		}
		out[relsPath] = content
	}

	if d.contentTypes != nil && d.contentTypes.Dirty() {
		content, err := d.contentTypes.Bytes()
		if err != nil {
			return err
		}
		out[ContentTypesPart] = content
	}

	if err := writePackage(w, out, d.order); err != nil {
		return NewPackageError("save", "", err)
	}
	return nil
}

// SaveFile writes the package to disk.
func (d *Document) SaveFile(path string) error {
	var buf bytes.Buffer
	if err := d.Save(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return NewPackageError("save", path, err)
	}
	return nil
}
