// Package redline reads, transforms, and rewrites Microsoft Word documents
// (DOCX) while preserving their structural integrity.
//
// A DOCX package is a ZIP container of interrelated XML parts. This package
// keeps those parts consistent across parse, mutate, and serialize cycles:
// sibling order of heterogeneous elements survives round trips, tracked
// changes resolve without corrupting nested wrappers, and cross-part
// references (numbering definitions, picture bullets, relationship tables,
// content types) stay coherent after definitions are merged or deleted.
//
// # Quick Start
//
//	doc, err := redline.OpenFile("draft.docx", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// resolve every tracked change
//	if _, err := doc.AcceptRevisions(redline.AcceptAll()); err != nil {
//	    log.Fatal(err)
//	}
//
//	// merge duplicate numbering definitions and sweep orphans
//	doc.Consolidate()
//	doc.CollectGarbage()
//
//	if err := doc.SaveFile("final.docx"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Passes
//
// Each transformation is optional and caller-invoked; none runs
// automatically. AcceptRevisions resolves insertion, deletion, move, and
// formatting-change wrappers in a fixed internal order. Consolidate merges
// abstract numbering definitions whose structural fingerprints match.
// CollectGarbage removes numbering instances no paragraph references,
// cascading through definitions, picture bullets, and relationship entries.
//
// # Error Handling
//
// The only fatal parse condition is the per-part size ceiling
// (Config.MaxPartSize, 10 MB by default). Malformed elements degrade to
// skips recorded as diagnostics; consolidation and cleanup report counts,
// and "nothing to remove" is a normal success outcome.
//
// A Document and its registries belong to one goroutine for the duration of
// a load-transform-save cycle. No concurrent access is supported.
package redline
