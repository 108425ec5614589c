package redline

import (
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
)

// Fingerprint computes the canonical structural signature of the definition:
// the multilevel flag, style links, and every level's format, text pattern,
// alignment, indentation pair, run-font overrides, paragraph style, and
// picture bullet. The definition's own id and name are deliberately excluded;
// they are accidental identity, not structure, and two definitions differing
// only there must fingerprint identically.
func (a *AbstractNum) Fingerprint() string {
	var b strings.Builder
	b.WriteString("mlt=")
	b.WriteString(a.MultiLevelType)
	b.WriteString(";sl=")
	b.WriteString(a.StyleLink)
	b.WriteString(";nsl=")
	b.WriteString(a.NumStyleLink)
	for i := 0; i < MaxNumberingLevels; i++ {
		b.WriteString(";l")
		b.WriteString(strconv.Itoa(i))
		b.WriteByte('=')
		lvl := a.Levels[i]
		if lvl == nil {
			b.WriteByte('-')
			continue
		}
		fields := []string{
			lvl.Start,
			lvl.Format,
			lvl.Text,
			lvl.Align,
			lvl.IndentLeft,
			lvl.IndentHanging,
			lvl.FontASCII,
			lvl.FontHAnsi,
			lvl.ParaStyle,
			strconv.Itoa(lvl.PictBulletID),
		}
		b.WriteString(strings.Join(fields, "|"))
	}
	sum := blake3.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// ConsolidateResult reports what a consolidation pass did. Zero values mean
// there was nothing to merge, which is a normal success outcome.
type ConsolidateResult struct {
	// RemovedDefinitions counts abstract definitions deleted as duplicates.
	RemovedDefinitions int
	// RemappedInstances counts numbering instances repointed to a surviving
	// representative.
	RemappedInstances int
	// DuplicateGroups counts fingerprint groups that had more than one
	// member.
	DuplicateGroups int
}

// Consolidate merges structurally identical abstract definitions. Within
// each fingerprint group the member with the lowest numeric id survives as
// the representative; instances pointing at the others are remapped to it
// and the others are deleted.
//
// Protected ids are excluded per-id, not per-group: a protected definition is
// never merged away and never accepted as a merge target, but non-protected
// duplicates of the same fingerprint still consolidate with each other. This
// can leave two surviving representatives for what is visually one list
// style; that outcome is accepted.
func (n *Numbering) Consolidate(protected map[int]bool) ConsolidateResult {
	var result ConsolidateResult

	groups := make(map[string][]int)
	for id, a := range n.Abstracts {
		if protected[id] {
			continue
		}
		fp := a.Fingerprint()
		groups[fp] = append(groups[fp], id)
	}

	// deterministic group order
	fps := make([]string, 0, len(groups))
	for fp, ids := range groups {
		if len(ids) > 1 {
			fps = append(fps, fp)
		}
	}
	sort.Strings(fps)

	for _, fp := range fps {
		ids := groups[fp]
		sort.Ints(ids)
		result.DuplicateGroups++
		rep := ids[0]
		for _, dup := range ids[1:] {
			for _, instID := range n.InstancesOf(dup) {
				n.RemapInstance(instID, rep)
				result.RemappedInstances++
			}
			n.RemoveAbstract(dup)
			result.RemovedDefinitions++
		}
	}

	return result
}
