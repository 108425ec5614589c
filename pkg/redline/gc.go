package redline

import "sort"

// GCResult reports what an orphan sweep removed. An all-zero result is a
// normal success outcome, not an error.
type GCResult struct {
	InstancesRemoved     int
	DefinitionsRemoved   int
	BulletsRemoved       int
	RelationshipsRemoved int
	// DroppedParts lists relationship parts that became empty and were
	// removed from the package instead of being serialized as empty shells.
	DroppedParts []string
}

// Changed reports whether the sweep modified anything.
func (r GCResult) Changed() bool {
	return r.InstancesRemoved > 0 || r.DefinitionsRemoved > 0 || r.BulletsRemoved > 0 ||
		r.RelationshipsRemoved > 0 || len(r.DroppedParts) > 0
}

// sweepNumbering removes numbering records unreachable from the live
// instance-id set. Phase one deletes dead instances, then abstract
// definitions no surviving instance points at. Phase two deletes picture
// bullets only the removed definitions used, and returns the relationship
// ids those bullets referenced so the caller can cascade into the
// relationship table.
//
// Running the sweep twice in a row is safe; the second run removes nothing.
func sweepNumbering(n *Numbering, live map[int]bool) (GCResult, []string) {
	var result GCResult

	instanceIDs := make([]int, 0, len(n.Instances))
	for id := range n.Instances {
		instanceIDs = append(instanceIDs, id)
	}
	sort.Ints(instanceIDs)
	for _, id := range instanceIDs {
		if !live[id] {
			n.RemoveInstance(id)
			result.InstancesRemoved++
		}
	}

	referenced := make(map[int]bool)
	for _, inst := range n.Instances {
		referenced[inst.AbstractID] = true
	}

	deadBullets := make(map[int]bool)
	abstractIDs := make([]int, 0, len(n.Abstracts))
	for id := range n.Abstracts {
		abstractIDs = append(abstractIDs, id)
	}
	sort.Ints(abstractIDs)
	for _, id := range abstractIDs {
		if referenced[id] {
			continue
		}
		for _, bulletID := range n.Abstracts[id].BulletIDs() {
			deadBullets[bulletID] = true
		}
		n.RemoveAbstract(id)
		result.DefinitionsRemoved++
	}

	// bullets still used by a surviving definition stay
	for _, a := range n.Abstracts {
		for _, bulletID := range a.BulletIDs() {
			delete(deadBullets, bulletID)
		}
	}

	var orphanRelIDs []string
	bulletIDs := make([]int, 0, len(deadBullets))
	for id := range deadBullets {
		bulletIDs = append(bulletIDs, id)
	}
	sort.Ints(bulletIDs)
	for _, id := range bulletIDs {
		b, ok := n.Bullets[id]
		if !ok {
			continue
		}
		if b.RelID != "" {
			orphanRelIDs = append(orphanRelIDs, b.RelID)
		}
		n.RemoveBullet(id)
		result.BulletsRemoved++
	}

	return result, orphanRelIDs
}
