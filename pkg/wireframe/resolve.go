package wireframe

import (
	"go.uber.org/zap"

	"github.com/Faultbox/wireframe/pkg/mesh"
)

// IDIndex maps a stable id to its current vertex position.
type IDIndex map[uint32]uint32

// BuildIDIndex indexes ids by value. When several vertices share an id,
// the last one wins.
func BuildIDIndex(ids []uint32) IDIndex {
	index := make(IDIndex, len(ids))
	for i, id := range ids {
		index[id] = uint32(i)
	}
	return index
}

// Lookup returns the vertex position carrying id.
func (ix IDIndex) Lookup(id uint32) (uint32, bool) {
	v, ok := ix[id]
	return v, ok
}

// resolveSelection emits the selected edges in selection order. Pairs
// with an unknown id are reported and skipped; repeated pairs are
// absorbed by the edge set without a report.
func resolveSelection(b *lineBuilder, pairs [][2]uint32, rep *report) error {
	if !b.view.Caps.Has(mesh.HasStableID) {
		return ErrNoStableIDAttribute
	}

	index := BuildIDIndex(b.view.StableIDs)
	if dup := len(b.view.StableIDs) - len(index); dup > 0 {
		rep.log.Debug("stable ids shared by several vertices", zap.Int("duplicates", dup))
	}

	for _, pair := range pairs {
		v1, ok1 := index.Lookup(pair[0])
		v2, ok2 := index.Lookup(pair[1])
		if !ok1 || !ok2 {
			d := Diagnostic{Kind: UnresolvedEdgeID, Pair: pair}
			if !ok1 {
				d.Missing = append(d.Missing, pair[0])
			}
			if !ok2 {
				d.Missing = append(d.Missing, pair[1])
			}
			rep.add(d)
			continue
		}
		b.add(v1, v2)
	}
	return nil
}
