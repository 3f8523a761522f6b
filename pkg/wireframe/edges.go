package wireframe

// edgeKey is an undirected edge with the smaller vertex first.
type edgeKey struct {
	lo, hi uint32
}

func canonical(v1, v2 uint32) edgeKey {
	if v1 < v2 {
		return edgeKey{v1, v2}
	}
	return edgeKey{v2, v1}
}

// EdgeSet remembers which undirected edges were already emitted during
// one extraction call.
type EdgeSet struct {
	seen map[edgeKey]struct{}
}

// NewEdgeSet creates an empty set sized for about n edges.
func NewEdgeSet(n int) *EdgeSet {
	return &EdgeSet{seen: make(map[edgeKey]struct{}, n)}
}

// Propose records the edge (v1, v2) and reports whether it is new.
// Self edges are never new.
func (s *EdgeSet) Propose(v1, v2 uint32) bool {
	if v1 == v2 {
		return false
	}
	key := canonical(v1, v2)
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}
