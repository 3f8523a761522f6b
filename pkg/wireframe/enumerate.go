package wireframe

import "github.com/Faultbox/wireframe/pkg/mesh"

// enumerateTriangles proposes the edges (a,b), (b,c), (c,a) of every
// triangle. Without an index buffer, positions are consumed in triples.
// A trailing partial triangle is dropped and reported; so is any triangle
// referencing a vertex out of range.
func enumerateTriangles(b *lineBuilder, indices mesh.Indices, rep *report) {
	n := b.view.Len()
	count := n
	at := func(i int) uint32 { return uint32(i) }
	if indices.Format != mesh.IndexNone {
		count = indices.Len()
		at = indices.At
	}

	if rest := count % 3; rest != 0 {
		rep.add(Diagnostic{Kind: MalformedTriangleList, Triangle: rest})
	}

	for t := 0; t+2 < count; t += 3 {
		a, bb, c := at(t), at(t+1), at(t+2)
		if int(a) >= n || int(bb) >= n || int(c) >= n {
			rep.add(Diagnostic{Kind: IndexOutOfRange, Triangle: t / 3})
			continue
		}
		b.add(a, bb)
		b.add(bb, c)
		b.add(c, a)
	}
}
