package navmesh

import (
	"fmt"

	"github.com/milk9111/navpath/common"
)

// FromTriangles builds a mesh from an indexed triangle list. Vertices with
// identical coordinates are welded so that faces touching through duplicated
// vertices still share their edge.
func FromTriangles(vertices []common.Vector3, triangles [][3]VertexIndex, gravity common.Vector3) (*NavigationMesh, error) {
	remap := make([]VertexIndex, len(vertices))
	welded := make([]common.Vector3, 0, len(vertices))
	seen := make(map[common.Vector3]VertexIndex, len(vertices))
	for i, v := range vertices {
		if idx, ok := seen[v]; ok {
			remap[i] = idx
			continue
		}
		idx := VertexIndex(len(welded))
		seen[v] = idx
		welded = append(welded, v)
		remap[i] = idx
	}

	type edgeKey [2]VertexIndex
	edgeIDs := make(map[edgeKey]EdgeIndex, len(triangles)*3/2+1)
	edges := make([]Edge, 0, len(triangles)*3/2+1)
	faces := make([]Face, 0, len(triangles))

	for ti, tri := range triangles {
		var f Face
		for k, v := range tri {
			if int(v) >= len(vertices) {
				return nil, fmt.Errorf("navmesh: triangle %d vertex %d: %w", ti, v, ErrInvalidIndex)
			}
			f.Vertex[k] = remap[v]
		}
		if f.Vertex[0] == f.Vertex[1] || f.Vertex[1] == f.Vertex[2] || f.Vertex[0] == f.Vertex[2] {
			return nil, fmt.Errorf("navmesh: triangle %d: %w", ti, ErrDegenerateFace)
		}

		a, b, c := welded[f.Vertex[0]], welded[f.Vertex[1]], welded[f.Vertex[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		if n.LengthSquared() == 0 {
			return nil, fmt.Errorf("navmesh: triangle %d has zero area: %w", ti, ErrDegenerateFace)
		}
		f.Normal = n.Normal()
		f.Center = a.Add(b).Add(c).MulScalar(1.0 / 3.0)

		face := FaceIndex(len(faces))
		for k := 0; k < 3; k++ {
			v0, v1 := f.Vertex[k], f.Vertex[(k+1)%3]
			key := edgeKey{v0, v1}
			if v1 < v0 {
				key = edgeKey{v1, v0}
			}
			ei, ok := edgeIDs[key]
			if !ok {
				ei = EdgeIndex(len(edges))
				edgeIDs[key] = ei
				edges = append(edges, Edge{Vertex: key, Face: [2]FaceIndex{face, NullFace}})
			} else {
				e := &edges[ei]
				if e.Face[1] != NullFace {
					return nil, fmt.Errorf("navmesh: triangle %d edge %v: %w", ti, key, ErrNonManifold)
				}
				e.Face[1] = face
			}
			f.Edge[k] = ei
		}
		faces = append(faces, f)
	}

	return New(welded, edges, faces, gravity)
}
