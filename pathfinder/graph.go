package pathfinder

import (
	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/navmesh"
)

// FaceNode is the search graph's view of one mesh face.
type FaceNode struct {
	Index  navmesh.FaceIndex
	Faces  [3]navmesh.FaceIndex
	Edges  [3]navmesh.EdgeIndex
	Weight [3]float32
}

type graph struct {
	nodes      []FaceNode
	components []navmesh.FaceIndex
	centers    []common.Vector3
}

// buildGraph links every face to the faces across its edges, weighted by
// the distance between face centres, and labels connected components.
func buildGraph(mesh *navmesh.NavigationMesh) graph {
	count := int(mesh.FaceCount())
	g := graph{
		nodes:   make([]FaceNode, count),
		centers: make([]common.Vector3, count),
	}
	uf := newUnionFind(count)

	for i := 0; i < count; i++ {
		g.centers[i] = mesh.Face(navmesh.FaceIndex(i)).Center
	}

	for i := 0; i < count; i++ {
		idx := navmesh.FaceIndex(i)
		face := mesh.Face(idx)
		node := &g.nodes[i]
		node.Index = idx

		for k, ei := range face.Edge {
			other := mesh.Edge(ei).Other(idx)
			node.Faces[k] = other
			node.Edges[k] = navmesh.NullEdge
			if other == navmesh.NullFace {
				continue
			}
			node.Edges[k] = ei
			node.Weight[k] = g.centers[other].DistanceTo(g.centers[i])
			uf.union(i, int(other))
		}
	}

	g.components = uf.labels()
	return g
}

func (g *graph) distance(a, b navmesh.FaceIndex) float32 {
	return g.centers[a].DistanceTo(g.centers[b])
}

func (g *graph) componentCount() int {
	seen := make(map[navmesh.FaceIndex]struct{})
	for _, c := range g.components {
		seen[c] = struct{}{}
	}
	return len(seen)
}

// unionFind is a disjoint set forest with union by rank and path compression.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	root := i
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[i] != root {
		next := uf.parent[i]
		uf.parent[i] = root
		i = next
	}
	return root
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	switch {
	case uf.rank[ra] < uf.rank[rb]:
		uf.parent[ra] = rb
	case uf.rank[ra] > uf.rank[rb]:
		uf.parent[rb] = ra
	default:
		uf.parent[rb] = ra
		uf.rank[ra]++
	}
}

// labels flattens the forest so every element maps directly to its root.
func (uf *unionFind) labels() []navmesh.FaceIndex {
	out := make([]navmesh.FaceIndex, len(uf.parent))
	for i := range out {
		out[i] = navmesh.FaceIndex(uf.find(i))
	}
	return out
}

// weight returns the edge weight from a to its neighbour b.
func (g *graph) weight(a, b navmesh.FaceIndex) (float32, bool) {
	node := &g.nodes[a]
	for k, f := range node.Faces {
		if f == b {
			return node.Weight[k], true
		}
	}
	return 0, false
}

// portal returns the edge shared by a and its neighbour b.
func (g *graph) portal(a, b navmesh.FaceIndex) navmesh.EdgeIndex {
	node := &g.nodes[a]
	for k, f := range node.Faces {
		if f == b {
			return node.Edges[k]
		}
	}
	return navmesh.NullEdge
}

func (g *graph) pathCost(faces []navmesh.FaceIndex) float32 {
	var cost float32
	for i := 1; i < len(faces); i++ {
		w, _ := g.weight(faces[i-1], faces[i])
		cost += w
	}
	return cost
}
