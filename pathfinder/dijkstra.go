package pathfinder

import (
	"container/heap"

	"github.com/chewxy/math32"
	"github.com/milk9111/navpath/navmesh"
)

// searchDijkstra settles faces in order of distance from the source using
// a binary heap; stale heap entries are skipped when popped.
func (g *graph) searchDijkstra(source, target navmesh.FaceIndex, s *searchState) (Result, error) {
	open := &openSet{}
	heap.Init(open)

	settled := make([]bool, len(g.nodes))
	s.dist[forward][source] = 0
	heap.Push(open, &openItem{face: source, dist: 0})

	for open.Len() > 0 {
		if err := s.step(); err != nil {
			return s.result(nil, 0), err
		}
		current := heap.Pop(open).(*openItem)
		u := current.face
		if settled[u] || current.dist > s.dist[forward][u] {
			continue
		}
		settled[u] = true
		if u == target {
			break
		}

		node := &g.nodes[u]
		for k := 0; k < 3; k++ {
			v := node.Faces[k]
			if v == navmesh.NullFace || settled[v] {
				continue
			}
			alt := s.dist[forward][u] + node.Weight[k]
			if alt < s.dist[forward][v] {
				s.dist[forward][v] = alt
				s.prev[forward][v] = u
				s.relaxations++
				heap.Push(open, &openItem{face: v, dist: alt})
			}
		}
	}

	if math32.IsInf(s.dist[forward][target], 1) {
		return s.result(nil, 0), nil
	}
	return s.result(reversed(s.chain(forward, target)), s.dist[forward][target]), nil
}

type openItem struct {
	face  navmesh.FaceIndex
	dist  float32
	index int
}

type openSet []*openItem

func (o openSet) Len() int           { return len(o) }
func (o openSet) Less(i, j int) bool { return o[i].dist < o[j].dist }
func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}
func (o *openSet) Push(x any) {
	item := x.(*openItem)
	item.index = len(*o)
	*o = append(*o, item)
}
func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*o = old[:n-1]
	return item
}
