package pathfinder

import (
	"github.com/chewxy/math32"
	"github.com/milk9111/navpath/navmesh"
)

// searchSPFA is the single direction variant: relaxation runs from the
// source only until the deque drains, pruning nodes that cannot beat the
// target's current label.
func (g *graph) searchSPFA(source, target navmesh.FaceIndex, s *searchState) (Result, error) {
	sourcePos := g.centers[source]
	direction := g.centers[target].Sub(sourcePos).Normal()

	s.dist[forward][source] = 0
	s.priority[forward][source] = 0

	q := newRelaxQueue(s)
	q.push(source, forward)

	for q.Len() > 0 {
		if err := s.step(); err != nil {
			return s.result(nil, 0), err
		}
		u := q.pop().face
		du := s.dist[forward][u]
		if du+g.distance(u, target) >= s.dist[forward][target] {
			continue
		}

		node := &g.nodes[u]
		for k := 0; k < 3; k++ {
			v := node.Faces[k]
			if v == navmesh.NullFace {
				continue
			}
			alt := du + node.Weight[k]
			if alt >= s.dist[forward][v] {
				continue
			}
			s.dist[forward][v] = alt
			s.prev[forward][v] = u
			s.relaxations++

			if s.priority[forward][v] < 0 {
				s.priority[forward][v] = math32.Max(0, direction.Dot(g.centers[v].Sub(sourcePos)))
			}
			if v != target && alt+g.distance(v, target) < s.dist[forward][target] {
				q.push(v, forward)
			}
		}
	}

	if math32.IsInf(s.dist[forward][target], 1) {
		return s.result(nil, 0), nil
	}
	return s.result(reversed(s.chain(forward, target)), s.dist[forward][target]), nil
}

func reversed(faces []navmesh.FaceIndex) []navmesh.FaceIndex {
	for i, j := 0, len(faces)-1; i < j; i, j = i+1, j-1 {
		faces[i], faces[j] = faces[j], faces[i]
	}
	return faces
}
