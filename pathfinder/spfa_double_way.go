package pathfinder

import (
	"github.com/chewxy/math32"
	"github.com/milk9111/navpath/navmesh"
)

// searchSPFADoubleWay runs queue based relaxation from source and target at
// once. Both frontiers share one deque, each item tagged with its
// direction. Every relaxed edge that reaches a node already labelled by the
// other frontier is a candidate meeting edge; the cheapest one found is
// kept. A popped node whose label plus the straight-line distance to the
// opposite endpoint cannot beat the best meeting cost is not expanded, and
// the search ends once the deque drains.
func (g *graph) searchSPFADoubleWay(source, target navmesh.FaceIndex, s *searchState) (Result, error) {
	sourcePos := g.centers[source]
	targetPos := g.centers[target]
	direction := targetPos.Sub(sourcePos).Normal()

	endpoint := [2]navmesh.FaceIndex{target, source}

	s.dist[forward][source] = 0
	s.dist[backward][target] = 0
	s.priority[forward][source] = 0
	s.priority[backward][target] = 0

	q := newRelaxQueue(s)
	q.push(source, forward)
	q.push(target, backward)

	best := math32.Inf(1)
	forwardEnd, backwardStart := navmesh.NullFace, navmesh.NullFace

	for q.Len() > 0 {
		if err := s.step(); err != nil {
			return s.result(nil, 0), err
		}
		item := q.pop()
		u, dir := item.face, item.dir
		other := 1 - dir

		du := s.dist[dir][u]
		if du+g.distance(u, endpoint[dir]) >= best {
			continue
		}

		node := &g.nodes[u]
		for k := 0; k < 3; k++ {
			v := node.Faces[k]
			if v == navmesh.NullFace {
				continue
			}
			alt := du + node.Weight[k]

			if dv := s.dist[other][v]; !math32.IsInf(dv, 1) && alt+dv < best {
				best = alt + dv
				if dir == forward {
					forwardEnd, backwardStart = u, v
				} else {
					forwardEnd, backwardStart = v, u
				}
			}

			if alt >= s.dist[dir][v] {
				continue
			}
			s.dist[dir][v] = alt
			s.prev[dir][v] = u
			s.relaxations++

			if s.priority[dir][v] < 0 {
				c := g.centers[v]
				if dir == forward {
					s.priority[dir][v] = math32.Max(0, direction.Dot(c.Sub(sourcePos)))
				} else {
					s.priority[dir][v] = math32.Max(0, -direction.Dot(c.Sub(targetPos)))
				}
			}

			if alt+g.distance(v, endpoint[dir]) < best {
				q.push(v, dir)
			}
		}
	}

	if forwardEnd == navmesh.NullFace {
		return s.result(nil, 0), nil
	}

	head := s.chain(forward, forwardEnd)
	tail := s.chain(backward, backwardStart)
	if head == nil || tail == nil {
		return s.result(nil, 0), nil
	}
	faces := make([]navmesh.FaceIndex, 0, len(head)+len(tail))
	for i := len(head) - 1; i >= 0; i-- {
		faces = append(faces, head[i])
	}
	faces = append(faces, tail...)
	return s.result(faces, g.pathCost(faces)), nil
}
