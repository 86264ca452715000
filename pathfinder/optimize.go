package pathfinder

import (
	"github.com/chewxy/math32"
	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/navmesh"
)

// OptimizeWaypoints pulls the string tight through the corridor of faces
// the raw path crosses. Starting from an anchor it keeps extending to the
// next waypoint while the straight segment from the anchor still crosses
// every portal in between; when it cannot, the last reachable waypoint
// becomes the new anchor. The result is a subset of waypoints with the
// same first and last entries.
func OptimizeWaypoints(mesh *navmesh.NavigationMesh, waypoints WayPointList) WayPointList {
	if len(waypoints) <= 2 {
		return append(WayPointList(nil), waypoints...)
	}

	out := make(WayPointList, 0, len(waypoints))
	out = append(out, waypoints[0])

	last := len(waypoints) - 1
	anchor := 0
	for anchor < last {
		next := anchor + 1
		for next < last && visible(mesh, waypoints, anchor, next+1) {
			next++
		}
		out = append(out, waypoints[next])
		anchor = next
	}
	return out
}

// visible reports whether the segment between waypoints a and b crosses
// every portal entered by the waypoints after a up to b.
func visible(mesh *navmesh.NavigationMesh, waypoints WayPointList, a, b int) bool {
	p0, p1 := waypoints[a].Point2D, waypoints[b].Point2D
	for k := a + 1; k <= b; k++ {
		e := mesh.Edge(waypoints[k].Edge)
		if e == nil {
			continue
		}
		q0 := mesh.Project2D(*mesh.Vertex(e.Vertex[0]))
		q1 := mesh.Project2D(*mesh.Vertex(e.Vertex[1]))
		if !segmentsIntersect(p0, p1, q0, q1) {
			return false
		}
	}
	return true
}

// segmentsIntersect reports whether segments p0-p1 and q0-q1 share a point,
// endpoints included, with a small tolerance along both segments.
func segmentsIntersect(p0, p1, q0, q1 common.Vector2) bool {
	const eps = 1e-4

	r := p1.Sub(p0)
	s := q1.Sub(q0)
	qp := q0.Sub(p0)
	denom := r.Cross(s)

	scale := r.Length() * s.Length()
	if scale == 0 {
		// A degenerate segment is a point; test it against the other one.
		if r.Length() == 0 {
			return pointOnSegment(p0, q0, q1, eps)
		}
		return pointOnSegment(q0, p0, p1, eps)
	}

	if math32.Abs(denom) <= eps*scale {
		// Parallel: only collinear, overlapping segments meet.
		if math32.Abs(qp.Cross(r)) > eps*scale {
			return false
		}
		rr := r.Dot(r)
		t0 := qp.Dot(r) / rr
		t1 := q1.Sub(p0).Dot(r) / rr
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		return t1 >= -eps && t0 <= 1+eps
	}

	t := qp.Cross(s) / denom
	u := qp.Cross(r) / denom
	return t >= -eps && t <= 1+eps && u >= -eps && u <= 1+eps
}

func pointOnSegment(p, a, b common.Vector2, eps float32) bool {
	ab := b.Sub(a)
	l := ab.Length()
	if l == 0 {
		return p.DistanceTo(a) <= eps
	}
	if math32.Abs(ab.Cross(p.Sub(a)))/l > eps {
		return false
	}
	t := ab.Dot(p.Sub(a)) / (l * l)
	return t >= -eps && t <= 1+eps
}
