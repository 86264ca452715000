package navmesh

import (
	"github.com/chewxy/math32"
	"github.com/milk9111/navpath/common"
)

// FloorTolerance is how far below a face, along gravity, a query point may
// sit and still be snapped up onto it.
const FloorTolerance float32 = 1e-2

// FindFloor drops scenePos along gravity onto the nearest face below it.
// It returns the floor point in scene space and the face it lies on.
func (m *NavigationMesh) FindFloor(scenePos common.Vector3) (common.Vector3, FaceIndex, bool) {
	if m == nil || len(m.faces) == 0 {
		return common.Vector3{}, NullFace, false
	}
	local := m.PointSceneToLocal(scenePos)

	best := NullFace
	bestT := math32.Inf(1)
	var bestHit common.Vector3
	for i := range m.faces {
		t, hit, ok := m.dropOnFace(FaceIndex(i), local)
		if !ok || t >= bestT {
			continue
		}
		best, bestT, bestHit = FaceIndex(i), t, hit
	}
	if best == NullFace {
		return common.Vector3{}, NullFace, false
	}
	return m.PointLocalToScene(bestHit), best, true
}

// FindFloorForFace is FindFloor restricted to face and, unless
// dontCheckNeighbours is set, the faces adjacent to it.
func (m *NavigationMesh) FindFloorForFace(scenePos common.Vector3, face FaceIndex, dontCheckNeighbours bool) (common.Vector3, FaceIndex, bool) {
	if m.Face(face) == nil {
		return common.Vector3{}, NullFace, false
	}
	local := m.PointSceneToLocal(scenePos)

	if _, hit, ok := m.dropOnFace(face, local); ok {
		return m.PointLocalToScene(hit), face, true
	}
	if dontCheckNeighbours {
		return common.Vector3{}, NullFace, false
	}
	for _, n := range m.Neighbors(face) {
		if n == NullFace {
			continue
		}
		if _, hit, ok := m.dropOnFace(n, local); ok {
			return m.PointLocalToScene(hit), n, true
		}
	}
	return common.Vector3{}, NullFace, false
}

// dropOnFace casts p along gravity onto the plane of face i. t is the
// distance travelled; hits further than FloorTolerance above p are rejected.
func (m *NavigationMesh) dropOnFace(i FaceIndex, p common.Vector3) (float32, common.Vector3, bool) {
	a, b, c := m.FaceVertices(i)
	n := b.Sub(a).Cross(c.Sub(a))
	denom := n.Dot(m.gravity)
	if math32.Abs(denom) < common.Epsilon {
		return 0, common.Vector3{}, false
	}
	t := n.Dot(a.Sub(p)) / denom
	if t < -FloorTolerance {
		return 0, common.Vector3{}, false
	}
	hit := p.Add(m.gravity.MulScalar(t))
	if !PointInTriangle(hit, a, b, c) {
		return 0, common.Vector3{}, false
	}
	return t, hit, true
}

// PointInTriangle reports whether p, assumed to lie in the plane of the
// triangle, is inside it or on its boundary.
func PointInTriangle(p, a, b, c common.Vector3) bool {
	v0 := c.Sub(a)
	v1 := b.Sub(a)
	v2 := p.Sub(a)

	dot00 := v0.Dot(v0)
	dot01 := v0.Dot(v1)
	dot02 := v0.Dot(v2)
	dot11 := v1.Dot(v1)
	dot12 := v1.Dot(v2)

	denom := dot00*dot11 - dot01*dot01
	if denom == 0 {
		return false
	}
	inv := 1 / denom
	u := (dot11*dot02 - dot01*dot12) * inv
	v := (dot00*dot12 - dot01*dot02) * inv

	const eps = 1e-4
	return u >= -eps && v >= -eps && u+v <= 1+eps
}
