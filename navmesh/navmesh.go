// Package navmesh holds the triangulated walkable surface that agents route
// across: vertices, edges shared by at most two faces, and triangle faces,
// together with the transform placing the mesh in its parent scene.
package navmesh

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/milk9111/navpath/common"
)

type (
	VertexIndex uint32
	EdgeIndex   uint32
	FaceIndex   uint32
)

const (
	NullFace FaceIndex = ^FaceIndex(0)
	NullEdge EdgeIndex = ^EdgeIndex(0)
)

var (
	ErrInvalidIndex      = errors.New("navmesh: index out of range")
	ErrNonManifold       = errors.New("navmesh: edge shared by more than two faces")
	ErrDegenerateFace    = errors.New("navmesh: degenerate face")
	ErrSingularTransform = errors.New("navmesh: scene transform is not invertible")
)

// DefaultGravity points down the Z axis, the up axis of the mesh exporter.
var DefaultGravity = common.Vec3(0, 0, -1)

// Edge joins two vertices and lists the faces sharing it. Boundary edges
// have NullFace in the second slot.
type Edge struct {
	Vertex [2]VertexIndex
	Face   [2]FaceIndex
}

// Boundary reports whether only one face owns the edge.
func (e Edge) Boundary() bool {
	return e.Face[0] == NullFace || e.Face[1] == NullFace
}

// Other returns the face across the edge from f, or NullFace.
func (e Edge) Other(f FaceIndex) FaceIndex {
	switch f {
	case e.Face[0]:
		return e.Face[1]
	case e.Face[1]:
		return e.Face[0]
	default:
		return NullFace
	}
}

// Face is a triangle of the mesh.
type Face struct {
	Vertex [3]VertexIndex
	Edge   [3]EdgeIndex
	Normal common.Vector3
	Center common.Vector3
}

// NavigationMesh is immutable after construction apart from its scene
// transform.
type NavigationMesh struct {
	vertices []common.Vector3
	edges    []Edge
	faces    []Face

	gravity common.Vector3
	axes    [2]int

	transform common.Matrix4
	inverse   common.Matrix4
}

// New validates the raw buffers and builds a mesh around them. The slices
// are owned by the mesh afterwards.
func New(vertices []common.Vector3, edges []Edge, faces []Face, gravity common.Vector3) (*NavigationMesh, error) {
	for i, e := range edges {
		for _, v := range e.Vertex {
			if int(v) >= len(vertices) {
				return nil, fmt.Errorf("navmesh: edge %d vertex %d: %w", i, v, ErrInvalidIndex)
			}
		}
		for _, f := range e.Face {
			if f != NullFace && int(f) >= len(faces) {
				return nil, fmt.Errorf("navmesh: edge %d face %d: %w", i, f, ErrInvalidIndex)
			}
		}
	}
	for i, f := range faces {
		for _, v := range f.Vertex {
			if int(v) >= len(vertices) {
				return nil, fmt.Errorf("navmesh: face %d vertex %d: %w", i, v, ErrInvalidIndex)
			}
		}
		for _, e := range f.Edge {
			if int(e) >= len(edges) {
				return nil, fmt.Errorf("navmesh: face %d edge %d: %w", i, e, ErrInvalidIndex)
			}
		}
	}

	if gravity.LengthSquared() == 0 {
		gravity = DefaultGravity
	}
	gravity = gravity.Normal()

	m := &NavigationMesh{
		vertices:  vertices,
		edges:     edges,
		faces:     faces,
		gravity:   gravity,
		axes:      floorAxes(gravity),
		transform: common.Identity4(),
		inverse:   common.Identity4(),
	}
	return m, nil
}

// floorAxes picks the two coordinate axes spanning the floor plane, dropping
// the axis gravity is mostly aligned with.
func floorAxes(g common.Vector3) [2]int {
	ax, ay, az := math32.Abs(g.X), math32.Abs(g.Y), math32.Abs(g.Z)
	switch {
	case az >= ax && az >= ay:
		return [2]int{0, 1}
	case ay >= ax:
		return [2]int{0, 2}
	default:
		return [2]int{1, 2}
	}
}

func (m *NavigationMesh) FaceCount() uint32 {
	if m == nil {
		return 0
	}
	return uint32(len(m.faces))
}

func (m *NavigationMesh) EdgeCount() uint32 {
	if m == nil {
		return 0
	}
	return uint32(len(m.edges))
}

func (m *NavigationMesh) VertexCount() uint32 {
	if m == nil {
		return 0
	}
	return uint32(len(m.vertices))
}

// Face returns the face at i, or nil when i is out of range.
func (m *NavigationMesh) Face(i FaceIndex) *Face {
	if m == nil || int(i) >= len(m.faces) {
		return nil
	}
	return &m.faces[i]
}

// Edge returns the edge at i, or nil when i is out of range.
func (m *NavigationMesh) Edge(i EdgeIndex) *Edge {
	if m == nil || int(i) >= len(m.edges) {
		return nil
	}
	return &m.edges[i]
}

// Vertex returns the mesh-local position of vertex i, or nil.
func (m *NavigationMesh) Vertex(i VertexIndex) *common.Vector3 {
	if m == nil || int(i) >= len(m.vertices) {
		return nil
	}
	return &m.vertices[i]
}

// Neighbors returns the faces across each edge of face i, in edge order.
func (m *NavigationMesh) Neighbors(i FaceIndex) [3]FaceIndex {
	out := [3]FaceIndex{NullFace, NullFace, NullFace}
	f := m.Face(i)
	if f == nil {
		return out
	}
	for k, ei := range f.Edge {
		out[k] = m.edges[ei].Other(i)
	}
	return out
}

// FaceVertices returns the three mesh-local corners of face i.
func (m *NavigationMesh) FaceVertices(i FaceIndex) (a, b, c common.Vector3) {
	f := &m.faces[i]
	return m.vertices[f.Vertex[0]], m.vertices[f.Vertex[1]], m.vertices[f.Vertex[2]]
}

// GravityVector is the unit down direction in mesh-local space.
func (m *NavigationMesh) GravityVector() common.Vector3 {
	return m.gravity
}

// SetSceneTransform places the mesh in its parent space.
func (m *NavigationMesh) SetSceneTransform(t common.Matrix4) error {
	inv, ok := t.Inverse()
	if !ok {
		return ErrSingularTransform
	}
	m.transform = t
	m.inverse = inv
	return nil
}

func (m *NavigationMesh) SceneTransform() common.Matrix4 {
	return m.transform
}

func (m *NavigationMesh) PointSceneToLocal(p common.Vector3) common.Vector3 {
	return m.inverse.MulPoint(p)
}

func (m *NavigationMesh) PointLocalToScene(p common.Vector3) common.Vector3 {
	return m.transform.MulPoint(p)
}

// Project2D maps a mesh-local point onto the floor plane.
func (m *NavigationMesh) Project2D(p common.Vector3) common.Vector2 {
	return common.Vec2(p.Component(m.axes[0]), p.Component(m.axes[1]))
}

// Height is the mesh-local coordinate of p along the axis the floor plane
// drops.
func (m *NavigationMesh) Height(p common.Vector3) float32 {
	return p.Component(3 - m.axes[0] - m.axes[1])
}

// PointSceneToFloor splits a scene point into floor-plane coordinates and
// its local height. PointFloorToScene undoes it.
func (m *NavigationMesh) PointSceneToFloor(p common.Vector3) (common.Vector2, float32) {
	local := m.PointSceneToLocal(p)
	return m.Project2D(local), m.Height(local)
}

func (m *NavigationMesh) PointFloorToScene(q common.Vector2, height float32) common.Vector3 {
	var c [3]float32
	c[m.axes[0]] = q.X
	c[m.axes[1]] = q.Y
	c[3-m.axes[0]-m.axes[1]] = height
	return m.PointLocalToScene(common.Vec3FromArray(c))
}

// DirectionSceneToFloor maps a scene-space displacement onto the floor
// plane, dropping its height component.
func (m *NavigationMesh) DirectionSceneToFloor(d common.Vector3) common.Vector2 {
	return m.Project2D(m.inverse.MulDirection(d))
}

// Bounds returns the mesh-local axis aligned bounds of all vertices.
func (m *NavigationMesh) Bounds() (lo, hi common.Vector3) {
	if m == nil || len(m.vertices) == 0 {
		return
	}
	lo, hi = m.vertices[0], m.vertices[0]
	for _, v := range m.vertices[1:] {
		lo = common.Vec3(math32.Min(lo.X, v.X), math32.Min(lo.Y, v.Y), math32.Min(lo.Z, v.Z))
		hi = common.Vec3(math32.Max(hi.X, v.X), math32.Max(hi.Y, v.Y), math32.Max(hi.Z, v.Z))
	}
	return lo, hi
}
