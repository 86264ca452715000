package pathfinder

import (
	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/navmesh"
)

// WayPoint is one point of a returned path.
type WayPoint struct {
	// Point3D is the position in the mesh's parent (scene) space.
	Point3D common.Vector3
	// Point2D is the mesh-local position projected onto the floor plane.
	Point2D common.Vector2
	// Face is the face the point lies in.
	Face navmesh.FaceIndex
	// Edge is the portal crossed to reach the point, NullEdge for the
	// start point and for points that did not cross one.
	Edge navmesh.EdgeIndex
}

// WayPointList is ordered from start to end. An empty list means no path.
type WayPointList []WayPoint

// Length is the summed scene-space length of the polyline.
func (l WayPointList) Length() float32 {
	var total float32
	for i := 1; i < len(l); i++ {
		total += l[i].Point3D.DistanceTo(l[i-1].Point3D)
	}
	return total
}

// Points returns the scene-space positions.
func (l WayPointList) Points() []common.Vector3 {
	out := make([]common.Vector3, len(l))
	for i, wp := range l {
		out[i] = wp.Point3D
	}
	return out
}

func newWayPoint(mesh *navmesh.NavigationMesh, local common.Vector3, face navmesh.FaceIndex, edge navmesh.EdgeIndex) WayPoint {
	return WayPoint{
		Point3D: mesh.PointLocalToScene(local),
		Point2D: mesh.Project2D(local),
		Face:    face,
		Edge:    edge,
	}
}

// rawWaypoints lays the face sequence out as start, the midpoint of every
// crossed portal, then end. start and end are mesh-local.
func (g *graph) rawWaypoints(mesh *navmesh.NavigationMesh, faces []navmesh.FaceIndex, start, end common.Vector3) WayPointList {
	out := make(WayPointList, 0, len(faces)+1)
	out = append(out, newWayPoint(mesh, start, faces[0], navmesh.NullEdge))
	for i := 1; i < len(faces); i++ {
		ei := g.portal(faces[i-1], faces[i])
		e := mesh.Edge(ei)
		mid := mesh.Vertex(e.Vertex[0]).Lerp(*mesh.Vertex(e.Vertex[1]), 0.5)
		out = append(out, newWayPoint(mesh, mid, faces[i], ei))
	}
	out = append(out, newWayPoint(mesh, end, faces[len(faces)-1], navmesh.NullEdge))
	return out
}
