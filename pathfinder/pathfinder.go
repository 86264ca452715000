// Package pathfinder routes agents across a navigation mesh. It turns the
// mesh faces into a weighted adjacency graph once, answers shortest face
// path queries with one of several strategies and reduces the face
// corridor to the few turning points an agent has to walk through.
package pathfinder

import (
	"fmt"
	"log"
	"sync"

	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/navmesh"
)

// Options configure a PathFinder. The zero value runs the default strategy
// without an iteration cap.
type Options struct {
	Algorithm Algorithm
	// MaxIterations caps queue pops per query; 0 disables the cap.
	MaxIterations int
	// Raw skips OptimizeWaypoints and returns one waypoint per crossed
	// portal.
	Raw bool
}

// PathFinder answers path queries on one navigation mesh. The mesh is
// borrowed and must outlive the PathFinder. Queries are safe to run
// concurrently; Rebuild waits for running queries.
type PathFinder struct {
	mu    sync.RWMutex
	mesh  *navmesh.NavigationMesh
	opts  Options
	graph graph
}

// New builds the search graph for mesh.
func New(mesh *navmesh.NavigationMesh, opts Options) (*PathFinder, error) {
	if mesh == nil {
		return nil, ErrNilMesh
	}
	if _, ok := algorithmNames[opts.Algorithm]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(opts.Algorithm))
	}
	pf := &PathFinder{mesh: mesh, opts: opts}
	pf.prepare()
	return pf, nil
}

func (pf *PathFinder) prepare() {
	pf.graph = buildGraph(pf.mesh)
	log.Printf("pathfinder: prepared graph faces=%d components=%d algorithm=%s",
		len(pf.graph.nodes), pf.graph.componentCount(), pf.opts.Algorithm.resolve())
}

// Rebuild recomputes the graph, for instance after the mesh was replaced.
// A non-nil mesh replaces the one the PathFinder was built with.
func (pf *PathFinder) Rebuild(mesh *navmesh.NavigationMesh) {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	if mesh != nil {
		pf.mesh = mesh
	}
	pf.prepare()
}

// Mesh returns the mesh queries run against.
func (pf *PathFinder) Mesh() *navmesh.NavigationMesh {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.mesh
}

func (pf *PathFinder) Algorithm() Algorithm {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.opts.Algorithm.resolve()
}

// SetAlgorithm switches the strategy used by subsequent queries.
func (pf *PathFinder) SetAlgorithm(a Algorithm) error {
	if _, ok := algorithmNames[a]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(a))
	}
	pf.mu.Lock()
	defer pf.mu.Unlock()
	pf.opts.Algorithm = a
	return nil
}

// Face returns the mesh face at i, or nil.
func (pf *PathFinder) Face(i navmesh.FaceIndex) *navmesh.Face {
	return pf.Mesh().Face(i)
}

// Node returns the graph node for face i.
func (pf *PathFinder) Node(i navmesh.FaceIndex) (FaceNode, bool) {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	if int(i) >= len(pf.graph.nodes) {
		return FaceNode{}, false
	}
	return pf.graph.nodes[i], true
}

// ComponentID labels the island of faces containing i.
func (pf *PathFinder) ComponentID(i navmesh.FaceIndex) (navmesh.FaceIndex, bool) {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	if int(i) >= len(pf.graph.components) {
		return navmesh.NullFace, false
	}
	return pf.graph.components[i], true
}

// Connected reports whether a path exists between faces a and b.
func (pf *PathFinder) Connected(a, b navmesh.FaceIndex) bool {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	n := len(pf.graph.components)
	if int(a) >= n || int(b) >= n {
		return false
	}
	return pf.graph.components[a] == pf.graph.components[b]
}

// FindPath routes between two scene-space positions. Each position is
// dropped onto the floor below it; positions off the mesh, and targets
// that cannot be reached, give an empty list.
func (pf *PathFinder) FindPath(from, to common.Vector3) (WayPointList, error) {
	pf.mu.RLock()
	defer pf.mu.RUnlock()

	fromFloor, fromFace, ok := pf.mesh.FindFloor(from)
	if !ok {
		return nil, nil
	}
	toFloor, toFace, ok := pf.mesh.FindFloor(to)
	if !ok {
		return nil, nil
	}

	res, err := pf.search(fromFace, toFace)
	if err != nil || !res.Found() {
		return nil, err
	}
	start := pf.mesh.PointSceneToLocal(fromFloor)
	end := pf.mesh.PointSceneToLocal(toFloor)
	return pf.waypoints(res.Faces, start, end), nil
}

// FindPathFaces routes from the centre of face source to the centre of
// face target.
func (pf *PathFinder) FindPathFaces(source, target navmesh.FaceIndex) (WayPointList, error) {
	pf.mu.RLock()
	defer pf.mu.RUnlock()

	res, err := pf.search(source, target)
	if err != nil || !res.Found() {
		return nil, err
	}
	if source == target {
		center := pf.mesh.Face(source).Center
		return WayPointList{newWayPoint(pf.mesh, center, source, navmesh.NullEdge)}, nil
	}
	start := pf.mesh.Face(source).Center
	end := pf.mesh.Face(target).Center
	return pf.waypoints(res.Faces, start, end), nil
}

// Search returns the raw face sequence between two faces together with the
// search counters.
func (pf *PathFinder) Search(source, target navmesh.FaceIndex) (Result, error) {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.search(source, target)
}

func (pf *PathFinder) search(source, target navmesh.FaceIndex) (Result, error) {
	n := len(pf.graph.nodes)
	if int(source) >= n {
		return Result{}, fmt.Errorf("%w: source %d of %d", ErrInvalidFace, source, n)
	}
	if int(target) >= n {
		return Result{}, fmt.Errorf("%w: target %d of %d", ErrInvalidFace, target, n)
	}
	if source == target {
		return Result{Faces: []navmesh.FaceIndex{source}}, nil
	}
	if pf.graph.components[source] != pf.graph.components[target] {
		return Result{}, nil
	}

	s := newSearchState(n, pf.opts.MaxIterations)
	switch pf.opts.Algorithm.resolve() {
	case SPFA:
		return pf.graph.searchSPFA(source, target, s)
	case Dijkstra:
		return pf.graph.searchDijkstra(source, target, s)
	default:
		return pf.graph.searchSPFADoubleWay(source, target, s)
	}
}

func (pf *PathFinder) waypoints(faces []navmesh.FaceIndex, start, end common.Vector3) WayPointList {
	if len(faces) == 1 {
		out := WayPointList{newWayPoint(pf.mesh, start, faces[0], navmesh.NullEdge)}
		if start.DistanceTo(end) > common.Epsilon {
			out = append(out, newWayPoint(pf.mesh, end, faces[0], navmesh.NullEdge))
		}
		return out
	}
	raw := pf.graph.rawWaypoints(pf.mesh, faces, start, end)
	if pf.opts.Raw {
		return raw
	}
	return OptimizeWaypoints(pf.mesh, raw)
}
