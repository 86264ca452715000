package pathfinder

import (
	"container/list"
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/milk9111/navpath/navmesh"
)

var (
	ErrNilMesh          = errors.New("pathfinder: navigation mesh is nil")
	ErrInvalidFace      = errors.New("pathfinder: invalid face index")
	ErrSearchAborted    = errors.New("pathfinder: iteration limit reached")
	ErrUnknownAlgorithm = errors.New("pathfinder: unknown algorithm")
)

// PriorityScaleFactor weighs how strongly progress along the
// source -> target direction pulls a node towards the front of the queue.
// Zero orders by distance only.
const PriorityScaleFactor float32 = 0.7

// Result is the raw outcome of a face-graph search.
type Result struct {
	// Faces is the face sequence from source to target; empty when the
	// target is unreachable.
	Faces []navmesh.FaceIndex
	// Cost is the summed centre-to-centre weight along Faces.
	Cost float32
	// Iterations counts queue pops, Relaxations counts improved labels.
	Iterations  int
	Relaxations int
}

// Found reports whether the search produced a path.
func (r Result) Found() bool {
	return len(r.Faces) > 0
}

const (
	forward  = 0
	backward = 1
)

// searchState is the per-query scratch space. It is allocated per call so
// concurrent queries on one graph never share it.
type searchState struct {
	dist     [2][]float32
	priority [2][]float32
	prev     [2][]navmesh.FaceIndex
	queued   [2][]bool

	maxIterations int
	iterations    int
	relaxations   int
}

func newSearchState(n, maxIterations int) *searchState {
	s := &searchState{maxIterations: maxIterations}
	inf := math32.Inf(1)
	for d := 0; d < 2; d++ {
		s.dist[d] = make([]float32, n)
		s.priority[d] = make([]float32, n)
		s.prev[d] = make([]navmesh.FaceIndex, n)
		s.queued[d] = make([]bool, n)
		for i := 0; i < n; i++ {
			s.dist[d][i] = inf
			s.priority[d][i] = -1
			s.prev[d][i] = navmesh.NullFace
		}
	}
	return s
}

// step counts one queue pop and reports whether the iteration cap is hit.
func (s *searchState) step() error {
	s.iterations++
	if s.maxIterations > 0 && s.iterations > s.maxIterations {
		return fmt.Errorf("%w: %d", ErrSearchAborted, s.maxIterations)
	}
	return nil
}

// distancePenalty orders the relaxation queue: lower values are expanded
// first.
func (s *searchState) distancePenalty(dir int, i navmesh.FaceIndex) float32 {
	return s.dist[dir][i] - s.priority[dir][i]*PriorityScaleFactor
}

// chain walks the predecessors of dir starting at from, in walk order.
func (s *searchState) chain(dir int, from navmesh.FaceIndex) []navmesh.FaceIndex {
	var out []navmesh.FaceIndex
	for u := from; u != navmesh.NullFace; u = s.prev[dir][u] {
		out = append(out, u)
		if len(out) > len(s.prev[dir]) {
			// A cycle would mean a corrupted predecessor table.
			return nil
		}
	}
	return out
}

func (s *searchState) result(faces []navmesh.FaceIndex, cost float32) Result {
	return Result{
		Faces:       faces,
		Cost:        cost,
		Iterations:  s.iterations,
		Relaxations: s.relaxations,
	}
}

type queueItem struct {
	face navmesh.FaceIndex
	dir  int
}

// relaxQueue is the small-label-first deque used by both SPFA variants.
type relaxQueue struct {
	items *list.List
	state *searchState
}

func newRelaxQueue(s *searchState) *relaxQueue {
	return &relaxQueue{items: list.New(), state: s}
}

func (q *relaxQueue) Len() int {
	return q.items.Len()
}

// push enqueues face unless it already waits in the queue for dir. A node
// whose penalty beats the current front jumps ahead of it; ties keep FIFO
// order.
func (q *relaxQueue) push(face navmesh.FaceIndex, dir int) {
	s := q.state
	if s.queued[dir][face] {
		return
	}
	s.queued[dir][face] = true
	item := queueItem{face: face, dir: dir}
	if front := q.items.Front(); front != nil {
		f := front.Value.(queueItem)
		if s.distancePenalty(dir, face) < s.distancePenalty(f.dir, f.face) {
			q.items.PushFront(item)
			return
		}
	}
	q.items.PushBack(item)
}

func (q *relaxQueue) pop() queueItem {
	front := q.items.Front()
	q.items.Remove(front)
	item := front.Value.(queueItem)
	q.state.queued[item.dir][item.face] = false
	return item
}
