package pathfinder

import (
	"testing"

	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/navmesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentsIntersect(t *testing.T) {
	v := common.Vec2
	tests := []struct {
		name           string
		p0, p1, q0, q1 common.Vector2
		want           bool
	}{
		{"crossing", v(0, 0), v(2, 2), v(0, 2), v(2, 0), true},
		{"touching at endpoint", v(0, 0), v(1, 1), v(1, 1), v(2, 0), true},
		{"t junction", v(0, 0), v(2, 0), v(1, 0), v(1, 3), true},
		{"disjoint", v(0, 0), v(1, 0), v(0, 1), v(1, 2), false},
		{"short of crossing", v(0, 0), v(0.9, 0.9), v(0, 2), v(2, 0), false},
		{"parallel", v(0, 0), v(2, 0), v(0, 1), v(2, 1), false},
		{"collinear overlap", v(0, 0), v(2, 0), v(1, 0), v(3, 0), true},
		{"collinear apart", v(0, 0), v(1, 0), v(2, 0), v(3, 0), false},
		{"point on segment", v(1, 1), v(1, 1), v(0, 0), v(2, 2), true},
		{"point off segment", v(1, 0), v(1, 0), v(0, 0), v(2, 2), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, segmentsIntersect(tt.p0, tt.p1, tt.q0, tt.q1))
			assert.Equal(t, tt.want, segmentsIntersect(tt.q0, tt.q1, tt.p0, tt.p1))
		})
	}
}

func TestOptimizeWaypointsShortLists(t *testing.T) {
	m := unitSquare(t)
	assert.Empty(t, OptimizeWaypoints(m, nil))

	in := WayPointList{
		{Point3D: common.Vec3(0.6, 0.2, 0), Face: 0, Edge: navmesh.NullEdge},
		{Point3D: common.Vec3(0.2, 0.6, 0), Face: 1, Edge: navmesh.NullEdge},
	}
	out := OptimizeWaypoints(m, in)
	assert.Equal(t, in, out)
	out[0].Face = 9
	assert.Equal(t, navmesh.FaceIndex(0), in[0].Face)
}

func TestOptimizeWaypointsStraightCorridor(t *testing.T) {
	m := grid(t, navmesh.GridSpec{Cols: 6, Rows: 1, CellSize: 1})
	pf := newFinder(t, m, Options{Raw: true})

	raw, err := pf.FindPath(common.Vec3(0.3, 0.5, 1), common.Vec3(5.7, 0.5, 1))
	require.NoError(t, err)
	require.Greater(t, len(raw), 2)

	out := OptimizeWaypoints(m, raw)
	require.Len(t, out, 2)
	assert.Equal(t, raw[0], out[0])
	assert.Equal(t, raw[len(raw)-1], out[1])
}

func TestOptimizeWaypointsKeepsCorners(t *testing.T) {
	// An L shaped corridor: right along the bottom row, then up the last
	// column.
	m := grid(t, navmesh.GridSpec{
		Cols: 4, Rows: 4, CellSize: 1,
		Blocked: [][2]int{
			{0, 1}, {1, 1}, {2, 1},
			{0, 2}, {1, 2}, {2, 2},
			{0, 3}, {1, 3}, {2, 3},
		},
	})
	pf := newFinder(t, m, Options{Raw: true})
	raw, err := pf.FindPath(common.Vec3(0.5, 0.5, 1), common.Vec3(3.5, 3.5, 1))
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	out := OptimizeWaypoints(m, raw)
	assert.GreaterOrEqual(t, len(out), 3)
	assert.LessOrEqual(t, len(out), len(raw))
	assert.Equal(t, raw[0], out[0])
	assert.Equal(t, raw[len(raw)-1], out[len(out)-1])
	assert.LessOrEqual(t, out.Length(), raw.Length()+1e-4)

	// Every kept waypoint is one of the raw ones, in order.
	j := 0
	for _, wp := range out {
		for j < len(raw) && raw[j] != wp {
			j++
		}
		require.Less(t, j, len(raw), "waypoint %v not in raw path", wp.Point3D)
	}
}
