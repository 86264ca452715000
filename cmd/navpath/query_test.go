package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/navmesh"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVector(t *testing.T) {
	cases := []struct {
		in      string
		want    common.Vector3
		wantErr bool
	}{
		{"1,2,3", common.Vec3(1, 2, 3), false},
		{" 1.5 , -2 ", common.Vec3(1.5, -2, 0), false},
		{"1", common.Vector3{}, true},
		{"1,2,3,4", common.Vector3{}, true},
		{"a,b", common.Vector3{}, true},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := parseVector(c.in)
			if c.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestParseFaces(t *testing.T) {
	got, err := parseFaces("3, 7")
	require.NoError(t, err)
	assert.Equal(t, [2]navmesh.FaceIndex{3, 7}, *got)

	for _, bad := range []string{"3", "1,2,3", "-1,2", "x,1"} {
		_, err := parseFaces(bad)
		assert.Error(t, err, bad)
	}
}

func TestQueryScenarioAllAlgorithms(t *testing.T) {
	q := query{
		Scenario:      "corridor",
		Algorithm:     "all",
		MaxIterations: -1,
		From:          common.Vec3(2.5, 1.5, 0),
		To:            common.Vec3(16, 3.5, 0),
	}
	reports, err := q.run()
	require.NoError(t, err)
	require.Len(t, reports, 3)

	for _, r := range reports {
		t.Run(r.Algorithm, func(t *testing.T) {
			assert.Empty(t, r.Error)
			require.True(t, r.Found)
			require.GreaterOrEqual(t, len(r.Waypoints), 2)
			assert.InDelta(t, 2.5, r.Waypoints[0].Point[0], 1e-4)
			assert.InDelta(t, 16, r.Waypoints[len(r.Waypoints)-1].Point[0], 1e-4)
			assert.Greater(t, r.Length, float32(13.5))
			assert.Greater(t, r.FaceCount, 2)
			assert.Positive(t, r.Iterations)
		})
	}
}

func TestQueryOffMesh(t *testing.T) {
	q := query{Scenario: "corridor", MaxIterations: -1, From: common.Vec3(100, 100, 0), To: common.Vec3(16, 3.5, 0)}
	reports, err := q.run()
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "dijkstra", reports[0].Algorithm)
	assert.False(t, reports[0].Found)
	assert.Empty(t, reports[0].Error)
}

func TestQueryMeshFileByFaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "square.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
gravity: [0, 0, -1]
vertices: [[0, 0, 0], [1, 0, 0], [1, 1, 0], [0, 1, 0]]
triangles: [[0, 1, 2], [0, 2, 3]]
`), 0o644))

	q := query{MeshPath: path, MaxIterations: 0, Faces: &[2]navmesh.FaceIndex{0, 1}}
	reports, err := q.run()
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.True(t, reports[0].Found)
	assert.Equal(t, 2, reports[0].FaceCount)

	q.Faces = &[2]navmesh.FaceIndex{0, 9}
	reports, err = q.run()
	require.NoError(t, err)
	assert.Contains(t, reports[0].Error, "invalid face")
}

func TestQueryErrors(t *testing.T) {
	_, err := query{}.run()
	assert.ErrorIs(t, err, errNoMesh)

	_, err = query{Scenario: "corridor", Algorithm: "bogus"}.run()
	assert.Error(t, err)
}

func TestPrintReports(t *testing.T) {
	var buf bytes.Buffer
	out := termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii))
	printReports(out, []report{
		{Algorithm: "spfa", Found: true, Length: 2, FaceCount: 2, Waypoints: []waypoint{{Point: [3]float32{0, 0, 0}}, {Point: [3]float32{2, 0, 0}, Face: 1}}},
		{Algorithm: "dijkstra"},
		{Algorithm: "spfa-double-way", Error: "boom"},
	})

	s := buf.String()
	assert.Contains(t, s, "found waypoints=2 length=2.000")
	assert.Contains(t, s, "(2.000, 0.000, 0.000) face 1")
	assert.Contains(t, s, "no path")
	assert.Contains(t, s, "error boom")
}
