package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/navpath/navmesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGrid(t *testing.T) {
	cases := []struct {
		name    string
		grid    string
		blocked string
		want    navmesh.GridSpec
		wantErr bool
	}{
		{"plain", "4,3", "", navmesh.GridSpec{Cols: 4, Rows: 3, CellSize: 2}, false},
		{"blocked", "4, 3", "1:0; 2:2;", navmesh.GridSpec{Cols: 4, Rows: 3, CellSize: 2, Blocked: [][2]int{{1, 0}, {2, 2}}}, false},
		{"bad_separator", "4x3", "", navmesh.GridSpec{}, true},
		{"zero_rows", "4,0", "", navmesh.GridSpec{}, true},
		{"bad_blocked", "4,3", "1-0", navmesh.GridSpec{}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := parseGrid(c.grid, 2, c.blocked)
			if c.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestBuildAndWriteGrid(t *testing.T) {
	mesh, err := build("", "3,2", 1, "1:1")
	require.NoError(t, err)
	assert.Equal(t, uint32(10), mesh.FaceCount())

	out := filepath.Join(t.TempDir(), "grid.navmesh")
	require.NoError(t, write(out, mesh))

	back, err := navmesh.LoadFile(out)
	require.NoError(t, err)
	assert.Equal(t, mesh.FaceCount(), back.FaceCount())
	assert.Equal(t, mesh.GravityVector(), back.GravityVector())
}

func TestBuildFromSpec(t *testing.T) {
	in := filepath.Join(t.TempDir(), "tri.toml")
	require.NoError(t, os.WriteFile(in, []byte(`
gravity = [0.0, 0.0, -1.0]
vertices = [[0.0, 0.0, 0.0], [1.0, 0.0, 0.0], [0.0, 1.0, 0.0]]
triangles = [[0, 1, 2]]
`), 0o644))

	mesh, err := build(in, "", 1, "")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), mesh.FaceCount())

	_, err = build("", "", 1, "")
	assert.Error(t, err)
}
