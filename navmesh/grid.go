package navmesh

import "github.com/milk9111/navpath/common"

// GridSpec describes a flat rectangular mesh on the XY plane. Every open
// cell is split into two triangles along its diagonal; cells listed in
// Blocked are left out.
type GridSpec struct {
	Cols     int        `yaml:"cols" toml:"cols"`
	Rows     int        `yaml:"rows" toml:"rows"`
	CellSize float32    `yaml:"cell_size" toml:"cell_size"`
	Origin   [3]float32 `yaml:"origin" toml:"origin"`
	Blocked  [][2]int   `yaml:"blocked" toml:"blocked"`
}

// NewGrid builds the mesh described by spec with gravity along -Z.
func NewGrid(spec GridSpec) (*NavigationMesh, error) {
	size := spec.CellSize
	if size <= 0 {
		size = 1
	}
	origin := common.Vec3FromArray(spec.Origin)

	blocked := make(map[[2]int]bool, len(spec.Blocked))
	for _, b := range spec.Blocked {
		blocked[b] = true
	}

	vertices := make([]common.Vector3, 0, (spec.Cols+1)*(spec.Rows+1))
	for y := 0; y <= spec.Rows; y++ {
		for x := 0; x <= spec.Cols; x++ {
			vertices = append(vertices, origin.Add(common.Vec3(float32(x)*size, float32(y)*size, 0)))
		}
	}
	at := func(x, y int) VertexIndex {
		return VertexIndex(y*(spec.Cols+1) + x)
	}

	triangles := make([][3]VertexIndex, 0, spec.Cols*spec.Rows*2)
	for y := 0; y < spec.Rows; y++ {
		for x := 0; x < spec.Cols; x++ {
			if blocked[[2]int{x, y}] {
				continue
			}
			triangles = append(triangles,
				[3]VertexIndex{at(x, y), at(x+1, y), at(x+1, y+1)},
				[3]VertexIndex{at(x, y), at(x+1, y+1), at(x, y+1)},
			)
		}
	}

	return FromTriangles(vertices, triangles, DefaultGravity)
}
