package prefabs

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/pathfinder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	cases := []struct {
		name      string
		input     string
		mesh      string
		algorithm pathfinder.Algorithm
		agents    []string
	}{
		{"yaml_by_name", "demo", "arena.yaml", pathfinder.SPFADoubleWay, []string{"patroller", "wanderer", "walker"}},
		{"yaml_with_dir", "scenarios/demo.yaml", "arena.yaml", pathfinder.SPFADoubleWay, []string{"patroller", "wanderer", "walker"}},
		{"toml_fallback", "corridor", "corridor.toml", pathfinder.Dijkstra, []string{"runner"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			spec, err := LoadScenario(c.input)
			require.NoError(t, err)
			assert.Equal(t, c.mesh, spec.Mesh)
			assert.Equal(t, c.algorithm, spec.Algorithm)

			names := make([]string, 0, len(spec.Agents))
			for _, a := range spec.Agents {
				names = append(names, a.Name)
			}
			assert.Equal(t, c.agents, names)
		})
	}
}

func TestLoadScenarioDetails(t *testing.T) {
	spec, err := LoadScenario("corridor")
	require.NoError(t, err)
	assert.Equal(t, 10000, spec.MaxIterations)
	assert.Equal(t, [3]float32{2, 1, 0}, spec.Transform.Translation)

	runner := spec.Agents[0]
	require.NotNil(t, runner.Target)
	assert.Equal(t, [3]float32{16, 3.5, 0}, *runner.Target)
	require.NotNil(t, runner.Color)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0x70, B: 0x43, A: 0xff}, runner.Color.Color)

	demo, err := LoadScenario("demo")
	require.NoError(t, err)
	assert.Equal(t, "patrol.tengo", demo.Agents[0].Script)
	assert.True(t, demo.Agents[0].Physics)
	assert.Nil(t, demo.Agents[0].Target)
	assert.Equal(t, 120, demo.Agents[2].RepathFrames)
}

func TestLoadScenarioMissing(t *testing.T) {
	_, err := LoadScenario("does-not-exist")
	assert.Error(t, err)
}

func TestLoadMesh(t *testing.T) {
	cases := []struct {
		name  string
		faces uint32
	}{
		{"arena.yaml", 168},
		{"meshes/islands.yaml", 4},
		{"corridor.toml", 38},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, err := LoadMesh(c.name)
			require.NoError(t, err)
			assert.Equal(t, c.faces, m.FaceCount())
		})
	}

	_, err := LoadMesh("missing.yaml")
	assert.Error(t, err)
}

func TestScenarioBuildMeshPlacesMesh(t *testing.T) {
	spec, err := LoadScenario("corridor")
	require.NoError(t, err)
	m, err := spec.BuildMesh()
	require.NoError(t, err)

	start := common.Vec3FromArray(spec.Agents[0].Position)
	target := common.Vec3FromArray(*spec.Agents[0].Target)
	for _, p := range []common.Vector3{start, target} {
		_, _, ok := m.FindFloor(p)
		assert.True(t, ok, "%v is off the placed mesh", p)
	}
	_, _, ok := m.FindFloor(common.Vec3(0.5, 0.5, 0))
	assert.False(t, ok, "mesh origin moved by the transform")
}

func TestTransformSpecMatrix(t *testing.T) {
	cases := []struct {
		name string
		spec TransformSpec
		in   common.Vector3
		want common.Vector3
	}{
		{"zero_is_identity", TransformSpec{}, common.Vec3(1, 2, 3), common.Vec3(1, 2, 3)},
		{"translate", TransformSpec{Translation: [3]float32{2, 1, 0}}, common.Vec3(1, 0, 0), common.Vec3(3, 1, 0)},
		{"rotate_z_90", TransformSpec{Translation: [3]float32{2, 1, 0}, Axis: [3]float32{0, 0, 1}, Angle: 90}, common.Vec3(1, 0, 0), common.Vec3(2, 2, 0)},
		{"scale", TransformSpec{Scale: [3]float32{2, 0, 1}}, common.Vec3(1, 1, 1), common.Vec3(2, 1, 1)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := c.spec.Matrix().MulPoint(c.in)
			assert.InDelta(t, c.want.X, got.X, 1e-5)
			assert.InDelta(t, c.want.Y, got.Y, 1e-5)
			assert.InDelta(t, c.want.Z, got.Z, 1e-5)
		})
	}
}

func TestColorUnmarshalText(t *testing.T) {
	cases := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#ff0000", color.NRGBA{R: 255, A: 255}, false},
		{"00ff0080", color.NRGBA{G: 255, A: 0x80}, false},
		{" #0000ff ", color.NRGBA{B: 255, A: 255}, false},
		{"#fff", color.NRGBA{}, true},
		{"#gg0000", color.NRGBA{}, true},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			var col Color
			err := col.UnmarshalText([]byte(c.in))
			if c.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, col.Color)
		})
	}
}

func TestFileKinds(t *testing.T) {
	cases := []struct {
		path                 string
		spec, mesh, isScript bool
	}{
		{"prefabs/scenarios/demo.yaml", true, false, false},
		{"prefabs/meshes/corridor.TOML", true, false, false},
		{"arena.navmesh", false, true, false},
		{"arena.bin", false, true, false},
		{"prefabs/scripts/patrol.tengo", false, false, true},
		{"README.md", false, false, false},
	}

	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			assert.Equal(t, c.spec, IsSpecFile(c.path))
			assert.Equal(t, c.mesh, IsMeshFile(c.path))
			assert.Equal(t, c.isScript, IsScriptFile(c.path))
		})
	}
}

func TestPrefabPaths(t *testing.T) {
	assert.Equal(t, "scripts/patrol.tengo", Scripts.Path("patrol.tengo"))
	assert.Equal(t, "scripts/patrol.tengo", Scripts.Path("prefabs/scripts/patrol.tengo"))
	assert.Equal(t, "", Scripts.Path(""))
	assert.Equal(t, "scenarios/demo", Scenarios.Path("demo"))
	assert.Equal(t, "prefabs/meshes/arena.yaml", filepath.ToSlash(DiskPath(Meshes.Path("arena.yaml"))))
	assert.Equal(t, "meshes/arena.yaml", MeshPath("arena.yaml"))
	assert.Equal(t, "meshes/arena.yaml", MeshPath("prefabs/meshes/arena.yaml"))

	data, err := LoadScript("prefabs/scripts/wander.tengo")
	require.NoError(t, err)
	assert.Contains(t, string(data), "on_arrived")
}
