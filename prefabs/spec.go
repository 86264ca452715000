package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"path"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/navmesh"
	"github.com/milk9111/navpath/pathfinder"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var ErrNoMesh = errors.New("prefabs: scenario has no mesh")

// LoadSpec reads filename through Load and decodes it as toml when it ends
// in .toml, as yaml otherwise.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if strings.EqualFold(path.Ext(filename), ".toml") {
		err = toml.Unmarshal(data, &spec)
	} else {
		err = yaml.Unmarshal(data, &spec)
	}
	if err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// ScenarioSpec describes a mesh, the search settings used on it and the
// agents walking it.
type ScenarioSpec struct {
	Name          string               `yaml:"name" toml:"name"`
	Mesh          string               `yaml:"mesh" toml:"mesh"`
	Algorithm     pathfinder.Algorithm `yaml:"algorithm" toml:"algorithm"`
	MaxIterations int                  `yaml:"max_iterations" toml:"max_iterations"`
	Transform     TransformSpec        `yaml:"transform" toml:"transform"`
	Agents        []AgentSpec          `yaml:"agents" toml:"agents"`
}

// TransformSpec is the mesh's placement in the scene. Angle is in degrees
// around Axis; a zero Scale component means 1.
type TransformSpec struct {
	Translation [3]float32 `yaml:"translation" toml:"translation"`
	Axis        [3]float32 `yaml:"axis" toml:"axis"`
	Angle       float32    `yaml:"angle" toml:"angle"`
	Scale       [3]float32 `yaml:"scale" toml:"scale"`
}

type AgentSpec struct {
	Name         string      `yaml:"name" toml:"name"`
	Position     [3]float32  `yaml:"position" toml:"position"`
	Target       *[3]float32 `yaml:"target" toml:"target"`
	Speed        float32     `yaml:"speed" toml:"speed"`
	Radius       float32     `yaml:"radius" toml:"radius"`
	RepathFrames int         `yaml:"repath_frames" toml:"repath_frames"`
	Script       string      `yaml:"script" toml:"script"`
	Physics      bool        `yaml:"physics" toml:"physics"`
	Color        *Color      `yaml:"color" toml:"color"`
}

// Matrix returns the scene transform described by t.
func (t TransformSpec) Matrix() common.Matrix4 {
	scale := common.Vec3FromArray(t.Scale)
	if scale.X == 0 {
		scale.X = 1
	}
	if scale.Y == 0 {
		scale.Y = 1
	}
	if scale.Z == 0 {
		scale.Z = 1
	}
	angle := t.Angle * math32.Pi / 180
	return common.TRS(common.Vec3FromArray(t.Translation), common.Vec3FromArray(t.Axis), angle, scale)
}

// LoadScenario loads scenarios/<name>. Without an extension .yaml is tried
// before .toml.
func LoadScenario(name string) (ScenarioSpec, error) {
	file := Scenarios.Path(name)

	var (
		spec ScenarioSpec
		err  error
	)
	if path.Ext(file) != "" {
		spec, err = LoadSpec[ScenarioSpec](file)
	} else if spec, err = LoadSpec[ScenarioSpec](file + ".yaml"); err != nil {
		spec, err = LoadSpec[ScenarioSpec](file + ".toml")
	}
	if err != nil {
		return ScenarioSpec{}, err
	}
	if strings.TrimSpace(spec.Mesh) == "" {
		return ScenarioSpec{}, fmt.Errorf("%w: %s", ErrNoMesh, name)
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(path.Base(file), path.Ext(file))
	}
	return spec, nil
}

// MeshPath is the prefab path of a mesh referenced by a scenario.
func MeshPath(name string) string {
	return Meshes.Path(name)
}

// LoadMesh reads meshes/<name> in whichever format its extension names.
func LoadMesh(name string) (*navmesh.NavigationMesh, error) {
	file := MeshPath(name)
	data, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load %s: %w", file, err)
	}
	return navmesh.Parse(file, data)
}

// BuildMesh loads the scenario's mesh and places it in the scene.
func (s ScenarioSpec) BuildMesh() (*navmesh.NavigationMesh, error) {
	m, err := LoadMesh(s.Mesh)
	if err != nil {
		return nil, err
	}
	if err := m.SetSceneTransform(s.Transform.Matrix()); err != nil {
		return nil, fmt.Errorf("prefabs: scenario %s: %w", s.Name, err)
	}
	return m, nil
}

// Color is a "#rrggbb" or "#rrggbbaa" colour in scenario files.
type Color struct {
	color.Color
}

func (c *Color) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(strings.TrimSpace(string(text)), "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("prefabs: invalid color format: %q", text)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
