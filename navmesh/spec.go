package navmesh

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/milk9111/navpath/common"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// MeshSpec is the text form of a navigation mesh. Either Triangles or Grid
// must be set; a Grid takes precedence.
type MeshSpec struct {
	Name      string           `yaml:"name" toml:"name"`
	Gravity   [3]float32       `yaml:"gravity" toml:"gravity"`
	Vertices  [][3]float32     `yaml:"vertices" toml:"vertices"`
	Triangles [][3]VertexIndex `yaml:"triangles" toml:"triangles"`
	Grid      *GridSpec        `yaml:"grid" toml:"grid"`
}

// Build turns the spec into a mesh.
func (s MeshSpec) Build() (*NavigationMesh, error) {
	if s.Grid != nil {
		return NewGrid(*s.Grid)
	}
	vertices := make([]common.Vector3, len(s.Vertices))
	for i, v := range s.Vertices {
		vertices[i] = common.Vec3FromArray(v)
	}
	return FromTriangles(vertices, s.Triangles, common.Vec3FromArray(s.Gravity))
}

// ParseSpec decodes a MeshSpec; format is "toml" or anything else for yaml.
func ParseSpec(data []byte, format string) (MeshSpec, error) {
	var spec MeshSpec
	var err error
	if format == "toml" {
		err = toml.Unmarshal(data, &spec)
	} else {
		err = yaml.Unmarshal(data, &spec)
	}
	if err != nil {
		return MeshSpec{}, fmt.Errorf("navmesh: unmarshal spec: %w", err)
	}
	return spec, nil
}

// LoadFile reads a mesh from path. Files ending in .yaml, .yml or .toml are
// parsed as a MeshSpec, anything else as the binary format.
func LoadFile(path string) (*NavigationMesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("navmesh: read %s: %w", path, err)
	}
	return Parse(path, data)
}

func isSpecPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".toml":
		return true
	}
	return false
}

func specFormat(path string) string {
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		return "toml"
	}
	return "yaml"
}

// Parse builds a mesh from file contents already in memory, picking the
// format from name's extension the way LoadFile does.
func Parse(name string, data []byte) (*NavigationMesh, error) {
	if !isSpecPath(name) {
		m, err := Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("navmesh: decode %s: %w", name, err)
		}
		return m, nil
	}
	spec, err := ParseSpec(data, specFormat(name))
	if err != nil {
		return nil, fmt.Errorf("navmesh: %s: %w", name, err)
	}
	m, err := spec.Build()
	if err != nil {
		return nil, fmt.Errorf("navmesh: build %s: %w", name, err)
	}
	return m, nil
}
