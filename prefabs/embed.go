package prefabs

import (
	"embed"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed scenarios meshes scripts/*.tengo
var FS embed.FS

// Dir is one of the prefab directories.
type Dir string

const (
	Scenarios Dir = "scenarios"
	Meshes    Dir = "meshes"
	Scripts   Dir = "scripts"
)

// Path returns name relative to prefabs/ inside d. Names may carry a
// leading "prefabs/" or "<d>/"; both are accepted.
func (d Dir) Path(name string) string {
	if name == "" {
		return ""
	}
	s := strings.TrimPrefix(filepath.ToSlash(name), "prefabs/")
	s = strings.TrimPrefix(s, string(d)+"/")
	return path.Join(string(d), s)
}

// Load reads a prefab file relative to prefabs/. The disk copy wins so edits
// are picked up without a rebuild; the embedded copy keeps binaries working
// outside the repository.
func Load(name string) ([]byte, error) {
	clean := strings.TrimPrefix(filepath.ToSlash(name), "prefabs/")
	if data, err := os.ReadFile(DiskPath(clean)); err == nil {
		return data, nil
	}
	return FS.ReadFile(clean)
}

// LoadScript reads scripts/<name>.
func LoadScript(name string) ([]byte, error) {
	return Load(Scripts.Path(name))
}

// DiskPath is where a prefab lives when running from the repository root;
// the viewer watches these locations.
func DiskPath(name string) string {
	return filepath.Join("prefabs", filepath.FromSlash(name))
}
