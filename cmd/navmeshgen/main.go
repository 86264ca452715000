package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/milk9111/navpath/navmesh"
)

func main() {
	in := flag.String("in", "", "yaml or toml mesh definition to convert")
	out := flag.String("out", "", "binary mesh to write")
	grid := flag.String("grid", "", "generate a cols,rows grid instead of reading -in")
	cell := flag.Float64("cell", 1, "grid cell size")
	blocked := flag.String("blocked", "", "grid cells to leave out, as x:y pairs separated by ';'")
	flag.Parse()

	if *out == "" {
		log.Fatal("navmeshgen: -out is required")
	}

	mesh, err := build(*in, *grid, float32(*cell), *blocked)
	if err != nil {
		log.Fatalf("navmeshgen: %v", err)
	}
	if err := write(*out, mesh); err != nil {
		log.Fatalf("navmeshgen: %v", err)
	}
	log.Printf("navmeshgen: wrote %s vertices=%d edges=%d faces=%d", *out, mesh.VertexCount(), mesh.EdgeCount(), mesh.FaceCount())
}

func build(in, grid string, cell float32, blocked string) (*navmesh.NavigationMesh, error) {
	switch {
	case grid != "":
		spec, err := parseGrid(grid, cell, blocked)
		if err != nil {
			return nil, err
		}
		return navmesh.NewGrid(spec)
	case in != "":
		return navmesh.LoadFile(in)
	default:
		return nil, errors.New("one of -in or -grid is required")
	}
}

// write saves mesh and reads it back, so a mesh the binary format cannot
// hold is reported here and not by the viewer.
func write(path string, mesh *navmesh.NavigationMesh) error {
	if err := navmesh.SaveFile(path, mesh); err != nil {
		return err
	}
	back, err := navmesh.LoadFile(path)
	if err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}
	if back.FaceCount() != mesh.FaceCount() || back.EdgeCount() != mesh.EdgeCount() || back.VertexCount() != mesh.VertexCount() {
		return fmt.Errorf("verify %s: read back %d faces, wrote %d", path, back.FaceCount(), mesh.FaceCount())
	}
	return nil
}

func parseGrid(grid string, cell float32, blocked string) (navmesh.GridSpec, error) {
	cols, rows, err := parsePair(grid, ",")
	if err != nil {
		return navmesh.GridSpec{}, fmt.Errorf("grid %q: %w", grid, err)
	}
	if cols <= 0 || rows <= 0 {
		return navmesh.GridSpec{}, fmt.Errorf("grid %q: dimensions must be positive", grid)
	}

	spec := navmesh.GridSpec{Cols: cols, Rows: rows, CellSize: cell}
	for _, b := range strings.Split(blocked, ";") {
		if strings.TrimSpace(b) == "" {
			continue
		}
		x, y, err := parsePair(b, ":")
		if err != nil {
			return navmesh.GridSpec{}, fmt.Errorf("blocked %q: %w", b, err)
		}
		spec.Blocked = append(spec.Blocked, [2]int{x, y})
	}
	return spec, nil
}

func parsePair(s, sep string) (int, int, error) {
	a, b, ok := strings.Cut(s, sep)
	if !ok {
		return 0, 0, fmt.Errorf("want two values separated by %q", sep)
	}
	x, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
