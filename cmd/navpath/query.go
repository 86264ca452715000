package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/navmesh"
	"github.com/milk9111/navpath/pathfinder"
	"github.com/milk9111/navpath/prefabs"
)

var errNoMesh = errors.New("one of -mesh or -scenario is required")

// query is one command line invocation. Faces, when set, takes precedence
// over From and To.
type query struct {
	Scenario      string
	MeshPath      string
	Algorithm     string
	MaxIterations int
	Raw           bool

	From, To common.Vector3
	Faces    *[2]navmesh.FaceIndex
}

type report struct {
	Algorithm   string     `yaml:"algorithm"`
	Found       bool       `yaml:"found"`
	Length      float32    `yaml:"length"`
	FaceCount   int        `yaml:"faces"`
	Iterations  int        `yaml:"iterations"`
	Relaxations int        `yaml:"relaxations"`
	Elapsed     string     `yaml:"elapsed"`
	Error       string     `yaml:"error,omitempty"`
	Waypoints   []waypoint `yaml:"waypoints,omitempty"`
}

type waypoint struct {
	Point [3]float32        `yaml:"point,flow"`
	Face  navmesh.FaceIndex `yaml:"face"`
}

func (q query) run() ([]report, error) {
	mesh, opts, err := q.load()
	if err != nil {
		return nil, err
	}

	algorithms, err := q.algorithms(opts.Algorithm)
	if err != nil {
		return nil, err
	}

	reports := make([]report, 0, len(algorithms))
	for _, a := range algorithms {
		opts.Algorithm = a
		pf, err := pathfinder.New(mesh, opts)
		if err != nil {
			return nil, err
		}
		reports = append(reports, q.runOne(pf))
	}
	return reports, nil
}

func (q query) load() (*navmesh.NavigationMesh, pathfinder.Options, error) {
	opts := pathfinder.Options{Raw: q.Raw}

	var mesh *navmesh.NavigationMesh
	switch {
	case q.MeshPath != "":
		data, err := os.ReadFile(q.MeshPath)
		if err != nil {
			return nil, opts, err
		}
		if mesh, err = navmesh.Parse(q.MeshPath, data); err != nil {
			return nil, opts, err
		}
	case q.Scenario != "":
		spec, err := prefabs.LoadScenario(q.Scenario)
		if err != nil {
			return nil, opts, err
		}
		if mesh, err = spec.BuildMesh(); err != nil {
			return nil, opts, err
		}
		opts.Algorithm = spec.Algorithm
		opts.MaxIterations = spec.MaxIterations
	default:
		return nil, opts, errNoMesh
	}

	if q.MaxIterations >= 0 {
		opts.MaxIterations = q.MaxIterations
	}
	return mesh, opts, nil
}

func (q query) algorithms(fallback pathfinder.Algorithm) ([]pathfinder.Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(q.Algorithm)) {
	case "":
		return []pathfinder.Algorithm{fallback}, nil
	case "all":
		return pathfinder.Algorithms(), nil
	}
	a, err := pathfinder.ParseAlgorithm(q.Algorithm)
	if err != nil {
		return nil, err
	}
	return []pathfinder.Algorithm{a}, nil
}

func (q query) runOne(pf *pathfinder.PathFinder) report {
	r := report{Algorithm: pf.Algorithm().String()}

	source, target, ok := q.endpoints(pf)
	start := time.Now()
	var (
		path pathfinder.WayPointList
		err  error
	)
	switch {
	case !ok:
		// Off-mesh positions are not an error, just no path.
	case q.Faces != nil:
		path, err = pf.FindPathFaces(source, target)
	default:
		path, err = pf.FindPath(q.From, q.To)
	}
	r.Elapsed = time.Since(start).String()
	if err != nil {
		r.Error = err.Error()
		return r
	}

	if ok {
		if res, err := pf.Search(source, target); err == nil {
			r.FaceCount = len(res.Faces)
			r.Iterations = res.Iterations
			r.Relaxations = res.Relaxations
		}
	}

	r.Found = len(path) > 0
	r.Length = path.Length()
	for _, wp := range path {
		r.Waypoints = append(r.Waypoints, waypoint{Point: wp.Point3D.Array(), Face: wp.Face})
	}
	return r
}

// endpoints resolves the query to a pair of faces for the search counters.
func (q query) endpoints(pf *pathfinder.PathFinder) (navmesh.FaceIndex, navmesh.FaceIndex, bool) {
	if q.Faces != nil {
		return q.Faces[0], q.Faces[1], true
	}
	_, source, ok := pf.Mesh().FindFloor(q.From)
	if !ok {
		return navmesh.NullFace, navmesh.NullFace, false
	}
	_, target, ok := pf.Mesh().FindFloor(q.To)
	if !ok {
		return navmesh.NullFace, navmesh.NullFace, false
	}
	return source, target, true
}

func parseVector(s string) (common.Vector3, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return common.Vector3{}, fmt.Errorf("vector %q: want x,y[,z]", s)
	}
	var v [3]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return common.Vector3{}, fmt.Errorf("vector %q: %w", s, err)
		}
		v[i] = float32(f)
	}
	return common.Vec3FromArray(v), nil
}

func parseFaces(s string) (*[2]navmesh.FaceIndex, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("faces %q: want source,target", s)
	}
	var out [2]navmesh.FaceIndex
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("faces %q: %w", s, err)
		}
		out[i] = navmesh.FaceIndex(n)
	}
	return &out, nil
}
