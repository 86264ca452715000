package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

func main() {
	scenario := flag.String("scenario", "", "scenario name in prefabs/scenarios; supplies the mesh, transform and search settings")
	meshPath := flag.String("mesh", "", "mesh file (.yaml, .toml or binary .navmesh); overrides -scenario")
	from := flag.String("from", "", "start position x,y,z in scene space")
	to := flag.String("to", "", "end position x,y,z in scene space")
	faces := flag.String("faces", "", "source,target face indices; used instead of -from/-to")
	algo := flag.String("algo", "", "algorithm: spfa-double-way, spfa, dijkstra or all")
	maxIter := flag.Int("max-iter", -1, "iteration cap per query, 0 for none; -1 keeps the scenario's")
	raw := flag.Bool("raw", false, "print every portal crossing instead of the optimized path")
	format := flag.String("format", "text", "output format: text or yaml")
	flag.Parse()

	q := query{
		Scenario:      *scenario,
		MeshPath:      *meshPath,
		Algorithm:     *algo,
		MaxIterations: *maxIter,
		Raw:           *raw,
	}

	var err error
	if *faces != "" {
		q.Faces, err = parseFaces(*faces)
	} else {
		if q.From, err = parseVector(*from); err == nil {
			q.To, err = parseVector(*to)
		}
	}
	if err != nil {
		log.Fatalf("navpath: %v", err)
	}

	reports, err := q.run()
	if err != nil {
		log.Fatalf("navpath: %v", err)
	}

	switch strings.ToLower(*format) {
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			log.Fatalf("navpath: %v", err)
		}
		_ = enc.Close()
	default:
		printReports(termenv.NewOutput(os.Stdout), reports)
	}
}

func printReports(out *termenv.Output, reports []report) {
	for _, r := range reports {
		name := out.String(fmt.Sprintf("%-16s", r.Algorithm)).Bold()
		switch {
		case r.Error != "":
			fmt.Fprintf(out, "%s %s %s\n", name, out.String("error").Foreground(out.Color("1")), r.Error)
			continue
		case !r.Found:
			fmt.Fprintf(out, "%s %s faces=%d iterations=%d %s\n", name, out.String("no path").Foreground(out.Color("3")), r.FaceCount, r.Iterations, r.Elapsed)
			continue
		}
		fmt.Fprintf(out, "%s %s waypoints=%d length=%.3f faces=%d iterations=%d relaxations=%d %s\n",
			name, out.String("found").Foreground(out.Color("2")),
			len(r.Waypoints), r.Length, r.FaceCount, r.Iterations, r.Relaxations, r.Elapsed)
		for i, wp := range r.Waypoints {
			fmt.Fprintf(out, "  %s (%.3f, %.3f, %.3f) face %d\n",
				out.String(fmt.Sprintf("%3d", i)).Faint(), wp.Point[0], wp.Point[1], wp.Point[2], wp.Face)
		}
	}
}
