package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	scenario := flag.String("scenario", "demo", "scenario name in prefabs/scenarios (.yaml or .toml optional)")
	algo := flag.String("algo", "", "override the scenario's search algorithm (spfa-double-way, spfa, dijkstra)")
	watch := flag.Bool("watch", false, "reload meshes and scripts from prefabs/ when they change on disk")
	debug := flag.Bool("debug", false, "draw physics bodies")
	seed := flag.Uint64("seed", 1, "seed for scripted random targets")
	flag.Parse()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("navpath")

	game, err := NewGame(GameOptions{
		Scenario:  *scenario,
		Algorithm: *algo,
		Watch:     *watch,
		Debug:     *debug,
		Seed:      *seed,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
