package system

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/milk9111/navpath/ecs"
	"github.com/milk9111/navpath/ecs/component"
	"github.com/milk9111/navpath/navmesh"
	"github.com/milk9111/navpath/pathfinder"
	"github.com/milk9111/navpath/prefabs"
)

// MeshLoader loads the mesh named by a prefab path such as
// "meshes/arena.yaml".
type MeshLoader func(name string) (*navmesh.NavigationMesh, error)

// MeshReloadSystem applies file change notifications: a changed mesh file
// rebuilds the path finder's graph and makes every agent with a target
// replan, a changed script is announced with EventScriptChanged.
type MeshReloadSystem struct {
	finder   *pathfinder.PathFinder
	meshPath string
	changes  <-chan string
	load     MeshLoader
}

// NewMeshReloadSystem reads changed paths from changes without blocking. A
// nil load uses prefabs.LoadMesh.
func NewMeshReloadSystem(finder *pathfinder.PathFinder, meshPath string, changes <-chan string, load MeshLoader) *MeshReloadSystem {
	if load == nil {
		load = prefabs.LoadMesh
	}
	return &MeshReloadSystem{
		finder:   finder,
		meshPath: prefabs.MeshPath(meshPath),
		changes:  changes,
		load:     load,
	}
}

func (ms *MeshReloadSystem) Update(w *ecs.World) {
	if ms == nil || ms.changes == nil || w == nil {
		return
	}

	for {
		select {
		case changed, ok := <-ms.changes:
			if !ok {
				ms.changes = nil
				return
			}
			ms.apply(w, changed)
		default:
			return
		}
	}
}

func (ms *MeshReloadSystem) apply(w *ecs.World, changed string) {
	clean := filepath.ToSlash(changed)
	switch {
	case prefabs.IsScriptFile(clean):
		w.Events().Push(ecs.Event{Kind: ecs.EventScriptChanged, Data: clean})
	case strings.HasSuffix(clean, ms.meshPath):
		ms.reload(w)
	default:
		log.Printf("mesh reload: ignoring change to %s", clean)
	}
}

func (ms *MeshReloadSystem) reload(w *ecs.World) {
	mesh, err := ms.load(ms.meshPath)
	if err != nil {
		log.Printf("mesh reload: load %s: %v", ms.meshPath, err)
		return
	}
	// The file only describes the mesh; the placement comes from the scenario.
	if err := mesh.SetSceneTransform(ms.finder.Mesh().SceneTransform()); err != nil {
		log.Printf("mesh reload: %s: %v", ms.meshPath, err)
		return
	}
	ms.finder.Rebuild(mesh)
	log.Printf("mesh reload: %s faces=%d", ms.meshPath, mesh.FaceCount())

	w.Events().Push(ecs.Event{Kind: ecs.EventMeshReloaded, Data: ms.meshPath})
	ecs.ForEach(w, component.NavAgentComponent.Kind(), func(e ecs.Entity, agent *component.NavAgent) {
		if agent.HasTarget {
			agent.NeedsPath = true
		}
	})
}
