package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/ecs/system"
	"github.com/milk9111/navpath/pathfinder"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// previewSpeed is how fast, in scene units per second, the marker travels the
// preview path.
const previewSpeed float32 = 4

// preview is the viewer's ad hoc query: two right clicks give a path that a
// marker then walks back and forth.
type preview struct {
	from    common.Vector3
	hasFrom bool

	path   pathfinder.WayPointList
	tween  *gween.Sequence
	marker common.Vector3
}

func (p *preview) setFrom(from common.Vector3) {
	p.clear()
	p.from = from
	p.hasFrom = true
}

func (p *preview) setPath(path pathfinder.WayPointList) {
	p.hasFrom = false
	p.path = path
	p.tween = nil
	if len(path) < 2 {
		return
	}
	length := path.Length()
	duration := max(length/previewSpeed, 0.5)
	p.tween = gween.NewSequence(gween.New(0, length, duration, ease.InOutQuad))
	p.tween.SetYoyo(true)
	p.tween.SetLoop(-1)
	p.marker = path[0].Point3D
}

func (p *preview) clear() {
	*p = preview{}
}

func (p *preview) update(dt float32) {
	if p.tween == nil {
		return
	}
	d, _, _ := p.tween.Update(dt)
	p.marker = pointAlong(p.path, d)
}

func (p *preview) draw(screen *ebiten.Image, view system.View) {
	if p.hasFrom {
		x, y := view.ToScreen(p.from)
		vector.StrokeCircle(screen, x, y, 6, 2, colornames.Orange, true)
	}
	if p.tween != nil {
		x, y := view.ToScreen(p.marker)
		vector.FillCircle(screen, x, y, 5, colornames.White, true)
	}
}

// pointAlong returns the point d scene units along path, clamped to its
// ends.
func pointAlong(path pathfinder.WayPointList, d float32) common.Vector3 {
	if len(path) == 0 {
		return common.Vector3{}
	}
	if d <= 0 {
		return path[0].Point3D
	}
	for i := 1; i < len(path); i++ {
		a, b := path[i-1].Point3D, path[i].Point3D
		seg := a.DistanceTo(b)
		if d <= seg {
			if seg == 0 {
				return b
			}
			return a.Lerp(b, d/seg)
		}
		d -= seg
	}
	return path[len(path)-1].Point3D
}

// formatPath renders waypoints as a yaml list of [x, y, z].
func formatPath(path pathfinder.WayPointList) ([]byte, error) {
	points := make([][3]float32, 0, len(path))
	for _, p := range path.Points() {
		points = append(points, p.Array())
	}
	return yaml.Marshal(map[string]any{"waypoints": points})
}
