package main

import (
	"testing"

	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/pathfinder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func lPath() pathfinder.WayPointList {
	return pathfinder.WayPointList{
		{Point3D: common.Vec3(0, 0, 0)},
		{Point3D: common.Vec3(3, 0, 0)},
		{Point3D: common.Vec3(3, 4, 0)},
	}
}

func TestPointAlong(t *testing.T) {
	cases := []struct {
		name string
		d    float32
		want common.Vector3
	}{
		{"before_start", -1, common.Vec3(0, 0, 0)},
		{"first_leg", 1.5, common.Vec3(1.5, 0, 0)},
		{"corner", 3, common.Vec3(3, 0, 0)},
		{"second_leg", 5, common.Vec3(3, 2, 0)},
		{"past_end", 100, common.Vec3(3, 4, 0)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := pointAlong(lPath(), c.d)
			assert.InDelta(t, c.want.X, got.X, 1e-5)
			assert.InDelta(t, c.want.Y, got.Y, 1e-5)
		})
	}

	assert.Equal(t, common.Vector3{}, pointAlong(nil, 1))
}

func TestPreviewLifecycle(t *testing.T) {
	var p preview
	p.setFrom(common.Vec3(1, 1, 0))
	assert.True(t, p.hasFrom)

	p.setPath(lPath())
	assert.False(t, p.hasFrom)
	require.NotNil(t, p.tween)

	p.update(0.5)
	assert.Greater(t, p.marker.DistanceTo(common.Vec3(0, 0, 0)), float32(0))

	p.setPath(nil)
	assert.Nil(t, p.tween)

	p.clear()
	assert.Equal(t, preview{}, p)
}

func TestFormatPath(t *testing.T) {
	data, err := formatPath(lPath())
	require.NoError(t, err)

	var decoded struct {
		Waypoints [][3]float32 `yaml:"waypoints"`
	}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, [][3]float32{{0, 0, 0}, {3, 0, 0}, {3, 4, 0}}, decoded.Waypoints)
}
