package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileAt(t *testing.T) {
	assert.Equal(t, TileXyz{X: 0, Y: 0, Z: 0}, TileAt(LngLat{}, 0))
	assert.Equal(t, TileXyz{X: 1, Y: 1, Z: 1}, TileAt(LngLat{Lng: 0.1, Lat: -0.1}, 1))
	// Paris
	assert.Equal(t, TileXyz{X: 518, Y: 352, Z: 10}, TileAt(LngLat{Lng: 2.35, Lat: 48.85}, 10))
}

func TestFlipY(t *testing.T) {
	assert.Equal(t, 0, TileXyz{X: 0, Y: 0, Z: 0}.FlipY())
	assert.Equal(t, 1, TileXyz{X: 0, Y: 0, Z: 1}.FlipY())
	assert.Equal(t, 252, TileXyz{X: 0, Y: 3, Z: 8}.FlipY())
}

func TestTileBoundsRoundTrip(t *testing.T) {
	tile := TileAt(LngLat{Lng: 2.35, Lat: 48.85}, 10)
	b := tile.Bounds()
	assert.True(t, b.West <= 2.35 && 2.35 < b.East)
	assert.True(t, b.South <= 48.85 && 48.85 < b.North)
}

func TestBoundsCenterAndCorners(t *testing.T) {
	b := NewBounds(18, 72, 19, 73)
	c := b.Center()
	assert.InDelta(t, 72.5, c.Lng, 1e-9)
	assert.InDelta(t, 18.5, c.Lat, 1e-9)
	assert.Equal(t, [2][2]float64{{18, 72}, {19, 73}}, b.Corners())
}

func TestBoundsIntersects(t *testing.T) {
	a := NewBounds(0, 0, 10, 10)
	b := NewBounds(5, 5, 15, 15)
	c := NewBounds(11, 11, 12, 12)
	assert.True(t, a.Intersects(&b))
	assert.False(t, a.Intersects(&c))
}

func TestTileCount(t *testing.T) {
	world := NewBounds(-85, -180, 85, 180)
	assert.Equal(t, 1, TileCount(world, 0))
	assert.Equal(t, 4, TileCount(world, 1))

	small := NewBounds(18, 72, 19, 73)
	assert.Equal(t, 1, TileCount(small, 0))
}

func TestTileCountAcrossAntimeridian(t *testing.T) {
	// West > East: a box over the Pacific spanning the antimeridian
	crossing := NewBounds(-85, 170, 85, -170)
	assert.Equal(t, 4, TileCount(crossing, 1))

	// the count always matches what TilesInBounds streams
	for zoom := 0; zoom <= 3; zoom++ {
		ch := make(chan TileXyz)
		go TilesInBounds(crossing, zoom, ch)
		streamed := 0
		for range ch {
			streamed++
		}
		assert.Equal(t, streamed, TileCount(crossing, zoom), "zoom %d", zoom)
	}
}

func TestTilesInBounds(t *testing.T) {
	ch := make(chan TileXyz)
	go TilesInBounds(NewBounds(-85, -180, 85, 180), 1, ch)

	seen := map[TileXyz]bool{}
	for tile := range ch {
		seen[tile] = true
	}
	require.Len(t, seen, 4)
	assert.True(t, seen[TileXyz{X: 0, Y: 0, Z: 1}])
	assert.True(t, seen[TileXyz{X: 1, Y: 1, Z: 1}])
}

func TestBoundsZoom(t *testing.T) {
	world := NewBounds(-85.05112878, -180, 85.05112878, 180)
	assert.Equal(t, 2, BoundsZoom(world, 1024, 1024))

	// a one degree box fits much deeper
	small := NewBounds(18, 72, 19, 73)
	z := BoundsZoom(small, 1024, 600)
	assert.GreaterOrEqual(t, z, 8)
	assert.LessOrEqual(t, z, MaxZoom)
}

func TestProject(t *testing.T) {
	x, y := Project(LngLat{}, 0)
	assert.InDelta(t, 128, x, 1e-9)
	assert.InDelta(t, 128, y, 1e-9)

	x, y = Project(LngLat{Lng: 180, Lat: -85.05112878}, 0)
	assert.InDelta(t, 256, x, 1e-9)
	assert.InDelta(t, 256, y, 1e-6)
}
