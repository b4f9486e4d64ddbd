// Package geo holds the geographic primitives shared by the map wrapper
// and the tile server: WGS84 coordinates, bounding boxes and the web
// mercator tile math that relates them.
package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// TileSize 默认瓦片大小
const TileSize = 256

const threeSixty float64 = 360.0
const oneEighty float64 = 180.0
const webMercatorLatLimit float64 = 85.05112877980659

// MaxZoom is the deepest zoom level the viewport math will pick.
const MaxZoom = 18

// LngLat holds a standard geographic coordinate pair in decimal degrees.
type LngLat struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Point converts to an orb point (x=lng, y=lat).
func (ll LngLat) Point() orb.Point {
	return orb.Point{ll.Lng, ll.Lat}
}

func (ll LngLat) String() string {
	return fmt.Sprintf("(%f,%f)", ll.Lat, ll.Lng)
}

// Bounds is a geographic bounding box in decimal degrees.
type Bounds struct {
	West  float64 `json:"west"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
	South float64 `json:"south"`
}

// NewBounds builds a bounding box from its southwest and northeast corners.
func NewBounds(south, west, north, east float64) Bounds {
	return Bounds{West: west, East: east, North: north, South: south}
}

// FromOrbBound converts an orb bound (min/max points) to a Bounds.
func FromOrbBound(b orb.Bound) Bounds {
	return Bounds{West: b.Min[0], South: b.Min[1], East: b.Max[0], North: b.Max[1]}
}

// Intersects returns true if this bounding box intersects with the other bounding box.
func (b *Bounds) Intersects(o *Bounds) bool {
	latOverlaps := (o.North > b.South) && (o.South < b.North)
	lngOverlaps := (o.East > b.West) && (o.West < b.East)
	return latOverlaps && lngOverlaps
}

// Center returns the midpoint of the box.
func (b Bounds) Center() LngLat {
	return LngLat{Lng: (b.West + b.East) / 2, Lat: (b.South + b.North) / 2}
}

// Corners returns the box as [[south,west],[north,east]], the order leaflet
// overlay constructors expect.
func (b Bounds) Corners() [2][2]float64 {
	return [2][2]float64{{b.South, b.West}, {b.North, b.East}}
}

// Clamped limits the box to web mercator latitudes and the antimeridian.
func (b Bounds) Clamped() Bounds {
	return Bounds{
		West:  math.Max(-oneEighty, b.West),
		South: math.Max(-webMercatorLatLimit, b.South),
		East:  math.Min(oneEighty, b.East),
		North: math.Min(webMercatorLatLimit, b.North),
	}
}

func deg2rad(deg float64) float64 {
	return deg * (math.Pi / oneEighty)
}

func rad2deg(rad float64) float64 {
	return rad * (oneEighty / math.Pi)
}

// TileXyz addresses a single web mercator tile.
type TileXyz struct {
	X int
	Y int
	Z int
}

func (t TileXyz) String() string {
	return fmt.Sprintf("{%d/%d/%d}", t.Z, t.X, t.Y)
}

// FlipY converts the XYZ row to the TMS row order used by MBTiles.
func (t TileXyz) FlipY() int {
	return (1 << t.Z) - t.Y - 1
}

// TileAt returns the tile containing a coordinate at the given zoom.
func TileAt(ll LngLat, zoom int) TileXyz {
	latRad := deg2rad(math.Max(-webMercatorLatLimit, math.Min(webMercatorLatLimit, ll.Lat)))
	n := math.Pow(2.0, float64(zoom))
	x := int(math.Floor((ll.Lng + oneEighty) / threeSixty * n))
	y := int(math.Floor((1.0 - math.Log(math.Tan(latRad)+(1.0/math.Cos(latRad)))/math.Pi) / 2.0 * n))
	max := (1 << zoom) - 1
	if x < 0 {
		x = 0
	}
	if x > max {
		x = max
	}
	if y < 0 {
		y = 0
	}
	if y > max {
		y = max
	}
	return TileXyz{X: x, Y: y, Z: zoom}
}

// Ul returns the upper left corner of the tile in decimal degrees.
func (t TileXyz) Ul() LngLat {
	n := math.Pow(2.0, float64(t.Z))
	lngDeg := float64(t.X)/n*threeSixty - oneEighty
	latRad := math.Atan(math.Sinh(math.Pi * (1 - (2 * float64(t.Y) / n))))
	return LngLat{Lng: lngDeg, Lat: rad2deg(latRad)}
}

// Bounds returns the geographic extent of the tile.
func (t TileXyz) Bounds() Bounds {
	a := t.Ul()
	b := TileXyz{X: t.X + 1, Y: t.Y + 1, Z: t.Z}.Ul()
	return Bounds{West: a.Lng, South: b.Lat, East: b.Lng, North: a.Lat}
}

// splitBoxes cuts a box crossing the antimeridian (West > East) into two
// boxes that don't.
func splitBoxes(bounds Bounds) []Bounds {
	if bounds.West > bounds.East {
		return []Bounds{
			{West: -oneEighty, South: bounds.South, East: bounds.East, North: bounds.North},
			{West: bounds.West, South: bounds.South, East: oneEighty, North: bounds.North},
		}
	}
	return []Bounds{bounds}
}

// TilesInBounds streams every tile covering bounds at zoom into consumer.
func TilesInBounds(bounds Bounds, zoom int, consumer chan<- TileXyz) {
	for _, box := range splitBoxes(bounds) {
		clamped := box.Clamped()
		ll := TileAt(LngLat{Lng: clamped.West, Lat: clamped.South}, zoom)
		ur := TileAt(LngLat{Lng: clamped.East, Lat: clamped.North}, zoom)
		for x := ll.X; x <= ur.X; x++ {
			for y := ur.Y; y <= ll.Y; y++ {
				consumer <- TileXyz{X: x, Y: y, Z: zoom}
			}
		}
	}
	close(consumer)
}

// TileCount returns the number of tiles covering bounds at zoom.
func TileCount(bounds Bounds, zoom int) int {
	var count int
	for _, box := range splitBoxes(bounds) {
		clamped := box.Clamped()
		ll := TileAt(LngLat{Lng: clamped.West, Lat: clamped.South}, zoom)
		ur := TileAt(LngLat{Lng: clamped.East, Lat: clamped.North}, zoom)
		count += (ur.X - ll.X + 1) * (ll.Y - ur.Y + 1)
	}
	return count
}

// normalized web mercator y in [0,1], 0 at the north edge
func mercY(lat float64) float64 {
	latRad := deg2rad(math.Max(-webMercatorLatLimit, math.Min(webMercatorLatLimit, lat)))
	return (1.0 - math.Log(math.Tan(latRad)+(1.0/math.Cos(latRad)))/math.Pi) / 2.0
}

// Project returns the world pixel coordinates of a point at the given
// zoom, with the origin at the north-west corner of the tile pyramid.
func Project(ll LngLat, zoom int) (x, y float64) {
	worldSize := float64(TileSize) * math.Pow(2.0, float64(zoom))
	x = (ll.Lng + oneEighty) / threeSixty * worldSize
	y = mercY(ll.Lat) * worldSize
	return x, y
}

// BoundsZoom returns the highest zoom at which bounds fits in a viewport of
// width x height pixels, without padding.
func BoundsZoom(b Bounds, width, height float64) int {
	fx := (b.East - b.West) / threeSixty
	fy := mercY(b.South) - mercY(b.North)
	zoom := MaxZoom
	if fx > 0 || fy > 0 {
		zx := float64(MaxZoom)
		zy := float64(MaxZoom)
		if fx > 0 {
			zx = math.Log2(width / (TileSize * fx))
		}
		if fy > 0 {
			zy = math.Log2(height / (TileSize * fy))
		}
		zoom = int(math.Floor(math.Min(zx, zy)))
	}
	if zoom < 0 {
		zoom = 0
	}
	if zoom > MaxZoom {
		zoom = MaxZoom
	}
	return zoom
}
