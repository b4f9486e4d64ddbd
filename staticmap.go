package geoview

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"geoview/geo"
)

// StaticMap is the non-interactive map variant: a center, a zoom level and
// layers attached through the base Add. A layer visibility control is
// attached automatically at construction.
type StaticMap struct {
	Center geo.LngLat
	Zoom   int
	Width  int
	Height int

	layers   []Layer
	controls []Control
	extra    map[string]any
}

// StaticOption forwards extra configuration to the underlying widget.
type StaticOption func(*StaticMap)

// WithSize sets the render size in pixels.
func WithSize(width, height int) StaticOption {
	return func(s *StaticMap) {
		s.Width = width
		s.Height = height
	}
}

// WithStaticOption sets an arbitrary widget option by name.
func WithStaticOption(key string, value any) StaticOption {
	return func(s *StaticMap) { s.extra[key] = value }
}

// NewStaticMap creates a static map centered on center at the given zoom.
func NewStaticMap(center geo.LngLat, zoom int, opts ...StaticOption) *StaticMap {
	s := &StaticMap{
		Center: center,
		Zoom:   zoom,
		Width:  800,
		Height: 600,
		extra:  map[string]any{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.controls = append(s.controls, &LayersControl{Position: "topright"})
	return s
}

// Add attaches a layer.
func (s *StaticMap) Add(l Layer) { s.layers = append(s.layers, l) }

// Layers returns the attached layers in attachment order.
func (s *StaticMap) Layers() []Layer { return s.layers }

// Controls returns the attached controls.
func (s *StaticMap) Controls() []Control { return s.controls }

// RenderPNG draws the attached vector layers over a plain canvas and writes
// the result as PNG. Tile and overlay layers need a browser and are skipped.
func (s *StaticMap) RenderPNG(w io.Writer) error {
	dc := gg.NewContext(s.Width, s.Height)
	dc.SetRGB(0.91, 0.93, 0.94)
	dc.Clear()

	cx, cy := geo.Project(s.Center, s.Zoom)
	offsetX := cx - float64(s.Width)/2
	offsetY := cy - float64(s.Height)/2
	toPixel := func(p orb.Point) (float64, float64) {
		x, y := geo.Project(geo.LngLat{Lng: p[0], Lat: p[1]}, s.Zoom)
		return x - offsetX, y - offsetY
	}

	for _, layer := range s.layers {
		gl, ok := layer.(*GeoJSONLayer)
		if !ok {
			continue
		}
		fc, ok := gl.Data.(*geojson.FeatureCollection)
		if !ok {
			continue
		}
		stroke, fillOpacity := styleColor(gl.Style)
		for _, f := range fc.Features {
			drawGeometry(dc, f.Geometry, toPixel, stroke, fillOpacity)
		}
	}
	return dc.EncodePNG(w)
}

type rgb struct{ r, g, b float64 }

var namedColors = map[string]rgb{
	"yellow": {1, 1, 0},
	"red":    {1, 0, 0},
	"green":  {0, 0.5, 0},
	"blue":   {0, 0, 1},
	"black":  {0, 0, 0},
	"white":  {1, 1, 1},
}

// leaflet's default path color
var defaultStroke = rgb{r: 0x33 / 255.0, g: 0x88 / 255.0, b: 1}

func styleColor(style map[string]any) (rgb, float64) {
	stroke := defaultStroke
	fillOpacity := 0.2
	if style == nil {
		return stroke, fillOpacity
	}
	if v, ok := style["color"].(string); ok {
		if c, ok := namedColors[v]; ok {
			stroke = c
		} else if c, err := parseHexColor(v); err == nil {
			stroke = c
		}
	}
	if v, ok := style["fillOpacity"].(float64); ok {
		fillOpacity = v
	}
	return stroke, fillOpacity
}

func parseHexColor(s string) (rgb, error) {
	if len(s) != 7 || s[0] != '#' {
		return rgb{}, fmt.Errorf("bad color %q", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return rgb{}, err
	}
	return rgb{
		r: float64(v>>16&0xff) / 255,
		g: float64(v>>8&0xff) / 255,
		b: float64(v&0xff) / 255,
	}, nil
}

func drawGeometry(dc *gg.Context, g orb.Geometry, toPixel func(orb.Point) (float64, float64), stroke rgb, fillOpacity float64) {
	switch geom := g.(type) {
	case orb.Point:
		x, y := toPixel(geom)
		dc.SetRGB(stroke.r, stroke.g, stroke.b)
		dc.DrawCircle(x, y, 4)
		dc.Fill()
	case orb.MultiPoint:
		for _, p := range geom {
			drawGeometry(dc, p, toPixel, stroke, fillOpacity)
		}
	case orb.LineString:
		tracePath(dc, geom, toPixel, false)
		dc.SetRGB(stroke.r, stroke.g, stroke.b)
		dc.SetLineWidth(2)
		dc.Stroke()
	case orb.MultiLineString:
		for _, ls := range geom {
			drawGeometry(dc, ls, toPixel, stroke, fillOpacity)
		}
	case orb.Polygon:
		for _, ring := range geom {
			tracePath(dc, orb.LineString(ring), toPixel, true)
		}
		dc.SetRGBA(stroke.r, stroke.g, stroke.b, fillOpacity)
		dc.FillPreserve()
		dc.SetRGB(stroke.r, stroke.g, stroke.b)
		dc.SetLineWidth(2)
		dc.Stroke()
	case orb.MultiPolygon:
		for _, poly := range geom {
			drawGeometry(dc, poly, toPixel, stroke, fillOpacity)
		}
	case orb.Collection:
		for _, member := range geom {
			drawGeometry(dc, member, toPixel, stroke, fillOpacity)
		}
	}
}

func tracePath(dc *gg.Context, line orb.LineString, toPixel func(orb.Point) (float64, float64), closed bool) {
	for i, p := range line {
		x, y := toPixel(p)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	if closed {
		dc.ClosePath()
	}
}
