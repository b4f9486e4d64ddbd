// Package geoview wraps web-map assembly behind two small map types: an
// interactive Map with layer helpers and a StaticMap that renders offline.
package geoview

import (
	"errors"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"geoview/geo"
)

// ErrUnknownMapType is returned when a google map type token is not one of
// ROADMAP, SATELLITE, HYBRID or TERRAIN.
var ErrUnknownMapType = errors.New("unknown map type")

// Defaults applied by NewMap.
const (
	DefaultZoom   = 2
	DefaultHeight = "600px"
)

// DefaultCenter 默认中心点
var DefaultCenter = geo.LngLat{Lng: 72, Lat: 19}

// viewport width assumed by bound fitting; leaflet sizes the div itself
const viewportWidth = 1024.0

// Map is an interactive web map: a center, a zoom level, a display height
// and an ordered list of layers and controls. Every Add* helper constructs
// one layer or control and appends it; none of them return the layer.
type Map struct {
	Center          geo.LngLat
	Zoom            int
	Height          string
	ScrollWheelZoom bool
	Bounds          *geo.Bounds

	layers   []Layer
	controls []Control
	extra    map[string]any
}

// Option forwards extra configuration to the underlying widget.
type Option func(*Map)

// WithOption sets an arbitrary widget option by name.
func WithOption(key string, value any) Option {
	return func(m *Map) { m.extra[key] = value }
}

// NewMap creates a map centered on center at the given zoom, with the given
// pixel height (e.g. "600px"). Scroll wheel zoom is always enabled.
func NewMap(center geo.LngLat, zoom int, height string, opts ...Option) *Map {
	if height == "" {
		height = DefaultHeight
	}
	m := &Map{
		Center:          center,
		Zoom:            zoom,
		Height:          height,
		ScrollWheelZoom: true,
		extra:           map[string]any{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Layers returns the attached layers in attachment order.
func (m *Map) Layers() []Layer { return m.layers }

// Controls returns the attached controls in attachment order.
func (m *Map) Controls() []Control { return m.controls }

func (m *Map) addLayer(l Layer) { m.layers = append(m.layers, l) }

func (m *Map) addControl(c Control) { m.controls = append(m.controls, c) }

// AddBasemap attaches a named basemap tile layer. An unknown name falls
// back to DefaultBasemap; the layer keeps the requested name either way.
func (m *Map) AddBasemap(name string) {
	bm, ok := basemaps[name]
	if !ok {
		log.Warnf("basemap %q not found, using %s", name, DefaultBasemap)
		bm = basemaps[DefaultBasemap]
	}
	m.addLayer(&TileLayer{
		URL:         bm.URL,
		Name:        name,
		Attribution: bm.Attribution,
		Opacity:     1,
		MaxZoom:     bm.MaxZoom,
	})
}

// AddGoogleMap attaches a google tile layer. mapType is one of ROADMAP,
// SATELLITE, HYBRID or TERRAIN, case-insensitive.
func (m *Map) AddGoogleMap(mapType string) error {
	url, err := googleMapURL(mapType)
	if err != nil {
		return err
	}
	m.addLayer(&TileLayer{URL: url, Name: "Google Map", Opacity: 1})
	return nil
}

// AddLayerControl attaches a layer visibility control.
func (m *Map) AddLayerControl() {
	m.addControl(&LayersControl{Position: "topright"})
}

// FitBounds moves the viewport to cover b exactly, with no padding.
func (m *Map) FitBounds(b geo.Bounds) {
	m.Bounds = &b
	m.Center = b.Center()
	m.Zoom = geo.BoundsZoom(b, viewportWidth, m.heightPixels())
}

func (m *Map) heightPixels() float64 {
	h := strings.TrimSuffix(m.Height, "px")
	if px, err := strconv.ParseFloat(h, 64); err == nil && px > 0 {
		return px
	}
	return 600
}
