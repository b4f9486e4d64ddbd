package geoview

import (
	"geoview/geo"
)

// Layer is anything that can be attached to a map's layer list.
type Layer interface {
	LayerName() string
}

// Control is a UI affordance attached to a map alongside its layers.
type Control interface {
	ControlName() string
}

// TileLayer is a raster layer of fixed-size image tiles addressed by z/x/y.
// URL is a template with {x}, {y} and {z} placeholders.
type TileLayer struct {
	URL         string  `json:"url"`
	Name        string  `json:"name"`
	Attribution string  `json:"attribution,omitempty"`
	Opacity     float64 `json:"opacity"`
	MaxZoom     int     `json:"maxZoom,omitempty"`
}

func (l *TileLayer) LayerName() string { return l.Name }

// GeoJSONLayer is a vector layer. Data is either an
// *geojson.FeatureCollection (file/URL sources, already reprojected to
// WGS84) or the caller's in-memory geometry interchange structure, kept
// untouched.
type GeoJSONLayer struct {
	Name       string         `json:"name"`
	Data       any            `json:"data"`
	Style      map[string]any `json:"style,omitempty"`
	HoverStyle map[string]any `json:"hoverStyle,omitempty"`
}

func (l *GeoJSONLayer) LayerName() string { return l.Name }

// ImageOverlay anchors a static image to a geographic bounding box.
type ImageOverlay struct {
	URL     string     `json:"url"`
	Name    string     `json:"name"`
	Bounds  geo.Bounds `json:"bounds"`
	Opacity float64    `json:"opacity"`
}

func (l *ImageOverlay) LayerName() string { return l.Name }

// VideoOverlay anchors a video to a geographic bounding box.
type VideoOverlay struct {
	URL      string     `json:"url"`
	Name     string     `json:"name"`
	Bounds   geo.Bounds `json:"bounds"`
	Opacity  float64    `json:"opacity"`
	Autoplay bool       `json:"autoplay"`
	Loop     bool       `json:"loop"`
}

func (l *VideoOverlay) LayerName() string { return l.Name }

// WMSLayer requests georeferenced imagery from an OGC Web Map Service.
// All fields are passed through to the service verbatim.
type WMSLayer struct {
	URL         string `json:"url"`
	Layers      string `json:"layers"`
	Name        string `json:"name"`
	Format      string `json:"format"`
	Transparent bool   `json:"transparent"`
	Version     string `json:"version"`
}

func (l *WMSLayer) LayerName() string { return l.Name }

// LayersControl toggles layer visibility.
type LayersControl struct {
	Position string `json:"position"`
}

func (c *LayersControl) ControlName() string { return "layers" }
