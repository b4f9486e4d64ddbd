package geoview

import (
	"fmt"

	"geoview/geo"
	"geoview/tileserver"
)

// OverlayOptions tunes AddImage and AddVideo.
type OverlayOptions struct {
	Name     string
	Opacity  float64
	Autoplay bool
	Loop     bool
}

// DefaultOverlayOptions returns the defaults: opacity 1, autoplay and loop
// for videos.
func DefaultOverlayOptions() *OverlayOptions {
	return &OverlayOptions{Opacity: 1, Autoplay: true, Loop: true}
}

// AddImage attaches a static image overlay anchored to bounds.
func (m *Map) AddImage(url string, bounds geo.Bounds, opts *OverlayOptions) {
	if opts == nil {
		opts = DefaultOverlayOptions()
	}
	name := opts.Name
	if name == "" {
		name = "Image"
	}
	m.addLayer(&ImageOverlay{
		URL:     url,
		Name:    name,
		Bounds:  bounds,
		Opacity: opts.Opacity,
	})
}

// AddVideo attaches a video overlay anchored to bounds.
func (m *Map) AddVideo(url string, bounds geo.Bounds, opts *OverlayOptions) {
	if opts == nil {
		opts = DefaultOverlayOptions()
	}
	name := opts.Name
	if name == "" {
		name = "Video"
	}
	m.addLayer(&VideoOverlay{
		URL:      url,
		Name:     name,
		Bounds:   bounds,
		Opacity:  opts.Opacity,
		Autoplay: opts.Autoplay,
		Loop:     opts.Loop,
	})
}

// WMSOptions tunes AddWMSLayer.
type WMSOptions struct {
	Name        string
	Format      string
	Transparent bool
	Version     string
}

// DefaultWMSOptions returns the defaults: format image/png, transparent,
// WMS 1.1.1.
func DefaultWMSOptions() *WMSOptions {
	return &WMSOptions{Format: "image/png", Transparent: true, Version: "1.1.1"}
}

// AddWMSLayer attaches a WMS layer requesting the comma-separated layers
// from the service at url. Options are passed through verbatim.
func (m *Map) AddWMSLayer(url, layers string, opts *WMSOptions) {
	if opts == nil {
		opts = DefaultWMSOptions()
	}
	name := opts.Name
	if name == "" {
		name = layers
	}
	format := opts.Format
	if format == "" {
		format = "image/png"
	}
	version := opts.Version
	if version == "" {
		version = "1.1.1"
	}
	m.addLayer(&WMSLayer{
		URL:         url,
		Layers:      layers,
		Name:        name,
		Format:      format,
		Transparent: opts.Transparent,
		Version:     version,
	})
}

// RasterOptions tunes AddRaster.
type RasterOptions struct {
	Name     string
	Colormap string
	Opacity  float64
}

// AddRaster serves a raster source (an .mbtiles path, or a mysql:// DSN for
// a tiles table) through a local tile server and attaches the resulting
// tile layer. The map is recentered on the raster's native center and reset
// to its default zoom, as reported by the server's metadata.
func (m *Map) AddRaster(source string, opts *RasterOptions) error {
	if opts == nil {
		opts = &RasterOptions{Opacity: 1}
	}
	client, err := tileserver.NewClient(source)
	if err != nil {
		return fmt.Errorf("tile server for %s: %w", source, err)
	}
	if err := client.Serve(); err != nil {
		return fmt.Errorf("tile server for %s: %w", source, err)
	}
	name := opts.Name
	if name == "" {
		name = client.Name()
	}
	opacity := opts.Opacity
	if opacity == 0 {
		opacity = 1
	}
	m.addLayer(&TileLayer{
		URL:     client.TileURL(opts.Colormap),
		Name:    name,
		Opacity: opacity,
		MaxZoom: client.MaxZoom(),
	})
	m.Center = client.Center()
	m.Zoom = client.DefaultZoom()
	return nil
}
