package geoview

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
)

var pageTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body { margin: 0; } #map { height: {{.Height}}; }</style>
</head>
<body>
<div id="map"></div>
<script>
{{- range .Statements}}
{{.}}
{{- end}}
</script>
</body>
</html>
`))

type pageData struct {
	Title      string
	Height     template.CSS
	Statements []template.JS
}

// Render writes the map as a self-contained leaflet HTML page.
func (m *Map) Render(w io.Writer) error {
	mapOpts := map[string]any{"scrollWheelZoom": m.ScrollWheelZoom}
	for k, v := range m.extra {
		mapOpts[k] = v
	}
	optsJSON, err := json.Marshal(mapOpts)
	if err != nil {
		return err
	}
	statements := []template.JS{
		jsf("var map = L.map('map', %s).setView([%g, %g], %d);",
			optsJSON, m.Center.Lat, m.Center.Lng, m.Zoom),
	}
	for i, l := range m.layers {
		js, err := layerJS(i, l)
		if err != nil {
			return fmt.Errorf("render layer %q: %w", l.LayerName(), err)
		}
		statements = append(statements, js)
	}
	for range m.controls {
		statements = append(statements, "L.control.layers().addTo(map);")
	}
	if m.Bounds != nil {
		corners, err := json.Marshal(m.Bounds.Corners())
		if err != nil {
			return err
		}
		statements = append(statements, template.JS("map.fitBounds("+string(corners)+");"))
	}
	return pageTemplate.Execute(w, pageData{
		Title:      "geoview",
		Height:     template.CSS(m.Height),
		Statements: statements,
	})
}

// layerJS emits the leaflet constructor call for one layer.
func layerJS(i int, layer Layer) (template.JS, error) {
	name := fmt.Sprintf("lyr_%d", i)
	switch l := layer.(type) {
	case *TileLayer:
		opts, err := json.Marshal(map[string]any{
			"opacity":     l.Opacity,
			"attribution": l.Attribution,
			"maxZoom":     l.MaxZoom,
		})
		if err != nil {
			return "", err
		}
		return jsf("var %s = L.tileLayer(%q, %s).addTo(map);", name, l.URL, opts), nil
	case *GeoJSONLayer:
		data, err := json.Marshal(l.Data)
		if err != nil {
			return "", err
		}
		style, err := json.Marshal(l.Style)
		if err != nil {
			return "", err
		}
		hover, err := json.Marshal(l.HoverStyle)
		if err != nil {
			return "", err
		}
		js := fmt.Sprintf("var %s = L.geoJSON(%s, {style: %s});\n", name, data, style)
		js += fmt.Sprintf("%s.on('mouseover', function(e){ e.layer.setStyle(%s); });\n", name, hover)
		js += fmt.Sprintf("%s.on('mouseout', function(e){ %s.resetStyle(e.layer); });\n", name, name)
		js += fmt.Sprintf("%s.addTo(map);", name)
		return template.JS(js), nil
	case *ImageOverlay:
		corners, err := json.Marshal(l.Bounds.Corners())
		if err != nil {
			return "", err
		}
		return jsf("var %s = L.imageOverlay(%q, %s, {\"opacity\": %g}).addTo(map);",
			name, l.URL, corners, l.Opacity), nil
	case *VideoOverlay:
		corners, err := json.Marshal(l.Bounds.Corners())
		if err != nil {
			return "", err
		}
		opts, err := json.Marshal(map[string]any{
			"opacity":  l.Opacity,
			"autoplay": l.Autoplay,
			"loop":     l.Loop,
		})
		if err != nil {
			return "", err
		}
		return jsf("var %s = L.videoOverlay(%q, %s, %s).addTo(map);", name, l.URL, corners, opts), nil
	case *WMSLayer:
		opts, err := json.Marshal(map[string]any{
			"layers":      l.Layers,
			"format":      l.Format,
			"transparent": l.Transparent,
			"version":     l.Version,
		})
		if err != nil {
			return "", err
		}
		return jsf("var %s = L.tileLayer.wms(%q, %s).addTo(map);", name, l.URL, opts), nil
	default:
		return "", fmt.Errorf("no renderer for %T", layer)
	}
}

func jsf(format string, args ...any) template.JS {
	return template.JS(fmt.Sprintf(format, args...))
}

type typedLayer struct {
	Type  string `json:"type"`
	Layer Layer  `json:"layer"`
}

func layerType(l Layer) string {
	switch l.(type) {
	case *TileLayer:
		return "tile"
	case *GeoJSONLayer:
		return "geojson"
	case *ImageOverlay:
		return "image"
	case *VideoOverlay:
		return "video"
	case *WMSLayer:
		return "wms"
	default:
		return "unknown"
	}
}

// MarshalJSON emits the map state for embedding: center, zoom, height and
// the attached layers tagged by variant.
func (m *Map) MarshalJSON() ([]byte, error) {
	layers := make([]typedLayer, 0, len(m.layers))
	for _, l := range m.layers {
		layers = append(layers, typedLayer{Type: layerType(l), Layer: l})
	}
	return json.Marshal(map[string]any{
		"center":          [2]float64{m.Center.Lat, m.Center.Lng},
		"zoom":            m.Zoom,
		"height":          m.Height,
		"scrollWheelZoom": m.ScrollWheelZoom,
		"layers":          layers,
		"controls":        len(m.controls),
	})
}
