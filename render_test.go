package geoview

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoview/geo"
)

func TestRenderHTML(t *testing.T) {
	m := NewMap(geo.LngLat{Lng: 72, Lat: 19}, 4, "500px")
	m.AddBasemap(DefaultBasemap)
	require.NoError(t, m.AddGoogleMap("SATELLITE"))
	m.AddImage("pic.png", geo.NewBounds(18, 72, 19, 73), nil)
	m.AddVideo("clip.mp4", geo.NewBounds(18, 72, 19, 73), nil)
	m.AddWMSLayer("https://wms.example.com/service", "radar", nil)
	m.AddLayerControl()

	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{72.8, 18.9}))
	require.NoError(t, m.AddVector(fc, nil))

	var buf bytes.Buffer
	require.NoError(t, m.Render(&buf))
	html := buf.String()

	assert.Contains(t, html, "L.map('map'")
	assert.Contains(t, html, `"scrollWheelZoom":true`)
	assert.Contains(t, html, "setView([19, 72], 4)")
	assert.Contains(t, html, "height: 500px")
	assert.Contains(t, html, "L.tileLayer(")
	assert.Contains(t, html, "lyrs=s")
	assert.Contains(t, html, "L.imageOverlay(")
	assert.Contains(t, html, "L.videoOverlay(")
	assert.Contains(t, html, "L.tileLayer.wms(")
	assert.Contains(t, html, "L.geoJSON(")
	assert.Contains(t, html, "L.control.layers()")
}

func TestRenderFitBounds(t *testing.T) {
	m := NewMap(DefaultCenter, DefaultZoom, DefaultHeight)
	m.FitBounds(geo.NewBounds(18, 72, 19, 73))

	var buf bytes.Buffer
	require.NoError(t, m.Render(&buf))
	assert.Contains(t, buf.String(), "map.fitBounds([[18,72],[19,73]]);")
}

func TestMapMarshalJSON(t *testing.T) {
	m := NewMap(geo.LngLat{Lng: 72, Lat: 19}, 3, "600px")
	m.AddBasemap(DefaultBasemap)
	m.AddLayerControl()

	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var state struct {
		Center [2]float64 `json:"center"`
		Zoom   int        `json:"zoom"`
		Layers []struct {
			Type string `json:"type"`
		} `json:"layers"`
		Controls int `json:"controls"`
	}
	require.NoError(t, json.Unmarshal(raw, &state))
	assert.Equal(t, [2]float64{19, 72}, state.Center)
	assert.Equal(t, 3, state.Zoom)
	require.Len(t, state.Layers, 1)
	assert.Equal(t, "tile", state.Layers[0].Type)
	assert.Equal(t, 1, state.Controls)
}
