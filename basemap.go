package geoview

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultBasemap is substituted whenever a requested basemap is unknown.
const DefaultBasemap = "OpenStreetMap.Mapnik"

// Basemap 底图配置
type Basemap struct {
	URL         string
	Attribution string
	MaxZoom     int
}

// Closed registry of known basemap identifiers. Lookup is a plain map
// access; no names are resolved dynamically.
var basemaps = map[string]Basemap{
	"OpenStreetMap.Mapnik": {
		URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors",
		MaxZoom:     19,
	},
	"OpenStreetMap.HOT": {
		URL:         "https://tile.openstreetmap.fr/hot/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors, Humanitarian OpenStreetMap Team",
		MaxZoom:     19,
	},
	"OpenTopoMap": {
		URL:         "https://tile.opentopomap.org/{z}/{x}/{y}.png",
		Attribution: "Map data: &copy; OpenStreetMap contributors, SRTM | Style: &copy; OpenTopoMap",
		MaxZoom:     17,
	},
	"Esri.WorldImagery": {
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Attribution: "Tiles &copy; Esri",
		MaxZoom:     18,
	},
	"Esri.WorldTopoMap": {
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Topo_Map/MapServer/tile/{z}/{y}/{x}",
		Attribution: "Tiles &copy; Esri",
		MaxZoom:     18,
	},
	"CartoDB.Positron": {
		URL:         "https://basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors &copy; CARTO",
		MaxZoom:     20,
	},
	"CartoDB.DarkMatter": {
		URL:         "https://basemaps.cartocdn.com/dark_all/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors &copy; CARTO",
		MaxZoom:     20,
	},
}

// BasemapNames returns the known basemap identifiers, sorted.
func BasemapNames() []string {
	names := make([]string, 0, len(basemaps))
	for name := range basemaps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupBasemap resolves a basemap name, reporting whether it was found.
func LookupBasemap(name string) (Basemap, bool) {
	bm, ok := basemaps[name]
	return bm, ok
}

const googleTileURL = "https://mt1.google.com/vt/lyrs=%s&x={x}&y={y}&z={z}"

// lyrs codes the google tile endpoint understands
var googleMapTypes = map[string]string{
	"ROADMAP":   "m",
	"SATELLITE": "s",
	"HYBRID":    "h",
	"TERRAIN":   "t",
}

func googleMapURL(mapType string) (string, error) {
	code, ok := googleMapTypes[strings.ToUpper(mapType)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMapType, mapType)
	}
	return fmt.Sprintf(googleTileURL, code), nil
}
