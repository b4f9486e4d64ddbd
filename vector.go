package geoview

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"

	"geoview/geo"
)

// VectorOptions tunes AddVector. A nil options value means: name "GeoJSON",
// zoom to the layer, yellow hover outline with 20% fill opacity.
type VectorOptions struct {
	Name        string
	ZoomToLayer bool
	Style       map[string]any
	HoverStyle  map[string]any
}

func defaultVectorOptions() *VectorOptions {
	return &VectorOptions{Name: "GeoJSON", ZoomToLayer: true}
}

// AddVector attaches a vector layer. source is either a file path or URL to
// a GeoJSON document, or an in-memory geometry interchange structure
// (*geojson.FeatureCollection or map[string]any). Loaded documents are
// reprojected to WGS84/EPSG:4326 first; in-memory data is attached as-is
// and the viewport is left alone even when ZoomToLayer is set, since bounds
// are only computed while loading.
func (m *Map) AddVector(source any, opts *VectorOptions) error {
	if opts == nil {
		opts = defaultVectorOptions()
	}
	hover := opts.HoverStyle
	if hover == nil {
		hover = map[string]any{"color": "yellow", "fillOpacity": 0.2}
	}
	name := opts.Name
	if name == "" {
		name = "GeoJSON"
	}

	var data any
	var bounds *orb.Bound
	switch src := source.(type) {
	case string:
		fc, err := loadFeatureCollection(src)
		if err != nil {
			return err
		}
		data = fc
		if len(fc.Features) > 0 {
			b := fc.Features[0].Geometry.Bound()
			for _, f := range fc.Features[1:] {
				b = b.Union(f.Geometry.Bound())
			}
			bounds = &b
		}
	case *geojson.FeatureCollection:
		data = src
	case map[string]any:
		data = src
	default:
		return fmt.Errorf("unsupported vector source %T", source)
	}

	m.addLayer(&GeoJSONLayer{
		Name:       name,
		Data:       data,
		Style:      opts.Style,
		HoverStyle: hover,
	})
	if opts.ZoomToLayer && bounds != nil {
		m.FitBounds(geo.FromOrbBound(*bounds))
	}
	return nil
}

// loadFeatureCollection reads a GeoJSON document from a path or URL and
// reprojects it to WGS84.
func loadFeatureCollection(source string) (*geojson.FeatureCollection, error) {
	data, err := readSource(source)
	if err != nil {
		return nil, fmt.Errorf("read vector source: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal feature collection: %w", err)
	}
	epsg, err := documentEPSG(data)
	if err != nil {
		return nil, err
	}
	if epsg != 4326 {
		for _, f := range fc.Features {
			f.Geometry = project.Geometry(f.Geometry, project.Mercator.ToWGS84)
		}
	}
	return fc, nil
}

func readSource(source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := http.Get(source)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch %s: status %d", source, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(source)
}

// documentEPSG reads the legacy crs member of a GeoJSON document. A missing
// crs means the document is already WGS84 per RFC 7946. Only EPSG:3857 can
// be reprojected; anything else is rejected.
func documentEPSG(data []byte) (int, error) {
	var doc struct {
		CRS *struct {
			Properties struct {
				Name string `json:"name"`
			} `json:"properties"`
		} `json:"crs"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || doc.CRS == nil {
		return 4326, nil
	}
	name := doc.CRS.Properties.Name
	if name == "" || strings.HasSuffix(name, "CRS84") {
		return 4326, nil
	}
	idx := strings.LastIndexAny(name, ":")
	if idx >= 0 {
		if code, err := strconv.Atoi(name[idx+1:]); err == nil {
			switch code {
			case 4326, 3857:
				return code, nil
			default:
				return 0, fmt.Errorf("unsupported crs EPSG:%d", code)
			}
		}
	}
	return 0, fmt.Errorf("unsupported crs %q", name)
}
