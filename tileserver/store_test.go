package tileserver

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoview/geo"
)

var testTilePNG = []byte("\x89PNG\r\n\x1a\nfake-tile")

// newTestMBTiles builds a two-tile MBTiles fixture: z0 and one z1 tile.
func newTestMBTiles(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.mbtiles")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("create table tiles (zoom_level integer, tile_column integer, tile_row integer, tile_data blob);")
	require.NoError(t, err)
	_, err = db.Exec("create table metadata (name text, value text);")
	require.NoError(t, err)

	meta := map[string]string{
		"name":    "demo",
		"format":  "png",
		"bounds":  "71.5,18.5,73.5,19.5",
		"center":  "72.5,19.0,10",
		"minzoom": "0",
		"maxzoom": "12",
	}
	for name, value := range meta {
		_, err = db.Exec("insert into metadata (name, value) values (?, ?)", name, value)
		require.NoError(t, err)
	}

	// rows are stored in TMS order
	for _, tile := range []geo.TileXyz{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 1}} {
		_, err = db.Exec("insert into tiles (zoom_level, tile_column, tile_row, tile_data) values (?, ?, ?, ?)",
			tile.Z, tile.X, tile.FlipY(), testTilePNG)
		require.NoError(t, err)
	}
	return path
}

func TestMBTilesStoreReadTile(t *testing.T) {
	store, err := OpenMBTilesStore(newTestMBTiles(t))
	require.NoError(t, err)
	defer store.Close()

	data, err := store.ReadTile(geo.TileXyz{X: 0, Y: 0, Z: 0})
	require.NoError(t, err)
	assert.Equal(t, testTilePNG, data)

	data, err = store.ReadTile(geo.TileXyz{X: 1, Y: 0, Z: 1})
	require.NoError(t, err)
	assert.Equal(t, testTilePNG, data)

	_, err = store.ReadTile(geo.TileXyz{X: 0, Y: 1, Z: 1})
	assert.ErrorIs(t, err, ErrTileNotFound)
}

func TestMBTilesStoreMetadata(t *testing.T) {
	store, err := OpenMBTilesStore(newTestMBTiles(t))
	require.NoError(t, err)
	defer store.Close()

	meta, err := store.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "demo", meta.Name)
	assert.Equal(t, PNG, meta.Format)
	assert.Equal(t, geo.Bounds{West: 71.5, South: 18.5, East: 73.5, North: 19.5}, meta.Bounds)
	assert.Equal(t, geo.LngLat{Lng: 72.5, Lat: 19.0}, meta.Center)
	assert.Equal(t, 10, meta.CenterZoom)
	assert.Equal(t, 0, meta.MinZoom)
	assert.Equal(t, 12, meta.MaxZoom)
	assert.Equal(t, "image/png", meta.ContentType())
}

func TestMetadataMissing(t *testing.T) {
	store, err := OpenMBTilesStore(filepath.Join(t.TempDir(), "empty.mbtiles"))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Metadata()
	assert.ErrorIs(t, err, ErrNoMetadata)
}

func TestParseMetadataDerivedCenter(t *testing.T) {
	meta, err := parseMetadata(map[string]string{
		"name":    "nocenter",
		"bounds":  "0,0,2,4",
		"minzoom": "4",
		"maxzoom": "8",
	})
	require.NoError(t, err)
	assert.Equal(t, geo.LngLat{Lng: 1, Lat: 2}, meta.Center)
	assert.Equal(t, 6, meta.CenterZoom)
	assert.Equal(t, PNG, meta.Format)
}

func TestParseMetadataBadBounds(t *testing.T) {
	_, err := parseMetadata(map[string]string{"bounds": "1,2,3"})
	assert.Error(t, err)
}
