// Package tileserver serves raster sources as local slippy-map tile layers:
// it opens an MBTiles file or a MySQL tiles table, reads the tileset
// metadata, and exposes the tiles over HTTP for a map to consume.
package tileserver

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"geoview/geo"
)

// ErrTileNotFound reports a tile absent from the store.
var ErrTileNotFound = errors.New("tile not found")

// ErrNoMetadata reports a store without a usable metadata table.
var ErrNoMetadata = errors.New("no metadata")

// Constants representing TileFormat types
const (
	PNG  string = "png"
	JPG         = "jpg"
	PBF         = "pbf"
	WEBP        = "webp"
)

// Metadata describes a tileset, as read from the store's metadata table.
type Metadata struct {
	Name       string
	Format     string
	Bounds     geo.Bounds
	Center     geo.LngLat
	CenterZoom int
	MinZoom    int
	MaxZoom    int
}

// ContentType returns the MIME type for the tileset's tile format.
func (m *Metadata) ContentType() string {
	switch m.Format {
	case JPG:
		return "image/jpeg"
	case WEBP:
		return "image/webp"
	case PBF:
		return "application/x-protobuf"
	default:
		return "image/png"
	}
}

// TileStore reads tiles and metadata from one tileset.
type TileStore interface {
	ReadTile(t geo.TileXyz) ([]byte, error)
	Metadata() (*Metadata, error)
	Close() error
}

// OpenStore opens a tile store for a raster source. A source starting with
// mysql:// is treated as a DSN for a tiles table; anything else as an
// MBTiles file path.
func OpenStore(source string) (TileStore, error) {
	if strings.HasPrefix(source, "mysql://") {
		return OpenMySQLStore(strings.TrimPrefix(source, "mysql://"))
	}
	return OpenMBTilesStore(source)
}

type sqlStore struct {
	db *sql.DB
}

// MBTilesStore reads an MBTiles database. Rows are stored in TMS order, so
// reads flip the Y coordinate.
type MBTilesStore struct {
	sqlStore
	path string
}

// OpenMBTilesStore opens an MBTiles file.
func OpenMBTilesStore(path string) (*MBTilesStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err = optimizeConnection(db); err != nil {
		db.Close()
		return nil, err
	}
	return &MBTilesStore{sqlStore: sqlStore{db: db}, path: path}, nil
}

func optimizeConnection(db *sql.DB) error {
	_, err := db.Exec("PRAGMA synchronous=1")
	if err != nil {
		return err
	}
	_, err = db.Exec("PRAGMA locking_mode=NORMAL")
	if err != nil {
		return err
	}
	_, err = db.Exec("PRAGMA journal_mode=OFF")
	return err
}

// MySQLStore reads the tiles/metadata tables of a MySQL tile database.
type MySQLStore struct {
	sqlStore
}

// OpenMySQLStore connects to a MySQL tile database by DSN.
func OpenMySQLStore(conn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", conn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	return &MySQLStore{sqlStore: sqlStore{db: db}}, nil
}

func (s *sqlStore) ReadTile(t geo.TileXyz) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(
		"select tile_data from tiles where zoom_level=? and tile_column=? and tile_row=?",
		t.Z, t.X, t.FlipY(),
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrTileNotFound, t)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *sqlStore) Metadata() (*Metadata, error) {
	rows, err := s.db.Query("select name, value from metadata")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoMetadata, err)
	}
	defer rows.Close()

	items := map[string]string{}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		items[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoMetadata
	}
	return parseMetadata(items)
}

func (s *sqlStore) Close() error { return s.db.Close() }

// parseMetadata decodes the name/value pairs of an mbtiles metadata table:
// bounds as "west,south,east,north", center as "lng,lat,zoom". A missing
// center is derived from the bounds and zoom range.
func parseMetadata(items map[string]string) (*Metadata, error) {
	meta := &Metadata{
		Name:   items["name"],
		Format: items["format"],
	}
	if meta.Format == "" {
		meta.Format = PNG
	}
	meta.MinZoom, _ = strconv.Atoi(items["minzoom"])
	if v, ok := items["maxzoom"]; ok {
		meta.MaxZoom, _ = strconv.Atoi(v)
	} else {
		meta.MaxZoom = geo.MaxZoom
	}

	if v, ok := items["bounds"]; ok {
		parts, err := splitFloats(v, 4)
		if err != nil {
			return nil, fmt.Errorf("metadata bounds %q: %w", v, err)
		}
		meta.Bounds = geo.Bounds{West: parts[0], South: parts[1], East: parts[2], North: parts[3]}
	}

	if v, ok := items["center"]; ok {
		parts, err := splitFloats(v, 3)
		if err != nil {
			return nil, fmt.Errorf("metadata center %q: %w", v, err)
		}
		meta.Center = geo.LngLat{Lng: parts[0], Lat: parts[1]}
		meta.CenterZoom = int(parts[2])
	} else {
		meta.Center = meta.Bounds.Center()
		meta.CenterZoom = (meta.MinZoom + meta.MaxZoom) / 2
	}
	return meta, nil
}

func splitFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(parts))
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
