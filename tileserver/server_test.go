package tileserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoview/geo"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(newTestMBTiles(t))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func getTile(c *Client, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, req)
	return w
}

func TestClientReportsMetadata(t *testing.T) {
	client := newTestClient(t)
	assert.Equal(t, geo.LngLat{Lng: 72.5, Lat: 19.0}, client.Center())
	assert.Equal(t, 10, client.DefaultZoom())
	assert.Equal(t, 12, client.MaxZoom())
	assert.Equal(t, "demo", client.Name())
}

func TestTileHandler(t *testing.T) {
	client := newTestClient(t)

	w := getTile(client, "/tiles/0/0/0")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, testTilePNG, w.Body.Bytes())

	// second read comes from the cache
	w = getTile(client, "/tiles/0/0/0")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testTilePNG, w.Body.Bytes())

	w = getTile(client, "/tiles/5/3/3")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = getTile(client, "/tiles/a/0/0")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTileHandlerRejectsOutOfRangeAddresses(t *testing.T) {
	client := newTestClient(t)

	for _, path := range []string{
		"/tiles/-1/0/0", // negative zoom must not reach the store
		"/tiles/99/0/0", // zoom past any real tile pyramid
		"/tiles/1/2/0",  // column beyond 2^z-1
		"/tiles/1/0/-3", // negative row
		"/tiles/0/0/1",  // row beyond 2^z-1
	} {
		w := getTile(client, path)
		assert.Equal(t, http.StatusBadRequest, w.Code, "GET %s", path)
	}
}

func TestServeAndTileURL(t *testing.T) {
	client := newTestClient(t)
	assert.Equal(t, "", client.Addr())

	require.NoError(t, client.Serve())
	require.NoError(t, client.Serve()) // idempotent

	addr := client.Addr()
	require.NotEmpty(t, addr)
	assert.True(t, strings.HasPrefix(client.TileURL(""), "http://"+addr+"/tiles/"))
	assert.Contains(t, client.TileURL(""), "{z}/{x}/{y}")
	assert.Contains(t, client.TileURL("viridis"), "?colormap=viridis")
}

func TestWarmFillsCache(t *testing.T) {
	client := newTestClient(t)
	cache, ok := client.cache.(*MemoryCache)
	require.True(t, ok)

	bounds := geo.NewBounds(-85, -180, 85, 180)
	require.NoError(t, client.Warm(bounds, 0, 1))

	// the fixture has two tiles inside the warmed range
	assert.Equal(t, 2, cache.Len())
	_, hit := cache.Get(tileKey(geo.TileXyz{X: 0, Y: 0, Z: 0}))
	assert.True(t, hit)
	_, hit = cache.Get(tileKey(geo.TileXyz{X: 1, Y: 0, Z: 1}))
	assert.True(t, hit)
}

func TestWarmBadRange(t *testing.T) {
	client := newTestClient(t)
	assert.Error(t, client.Warm(geo.NewBounds(0, 0, 1, 1), 3, 1))
}
