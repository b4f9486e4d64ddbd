package tileserver

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"geoview/geo"
)

// deepest zoom level a tile address may name
const maxTileZoom = 30

var confOnce sync.Once

// initConf 初始化配置
func initConf() {
	viper.SetDefault("tileserver.addr", "127.0.0.1:0")
	viper.SetDefault("tileserver.cache.size", 256)
	viper.SetDefault("tileserver.cache.redis", "")
	viper.SetDefault("tileserver.workers", 4)
	viper.AutomaticEnv() // read in environment variables that match
}

// InitLog routes logs to logfile and the screen at the given level.
func InitLog(logfile string, level log.Level) {
	log.SetFormatter(&nested.Formatter{
		HideKeys:        true,
		ShowFullLevel:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	file, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err == nil {
		log.SetOutput(io.MultiWriter(file, os.Stdout))
	} else {
		log.Info("failed to log to file.")
	}
	log.SetLevel(level)
}

// Client serves one raster source as a local tile layer and reports the
// tileset's native center and zoom range.
type Client struct {
	ID string

	store  TileStore
	cache  TileCache
	meta   *Metadata
	engine *gin.Engine
	ln     net.Listener
	srv    *http.Server
}

// NewClient opens the raster source and prepares the HTTP routes. Serve
// must be called before the tile URL resolves.
func NewClient(source string) (*Client, error) {
	confOnce.Do(initConf)
	store, err := OpenStore(source)
	if err != nil {
		return nil, err
	}
	meta, err := store.Metadata()
	if err != nil {
		store.Close()
		return nil, err
	}
	c := &Client{
		ID:    uuid.New().String(),
		store: store,
		meta:  meta,
	}
	if addr := viper.GetString("tileserver.cache.redis"); addr != "" {
		c.cache = NewRedisCache(addr, c.ID)
	} else {
		c.cache = NewMemoryCache(viper.GetInt("tileserver.cache.size"))
	}
	gin.SetMode(gin.ReleaseMode)
	c.engine = gin.New()
	c.engine.Use(gin.Recovery())
	c.engine.GET("/tiles/:z/:x/:y", c.tileHandler)
	return c, nil
}

func (c *Client) tileHandler(ctx *gin.Context) {
	z, errz := strconv.Atoi(ctx.Param("z"))
	x, errx := strconv.Atoi(ctx.Param("x"))
	y, erry := strconv.Atoi(ctx.Param("y"))
	if errz != nil || errx != nil || erry != nil || z < 0 || z > maxTileZoom {
		ctx.String(http.StatusBadRequest, "bad tile address")
		return
	}
	if x < 0 || x >= 1<<z || y < 0 || y >= 1<<z {
		ctx.String(http.StatusBadRequest, "bad tile address")
		return
	}
	t := geo.TileXyz{X: x, Y: y, Z: z}
	key := tileKey(t)
	data, ok := c.cache.Get(key)
	if !ok {
		var err error
		data, err = c.store.ReadTile(t)
		if err != nil {
			if !errors.Is(err, ErrTileNotFound) {
				log.Errorf("read %s tile error ~ %s", t, err)
			}
			ctx.Status(http.StatusNotFound)
			return
		}
		c.cache.Set(key, data)
	}
	if c.meta.Format == PBF {
		// pbf tiles are stored gzip compressed
		ctx.Header("Content-Encoding", "gzip")
	}
	ctx.Data(http.StatusOK, c.meta.ContentType(), data)
}

// Handler exposes the routes, mainly for tests.
func (c *Client) Handler() http.Handler { return c.engine }

// Serve starts listening on the configured address. Calling it again is a
// no-op.
func (c *Client) Serve() error {
	if c.ln != nil {
		return nil
	}
	ln, err := net.Listen("tcp", viper.GetString("tileserver.addr"))
	if err != nil {
		return err
	}
	c.ln = ln
	c.srv = &http.Server{Handler: c.engine}
	go func() {
		if err := c.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Errorf("tile server %s stopped ~ %s", c.ID, err)
		}
	}()
	log.Infof("tile server %s serving %s on %s", c.ID, c.meta.Name, ln.Addr())
	return nil
}

// Close stops the server and releases the store.
func (c *Client) Close() error {
	if c.srv != nil {
		_ = c.srv.Close()
		c.srv = nil
		c.ln = nil
	}
	return c.store.Close()
}

// Addr returns the bound address, empty before Serve.
func (c *Client) Addr() string {
	if c.ln == nil {
		return ""
	}
	return c.ln.Addr().String()
}

// TileURL returns the layer URL template for this server. colormap, when
// set, is carried as a query parameter for styling front ends.
func (c *Client) TileURL(colormap string) string {
	url := fmt.Sprintf("http://%s/tiles/{z}/{x}/{y}", c.Addr())
	if colormap != "" {
		url += "?colormap=" + colormap
	}
	return url
}

// Name returns the tileset name, or the client ID when unnamed.
func (c *Client) Name() string {
	if c.meta.Name != "" {
		return c.meta.Name
	}
	return "raster-" + c.ID[:8]
}

// Center returns the tileset's native center.
func (c *Client) Center() geo.LngLat { return c.meta.Center }

// DefaultZoom returns the tileset's native zoom.
func (c *Client) DefaultZoom() int { return c.meta.CenterZoom }

// MaxZoom returns the deepest zoom level present.
func (c *Client) MaxZoom() int { return c.meta.MaxZoom }

// Bounds returns the tileset extent.
func (c *Client) Bounds() geo.Bounds { return c.meta.Bounds }
