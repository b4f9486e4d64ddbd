package tileserver

import (
	"errors"
	"fmt"
	"sync"

	pb "github.com/cheggaaa/pb/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"geoview/geo"
)

// Warm preloads every tile covering bounds between minZoom and maxZoom
// from the store into the cache, one worker pool and progress bar per zoom
// level.
func (c *Client) Warm(bounds geo.Bounds, minZoom, maxZoom int) error {
	if minZoom > maxZoom {
		return fmt.Errorf("bad zoom range %d..%d", minZoom, maxZoom)
	}
	for z := minZoom; z <= maxZoom; z++ {
		c.warmZoom(bounds, z)
	}
	return nil
}

func (c *Client) warmZoom(bounds geo.Bounds, zoom int) {
	bar := pb.New(geo.TileCount(bounds, zoom)).Start()
	tiles := make(chan geo.TileXyz)
	go geo.TilesInBounds(bounds, zoom, tiles)

	workers := make(chan struct{}, viper.GetInt("tileserver.workers"))
	var wg sync.WaitGroup
	for t := range tiles {
		workers <- struct{}{}
		wg.Add(1)
		go func(t geo.TileXyz) {
			defer func() {
				bar.Increment()
				wg.Done()
				<-workers
			}()
			data, err := c.store.ReadTile(t)
			if err != nil {
				if !errors.Is(err, ErrTileNotFound) {
					log.Errorf("warm %s tile error ~ %s", t, err)
				}
				return
			}
			c.cache.Set(tileKey(t), data)
		}(t)
	}
	wg.Wait()
	bar.Finish()
	log.Infof("tile server %s zoom %d warmed ~", c.ID, zoom)
}
