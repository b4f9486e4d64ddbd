package tileserver

import (
	"strconv"
	"sync"

	"github.com/gomodule/redigo/redis"
	log "github.com/sirupsen/logrus"

	"geoview/geo"
)

// TileCache caches tile blobs between the store and the HTTP handlers.
type TileCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, data []byte)
}

func tileKey(t geo.TileXyz) string {
	return "tile_" + strconv.Itoa(t.X) + "_" + strconv.Itoa(t.Y) + "_" + strconv.Itoa(t.Z)
}

// MemoryCache is a bounded in-process tile cache. When full it evicts
// arbitrary entries, which is acceptable for tile traffic.
type MemoryCache struct {
	sync.RWMutex
	max   int
	tiles map[string][]byte
}

// NewMemoryCache creates a cache holding at most max tiles.
func NewMemoryCache(max int) *MemoryCache {
	if max <= 0 {
		max = 256
	}
	return &MemoryCache{max: max, tiles: make(map[string][]byte, max)}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.RLock()
	defer c.RUnlock()
	data, ok := c.tiles[key]
	return data, ok
}

func (c *MemoryCache) Set(key string, data []byte) {
	c.Lock()
	defer c.Unlock()
	if len(c.tiles) >= c.max {
		for k := range c.tiles {
			delete(c.tiles, k)
			break
		}
	}
	c.tiles[key] = data
}

// Len returns the number of cached tiles.
func (c *MemoryCache) Len() int {
	c.RLock()
	defer c.RUnlock()
	return len(c.tiles)
}

// RedisCache keeps tile blobs in a redis hash per tileset.
type RedisCache struct {
	pool *redis.Pool
	hash string
}

// NewRedisCache connects a cache to the redis server at addr. id
// namespaces the tileset's hash key.
func NewRedisCache(addr, id string) *RedisCache {
	return &RedisCache{
		hash: "tiles:" + id,
		pool: &redis.Pool{
			MaxIdle:     16,
			MaxActive:   32,
			IdleTimeout: 120,
			Dial: func() (redis.Conn, error) {
				return redis.Dial("tcp", addr)
			},
		},
	}
}

func (c *RedisCache) Get(key string) ([]byte, bool) {
	conn := c.pool.Get()
	defer c.closeConn(conn)
	data, err := redis.Bytes(conn.Do("hget", c.hash, key))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *RedisCache) Set(key string, data []byte) {
	conn := c.pool.Get()
	defer c.closeConn(conn)
	if _, err := conn.Do("hset", c.hash, key, data); err != nil {
		log.Errorf("redis save tile failure ~ %s", err)
	}
}

// Clear drops the tileset's hash.
func (c *RedisCache) Clear() {
	conn := c.pool.Get()
	defer c.closeConn(conn)
	_, _ = conn.Do("del", c.hash)
}

func (c *RedisCache) closeConn(conn redis.Conn) {
	if err := conn.Close(); err != nil {
		log.Errorf("redis connection close failure")
	}
}
