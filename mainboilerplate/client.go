package mainboilerplate

import (
	"net/http"
	"time"

	"go.tablekeeper.dev/seating/client"
)

// ClientConfig configures the client of a remote seating service.
type ClientConfig struct {
	Address string        `long:"address" env:"ADDRESS" default:"http://localhost:8080" description:"Service address endpoint"`
	Timeout time.Duration `long:"timeout" env:"TIMEOUT" default:"10s" description:"Timeout of each service request"`

	Cache struct {
		Size int           `long:"cache.size" env:"CACHE_SIZE" default:"0" description:"Size of client lookup cache. If <= zero, no cache is used"`
		TTL  time.Duration `long:"cache.ttl" env:"CACHE_TTL" default:"5s" description:"Time-to-live of lookup cache entries"`
	}
}

// BuildClient returns a client.Client of the configured service.
func (c *ClientConfig) BuildClient() *client.Client {
	var cache *client.LookupCache
	if c.Cache.Size > 0 {
		cache = client.NewLookupCache(c.Cache.Size, c.Cache.TTL)
	}
	return client.New(c.Address, &http.Client{Timeout: c.Timeout}, cache)
}
