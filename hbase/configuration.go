package hbase

import (
	"sort"
	"sync"
)

// Configuration is the client configuration handed to the HBase client when a connection is established.
type Configuration struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewConfiguration returns a configuration seeded with the client defaults.
func NewConfiguration() *Configuration {
	c := &Configuration{values: make(map[string]string)}
	c.values[KeyZookeeperZnodeParent] = "/hbase"
	c.values[KeyZookeeperClientPort] = "2181"
	c.values[KeyClientRetries] = "15"
	return c
}

// BuildConfiguration copies every scalar, non-nil setting into a new configuration. Nested maps are skipped and no
// validation is done, unknown keys pass through.
func BuildConfiguration(settings Settings) *Configuration {
	conf := NewConfiguration()
	for key, value := range settings {
		if value == nil || isNested(value) {
			continue
		}
		conf.Set(key, settings.String(key))
	}
	return conf
}

func (c *Configuration) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

func (c *Configuration) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// Keys returns all configured keys in lexical order.
func (c *Configuration) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the configuration.
func (c *Configuration) Map() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m := make(map[string]string, len(c.values))
	for k, v := range c.values {
		m[k] = v
	}
	return m
}
