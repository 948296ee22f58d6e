package hbase

import (
	"fmt"
	"os"
	"sync"

	cmap "github.com/orcaman/concurrent-map"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// envByProperty maps properties to the environment variables native Kerberos libraries read them from.
var envByProperty = map[string]string{
	KeyKrb5Conf: "KRB5_CONFIG",
}

// Properties holds the process level properties the authentication layer reads during connection setup, such as
// the realm config path and the ZooKeeper SASL client flag.
//
// All writes go through Set, which is serialized. When two connectors bootstrap concurrently against the same
// Properties with different values the last writer wins; Set logs a warning whenever it replaces a different value.
type Properties struct {
	logger *zap.Logger

	// mu serializes Set and ExportEnv so that overwrite detection and the write happen together.
	mu     sync.Mutex
	values cmap.ConcurrentMap

	writes *atomic.Int64
}

var (
	defaultProperties     *Properties
	defaultPropertiesOnce sync.Once
)

// NewProperties creates an empty property store.
func NewProperties(logger *zap.Logger) *Properties {
	return &Properties{
		logger: logger.Named("properties"),
		values: cmap.New(),
		writes: atomic.NewInt64(0),
	}
}

// DefaultProperties returns the store shared by everything in this process. It logs through the global zap logger
// that is in place when it is first called.
func DefaultProperties() *Properties {
	defaultPropertiesOnce.Do(func() {
		defaultProperties = NewProperties(zap.L())
	})
	return defaultProperties
}

// Set stores value under key.
func (p *Properties) Set(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prev, exists := p.values.Get(key); exists && prev.(string) != value {
		p.logger.Warn("overwriting process property, last writer wins",
			zap.String("property", key),
			zap.String("previous", prev.(string)),
			zap.String("value", value))
	}
	p.values.Set(key, value)
	p.writes.Inc()
}

func (p *Properties) Get(key string) (string, bool) {
	v, exists := p.values.Get(key)
	if !exists {
		return "", false
	}
	return v.(string), true
}

// Writes returns how many times Set has been called.
func (p *Properties) Writes() int64 {
	return p.writes.Load()
}

// Items returns a snapshot of all properties.
func (p *Properties) Items() map[string]string {
	items := make(map[string]string)
	for k, v := range p.values.Items() {
		items[k] = v.(string)
	}
	return items
}

// ExportEnv copies properties that native libraries read from the environment into the process environment.
// Empty values are not exported.
func (p *Properties) ExportEnv() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for property, envKey := range envByProperty {
		v, exists := p.values.Get(property)
		if !exists || v.(string) == "" {
			continue
		}
		if err := os.Setenv(envKey, v.(string)); err != nil {
			return fmt.Errorf("failed to export property '%v' as '%v': %w", property, envKey, err)
		}
		p.logger.Debug("exported process property", zap.String("property", property), zap.String("env", envKey))
	}
	return nil
}
