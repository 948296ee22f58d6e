package hbase

import (
	"fmt"
	"time"
)

// LoginConfig controls how the process logs in when the hbase settings enable Kerberos.
type LoginConfig struct {
	// Enabled performs a KDC login during bootstrap. Without it credentials are only validated.
	Enabled bool `koanf:"enabled"`

	// TTL is how long a logged in client is reused before the next bootstrap logs in again.
	TTL time.Duration `koanf:"ttl"`

	// ExportEnv exports the resolved realm config path as KRB5_CONFIG for native Kerberos libraries.
	ExportEnv bool `koanf:"exportEnv"`
}

func (c *LoginConfig) SetDefaults() {
	c.Enabled = false
	c.TTL = 8 * time.Hour
	c.ExportEnv = false
}

func (c *LoginConfig) Validate() error {
	if c.TTL <= 0 {
		return fmt.Errorf("kerberos login ttl must be positive, got %v", c.TTL)
	}
	return nil
}
