package prometheus

import "fmt"

type Config struct {
	Enabled   bool   `koanf:"enabled"`
	Host      string `koanf:"host"`
	Port      int    `koanf:"port"`
	Namespace string `koanf:"namespace"`
}

func (c *Config) SetDefaults() {
	c.Enabled = true
	c.Port = 8080
	c.Namespace = "hconnect"
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("exporter port %d is out of range", c.Port)
	}
	if c.Namespace == "" {
		return fmt.Errorf("exporter namespace must not be empty")
	}
	return nil
}

func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
