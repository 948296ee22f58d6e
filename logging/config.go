package logging

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	EncodingJSON    = "json"
	EncodingConsole = "console"
)

type Config struct {
	Level    string `koanf:"level"`
	Encoding string `koanf:"encoding"`
}

func (c *Config) SetDefaults() {
	c.Level = "info"
	c.Encoding = EncodingJSON
}

func (c *Config) Validate() error {
	level := zap.NewAtomicLevel()
	err := level.UnmarshalText([]byte(c.Level))
	if err != nil {
		return fmt.Errorf("failed to parse logger level: %w", err)
	}

	switch c.Encoding {
	case EncodingJSON, EncodingConsole:
	default:
		return fmt.Errorf("invalid log encoding '%v'. Valid encodings are '%v' or '%v'",
			c.Encoding, EncodingJSON, EncodingConsole)
	}

	return nil
}
