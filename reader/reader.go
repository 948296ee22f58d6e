// Package reader selects the read plugin of a job by name. Plugins that only differ in the engine version they
// target share one implementation and are registered once per version.
package reader

import (
	"fmt"

	"go.uber.org/zap"
)

// Config is the reader section of a job.
type Config struct {
	Name      string                 `koanf:"name"`
	Parameter map[string]interface{} `koanf:"parameter"`
}

// Validate only checks the shape of the section, parameters are validated by the reader factory.
func (c *Config) Validate() error {
	if c.Name == "" && len(c.Parameter) > 0 {
		return fmt.Errorf("reader parameters are set but no reader name is given")
	}
	return nil
}

// Environment describes where the reader runs.
type Environment struct {
	JobName     string
	Parallelism int
	Logger      *zap.Logger
}

func (e Environment) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Reader is a configured read plugin.
type Reader interface {
	// Name is the plugin name the reader was created for.
	Name() string
	// EngineVersion is the major version of the engine the reader targets.
	EngineVersion() string
	// Query is the statement issued when the reader runs without splitting.
	Query() string
	// SplitQueries returns one statement per parallel channel.
	SplitQueries() []string
}

// Factory creates a reader from its job section.
type Factory func(cfg Config, env Environment) (Reader, error)
