package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/cloudhut/hconnect/hbase"
	"github.com/cloudhut/hconnect/logging"
	"github.com/cloudhut/hconnect/prometheus"
	"github.com/cloudhut/hconnect/reader"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	// configDelim separates config path segments. HBase setting keys contain dots, so dots can't be used.
	configDelim = "::"
	envPrefix   = "HCONNECT_"
)

type Config struct {
	Job      JobConfig              `koanf:"job"`
	HBase    map[string]interface{} `koanf:"hbase"`
	Kerberos hbase.LoginConfig      `koanf:"kerberos"`
	Reader   reader.Config          `koanf:"reader"`
	Exporter prometheus.Config      `koanf:"exporter"`
	Logger   logging.Config         `koanf:"logger"`
}

type JobConfig struct {
	Name        string `koanf:"name"`
	Parallelism int    `koanf:"parallelism"`
}

func (c *JobConfig) SetDefaults() {
	c.Name = "hconnect"
	c.Parallelism = 1
}

func (c *JobConfig) Validate() error {
	if c.Parallelism < 1 {
		return fmt.Errorf("job parallelism must be at least 1, got %d", c.Parallelism)
	}
	return nil
}

func (c *Config) SetDefaults() {
	c.Job.SetDefaults()
	c.Kerberos.SetDefaults()
	c.Exporter.SetDefaults()
	c.Logger.SetDefaults()
}

func (c *Config) Validate() error {
	err := c.Job.Validate()
	if err != nil {
		return fmt.Errorf("failed to validate job config: %w", err)
	}

	if len(c.HBase) == 0 {
		return fmt.Errorf("no hbase settings specified")
	}

	err = c.Kerberos.Validate()
	if err != nil {
		return fmt.Errorf("failed to validate kerberos config: %w", err)
	}

	err = c.Reader.Validate()
	if err != nil {
		return fmt.Errorf("failed to validate reader config: %w", err)
	}

	err = c.Exporter.Validate()
	if err != nil {
		return fmt.Errorf("failed to validate exporter config: %w", err)
	}

	err = c.Logger.Validate()
	if err != nil {
		return fmt.Errorf("failed to validate logger config: %w", err)
	}

	return nil
}

// freeFormSections hold maps whose keys are case-sensitive setting names rather than config options.
var freeFormSections = map[string]bool{
	"hbase":             true,
	"reader::parameter": true,
}

// envKeyToPath turns an environment variable into a config path. Path segments are separated by a double underscore
// and lowercased up to a free form section, whose keys are kept verbatim
// (HCONNECT_HBASE__hbase.zookeeper.property.clientPort, HCONNECT_READER__PARAMETER__splitPk).
func envKeyToPath(envKey string) string {
	segments := strings.Split(strings.TrimPrefix(envKey, envPrefix), "__")
	for i := range segments {
		segments[i] = strings.ToLower(segments[i])
		if freeFormSections[strings.Join(segments[:i+1], configDelim)] {
			break
		}
	}
	return strings.Join(segments, configDelim)
}

// newConfig loads the YAML job file at configFilepath (CONFIG_FILEPATH if empty) and overlays HCONNECT_ prefixed
// environment variables, where a double underscore separates path segments (HCONNECT_LOGGER__LEVEL).
func newConfig(logger *zap.Logger, configFilepath string) (Config, error) {
	k := koanf.New(configDelim)
	var cfg Config
	cfg.SetDefaults()

	envKey := "CONFIG_FILEPATH"
	if configFilepath == "" {
		configFilepath = os.Getenv(envKey)
	}
	if configFilepath == "" {
		logger.Info("neither --config nor the env variable '" + envKey + "' is set, therefore no YAML config will be loaded")
	} else {
		err := k.Load(file.Provider(configFilepath), yaml.Parser())
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	// The YAML file is decoded with ErrorUnused so that typos in option names are reported, environment variables
	// are decoded afterwards without it.
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag:       "",
		FlatPaths: false,
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc()),
			Metadata:         nil,
			Result:           &cfg,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		},
	})
	if err != nil {
		return Config{}, err
	}

	err = k.Load(env.ProviderWithValue(envPrefix, configDelim, func(s string, v string) (string, interface{}) {
		return envKeyToPath(s), v
	}), nil)
	if err != nil {
		return Config{}, err
	}

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return Config{}, err
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, fmt.Errorf("failed to validate config: %w", err)
	}

	return cfg, nil
}
