package reader

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cloudhut/hconnect/hbase"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	PhoenixReaderName  = "phoenixreader"
	Phoenix5ReaderName = "phoenix5reader"

	defaultFetchSize = 1000
)

// phoenixVersions maps each Phoenix plugin name to the engine version it targets.
var phoenixVersions = map[string]string{
	PhoenixReaderName:  "4",
	Phoenix5ReaderName: "5",
}

type PhoenixConnection struct {
	JdbcURL []string `mapstructure:"jdbcUrl" validate:"required,min=1,dive,startswith=jdbc:phoenix:"`
	Table   []string `mapstructure:"table" validate:"required,min=1,dive,required"`
}

// PhoenixParameters is the parameter block of a Phoenix reader.
type PhoenixParameters struct {
	Username     string                 `mapstructure:"username"`
	Password     string                 `mapstructure:"password"`
	Connection   []PhoenixConnection    `mapstructure:"connection" validate:"required,min=1,dive"`
	Column       []string               `mapstructure:"column"`
	Where        string                 `mapstructure:"where"`
	SplitPk      string                 `mapstructure:"splitPk"`
	FetchSize    int                    `mapstructure:"fetchSize" validate:"gte=0"`
	QueryTimeout int                    `mapstructure:"queryTimeout" validate:"gte=0"`
	HadoopConfig map[string]interface{} `mapstructure:"hadoopConfig"`
}

// PhoenixReader reads a Phoenix table. The same implementation serves every Phoenix version.
type PhoenixReader struct {
	name    string
	version string
	env     Environment
	logger  *zap.Logger

	params   PhoenixParameters
	kerberos bool
}

var validate = validator.New()

// NewPhoenixFactory returns a factory for Phoenix readers targeting the given engine version.
func NewPhoenixFactory(version string) Factory {
	return func(cfg Config, env Environment) (Reader, error) {
		return NewPhoenixReader(cfg, env, version)
	}
}

func NewPhoenixReader(cfg Config, env Environment, version string) (*PhoenixReader, error) {
	params, err := decodePhoenixParameters(cfg.Parameter)
	if err != nil {
		return nil, err
	}
	if params.FetchSize == 0 {
		params.FetchSize = defaultFetchSize
	}
	if env.Parallelism > 1 && params.SplitPk == "" {
		return nil, fmt.Errorf("splitPk must be set when the reader runs with a parallelism of %d", env.Parallelism)
	}

	r := &PhoenixReader{
		name:    strings.ToLower(cfg.Name),
		version: version,
		env:     env,
		logger:  env.logger().With(zap.String("reader", cfg.Name), zap.String("engine_version", version)),
		params:  params,
	}

	if len(params.HadoopConfig) > 0 {
		settings := hbase.Settings(params.HadoopConfig)
		if hbase.IsKerberosEnabled(settings) {
			if err := hbase.RequireKerberosKeys(settings); err != nil {
				return nil, fmt.Errorf("invalid hadoopConfig: %w", err)
			}
			r.kerberos = true
		}
	}

	r.logger.Debug("created phoenix reader",
		zap.String("table", r.table()),
		zap.Bool("kerberos", r.kerberos),
		zap.Int("fetch_size", params.FetchSize))
	return r, nil
}

func decodePhoenixParameters(raw map[string]interface{}) (PhoenixParameters, error) {
	var params PhoenixParameters
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       columnNameHook,
		Result:           &params,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return PhoenixParameters{}, fmt.Errorf("failed to create parameter decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return PhoenixParameters{}, fmt.Errorf("failed to decode phoenix reader parameters: %w", err)
	}
	if err := validate.Struct(params); err != nil {
		return PhoenixParameters{}, fmt.Errorf("invalid phoenix reader parameters: %w", err)
	}
	return params, nil
}

// columnNameHook accepts columns given as objects ({name: id, type: bigint}) besides plain names.
func columnNameHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to.Kind() != reflect.String || from.Kind() != reflect.Map {
		return data, nil
	}
	column, ok := data.(map[string]interface{})
	if !ok {
		return data, nil
	}
	name, ok := column["name"]
	if !ok {
		return nil, fmt.Errorf("column %v has no name", column)
	}
	return fmt.Sprintf("%v", name), nil
}

func (r *PhoenixReader) Name() string {
	return r.name
}

func (r *PhoenixReader) EngineVersion() string {
	return r.version
}

func (r *PhoenixReader) Parameters() PhoenixParameters {
	return r.params
}

// KerberosEnabled reports whether the hadoopConfig of the reader asks for Kerberos.
func (r *PhoenixReader) KerberosEnabled() bool {
	return r.kerberos
}

func (r *PhoenixReader) table() string {
	return r.params.Connection[0].Table[0]
}

func (r *PhoenixReader) columns() string {
	if len(r.params.Column) == 0 || (len(r.params.Column) == 1 && r.params.Column[0] == "*") {
		return "*"
	}
	return strings.Join(r.params.Column, ", ")
}

func (r *PhoenixReader) Query() string {
	query := fmt.Sprintf("SELECT %s FROM %s", r.columns(), r.table())
	if r.params.Where != "" {
		query += " WHERE " + r.params.Where
	}
	return query
}

// SplitQueries partitions the query by splitPk modulo the parallelism. Without splitting it returns Query only.
func (r *PhoenixReader) SplitQueries() []string {
	if r.env.Parallelism <= 1 || r.params.SplitPk == "" {
		return []string{r.Query()}
	}

	queries := make([]string, r.env.Parallelism)
	for i := range queries {
		split := fmt.Sprintf("mod(%s, %d) = %d", r.params.SplitPk, r.env.Parallelism, i)
		if r.params.Where != "" {
			queries[i] = fmt.Sprintf("SELECT %s FROM %s WHERE (%s) AND %s", r.columns(), r.table(), r.params.Where, split)
		} else {
			queries[i] = fmt.Sprintf("SELECT %s FROM %s WHERE %s", r.columns(), r.table(), split)
		}
	}
	return queries
}
