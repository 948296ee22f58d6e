package logging

import (
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates the process logger, registers its log message counter with reg and installs it as the global
// zap logger, which the hbase helpers log through.
func NewLogger(cfg Config, metricsNamespace string, reg prometheus.Registerer) (*zap.Logger, error) {
	return newLogger(cfg, metricsNamespace, reg, os.Stdout)
}

func newLogger(cfg Config, metricsNamespace string, reg prometheus.Registerer, out io.Writer) (*zap.Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	// Error check isn't required because the input is already validated.
	level := zap.NewAtomicLevel()
	_ = level.UnmarshalText([]byte(cfg.Level))

	var encoder zapcore.Encoder
	if cfg.Encoding == EncodingConsole {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	hook, err := prometheusHook(metricsNamespace, reg)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(out)), level)
	core = zapcore.RegisterHooks(core, hook)
	logger := zap.New(core)
	zap.ReplaceGlobals(logger)

	return logger, nil
}

// prometheusHook counts log messages by level.
func prometheusHook(metricsNamespace string, reg prometheus.Registerer) (func(zapcore.Entry) error, error) {
	messageCounterVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "log_messages_total",
		Help:      "Total number of log messages by log level emitted by hconnect.",
	}, []string{"level"})
	if err := reg.Register(messageCounterVec); err != nil {
		return nil, err
	}

	// Expose 0 for each level on startup
	supportedLevels := []zapcore.Level{
		zapcore.DebugLevel,
		zapcore.InfoLevel,
		zapcore.WarnLevel,
		zapcore.ErrorLevel,
		zapcore.FatalLevel,
		zapcore.PanicLevel,
	}
	for _, level := range supportedLevels {
		messageCounterVec.WithLabelValues(level.String())
	}

	return func(entry zapcore.Entry) error {
		messageCounterVec.WithLabelValues(entry.Level.String()).Inc()
		return nil
	}, nil
}
