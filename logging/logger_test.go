package logging

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: Config{Level: "info", Encoding: EncodingJSON}},
		{name: "console debug", cfg: Config{Level: "debug", Encoding: EncodingConsole}},
		{name: "invalid level", cfg: Config{Level: "verbose", Encoding: EncodingJSON}, wantErr: true},
		{name: "invalid encoding", cfg: Config{Level: "info", Encoding: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNewLogger_CountsMessages(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	cfg.Level = "warn"

	reg := prometheus.NewRegistry()
	buf := &bytes.Buffer{}
	logger, err := newLogger(cfg, "hconnect", reg, buf)
	require.NoError(t, err)
	defer zap.ReplaceGlobals(zap.NewNop())

	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept too")

	assert.Contains(t, buf.String(), `"msg":"kept"`)
	assert.NotContains(t, buf.String(), "dropped")

	count, err := testutil.GatherAndCount(reg, "hconnect_log_messages_total")
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	_, err = newLogger(cfg, "hconnect", reg, buf)
	assert.Error(t, err, "registering the counter twice must fail")
}
