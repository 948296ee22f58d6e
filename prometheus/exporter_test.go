package prometheus

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudhut/hconnect/hbase"
	"github.com/jcmturner/gokrb5/v8/client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticReader struct{}

func (staticReader) Name() string           { return "phoenix5reader" }
func (staticReader) EngineVersion() string  { return "5" }
func (staticReader) Query() string          { return "SELECT * FROM T" }
func (staticReader) SplitQueries() []string { return []string{"SELECT * FROM T"} }

func testConfig() Config {
	var cfg Config
	cfg.SetDefaults()
	return cfg
}

func TestExporter_Collect(t *testing.T) {
	props := hbase.NewProperties(zap.NewNop())
	props.Set(hbase.KeyKrb5Conf, "/etc/krb5.conf")
	logins, err := hbase.NewLoginCache(time.Minute, zap.NewNop(), func(cl *client.Client) error { return nil })
	require.NoError(t, err)
	defer logins.Close()

	e := NewExporter(testConfig(), zap.NewNop(), props, logins)
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(e))

	expected := `
# HELP hconnect_bootstrap_up 1 if the last bootstrap succeeded, otherwise 0.
# TYPE hconnect_bootstrap_up gauge
hconnect_bootstrap_up 0
# HELP hconnect_process_property_writes_total Number of writes to process properties such as the realm config path.
# TYPE hconnect_process_property_writes_total counter
hconnect_process_property_writes_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"hconnect_bootstrap_up", "hconnect_process_property_writes_total"))

	e.SetSession(&hbase.Session{ID: "s-1", Kerberos: true, Principal: "etl@EXAMPLE.COM"}, staticReader{})
	expected = `
# HELP hconnect_bootstrap_up 1 if the last bootstrap succeeded, otherwise 0.
# TYPE hconnect_bootstrap_up gauge
hconnect_bootstrap_up 1
# HELP hconnect_kerberos_enabled 1 if the hbase settings enable Kerberos.
# TYPE hconnect_kerberos_enabled gauge
hconnect_kerberos_enabled 1
# HELP hconnect_bootstrap_session_info Information about the current bootstrap session.
# TYPE hconnect_bootstrap_session_info gauge
hconnect_bootstrap_session_info{engine_version="5",principal="etl@EXAMPLE.COM",reader="phoenix5reader",session_id="s-1"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"hconnect_bootstrap_up", "hconnect_kerberos_enabled", "hconnect_bootstrap_session_info"))

	e.SetBootstrapError(errors.New("keytab missing"))
	expected = `
# HELP hconnect_bootstrap_up 1 if the last bootstrap succeeded, otherwise 0.
# TYPE hconnect_bootstrap_up gauge
hconnect_bootstrap_up 0
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "hconnect_bootstrap_up"))

	count, err := testutil.GatherAndCount(reg, "hconnect_kerberos_logins_total", "hconnect_kerberos_failed_logins_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestConfig_Validate(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.ListenAddress())

	cfg.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = testConfig()
	cfg.Namespace = ""
	assert.Error(t, cfg.Validate())
}
