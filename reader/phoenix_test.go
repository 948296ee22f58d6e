package reader

import (
	"testing"

	"github.com/cloudhut/hconnect/hbase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func minimalParameters() map[string]interface{} {
	return map[string]interface{}{
		"connection": []interface{}{
			map[string]interface{}{
				"jdbcUrl": []interface{}{"jdbc:phoenix:zk1,zk2:2181:/hbase"},
				"table":   []interface{}{"ORDERS"},
			},
		},
	}
}

func TestNewPhoenixReader(t *testing.T) {
	params := minimalParameters()
	params["username"] = "etl"
	params["column"] = []interface{}{"ID", map[string]interface{}{"name": "AMOUNT", "type": "decimal"}}
	params["where"] = "ID > 100"
	params["fetchSize"] = "500"

	rd, err := NewPhoenixReader(Config{Name: Phoenix5ReaderName, Parameter: params}, Environment{Logger: zap.NewNop()}, "5")
	require.NoError(t, err)

	assert.Equal(t, Phoenix5ReaderName, rd.Name())
	assert.Equal(t, "5", rd.EngineVersion())
	assert.Equal(t, []string{"ID", "AMOUNT"}, rd.Parameters().Column)
	assert.Equal(t, 500, rd.Parameters().FetchSize)
	assert.Equal(t, "SELECT ID, AMOUNT FROM ORDERS WHERE ID > 100", rd.Query())
	assert.Equal(t, []string{rd.Query()}, rd.SplitQueries())
	assert.False(t, rd.KerberosEnabled())
}

func TestNewPhoenixReader_Defaults(t *testing.T) {
	rd, err := NewPhoenixReader(Config{Name: PhoenixReaderName, Parameter: minimalParameters()}, Environment{}, "4")
	require.NoError(t, err)

	assert.Equal(t, defaultFetchSize, rd.Parameters().FetchSize)
	assert.Equal(t, "SELECT * FROM ORDERS", rd.Query())
}

func TestNewPhoenixReader_InvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p map[string]interface{})
	}{
		{name: "no connection", modify: func(p map[string]interface{}) { delete(p, "connection") }},
		{name: "wrong jdbc url", modify: func(p map[string]interface{}) {
			p["connection"] = []interface{}{map[string]interface{}{
				"jdbcUrl": []interface{}{"jdbc:mysql://localhost/db"},
				"table":   []interface{}{"ORDERS"},
			}}
		}},
		{name: "no table", modify: func(p map[string]interface{}) {
			p["connection"] = []interface{}{map[string]interface{}{
				"jdbcUrl": []interface{}{"jdbc:phoenix:zk1"},
			}}
		}},
		{name: "negative fetch size", modify: func(p map[string]interface{}) { p["fetchSize"] = -1 }},
		{name: "unknown parameter", modify: func(p map[string]interface{}) { p["splitKey"] = "ID" }},
		{name: "column without name", modify: func(p map[string]interface{}) {
			p["column"] = []interface{}{map[string]interface{}{"type": "int"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := minimalParameters()
			tt.modify(params)

			_, err := NewPhoenixReader(Config{Name: PhoenixReaderName, Parameter: params}, Environment{}, "4")
			assert.Error(t, err)
		})
	}
}

func TestPhoenixReader_SplitQueries(t *testing.T) {
	params := minimalParameters()
	params["splitPk"] = "ID"
	params["where"] = "STATUS = 'PAID'"

	rd, err := NewPhoenixReader(Config{Name: PhoenixReaderName, Parameter: params}, Environment{Parallelism: 3}, "4")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"SELECT * FROM ORDERS WHERE (STATUS = 'PAID') AND mod(ID, 3) = 0",
		"SELECT * FROM ORDERS WHERE (STATUS = 'PAID') AND mod(ID, 3) = 1",
		"SELECT * FROM ORDERS WHERE (STATUS = 'PAID') AND mod(ID, 3) = 2",
	}, rd.SplitQueries())
}

func TestPhoenixReader_ParallelismNeedsSplitPk(t *testing.T) {
	_, err := NewPhoenixReader(Config{Name: PhoenixReaderName, Parameter: minimalParameters()}, Environment{Parallelism: 2}, "4")
	assert.ErrorContains(t, err, "splitPk")
}

func TestPhoenixReader_KerberosHadoopConfig(t *testing.T) {
	params := minimalParameters()
	params["hadoopConfig"] = map[string]interface{}{
		hbase.KeySecurityAuthEnable: true,
		hbase.KeyPrincipal:          "etl@EXAMPLE.COM",
	}

	_, err := NewPhoenixReader(Config{Name: PhoenixReaderName, Parameter: params}, Environment{}, "4")
	require.ErrorIs(t, err, hbase.ErrMissingKey)

	params = minimalParameters()
	params["hadoopConfig"] = map[string]interface{}{
		hbase.KeySecurityAuthentication:        "kerberos",
		hbase.KeyKerberosRegionServerPrincipal: "hbase/_HOST@EXAMPLE.COM",
		hbase.KeyPrincipal:                     "etl@EXAMPLE.COM",
		hbase.KeyKeytab:                        "/etc/etl.keytab",
		hbase.KeyKrb5Conf:                      "/etc/krb5.conf",
	}
	rd, err := NewPhoenixReader(Config{Name: PhoenixReaderName, Parameter: params}, Environment{}, "4")
	require.NoError(t, err)
	assert.True(t, rd.KerberosEnabled())
	assert.Equal(t, hbase.KerberosMarker, rd.Parameters().HadoopConfig[hbase.KeySecurityAuthorization])
}
