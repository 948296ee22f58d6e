package hbase

import (
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestProperties_SetGet(t *testing.T) {
	props := NewProperties(zap.NewNop())

	_, ok := props.Get(KeyKrb5Conf)
	assert.False(t, ok)

	props.Set(KeyKrb5Conf, "/etc/krb5.conf")
	v, ok := props.Get(KeyKrb5Conf)
	require.True(t, ok)
	assert.Equal(t, "/etc/krb5.conf", v)
	assert.Equal(t, int64(1), props.Writes())
	assert.Equal(t, map[string]string{KeyKrb5Conf: "/etc/krb5.conf"}, props.Items())
}

func TestProperties_WarnsOnOverwrite(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	props := NewProperties(zap.New(core))

	props.Set(KeyKrb5Conf, "/a/krb5.conf")
	props.Set(KeyKrb5Conf, "/a/krb5.conf")
	assert.Equal(t, 0, logs.Len())

	props.Set(KeyKrb5Conf, "/b/krb5.conf")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "/a/krb5.conf", logs.All()[0].ContextMap()["previous"])

	v, _ := props.Get(KeyKrb5Conf)
	assert.Equal(t, "/b/krb5.conf", v)
}

func TestProperties_ConcurrentWriters(t *testing.T) {
	props := NewProperties(zap.NewNop())

	wg := sync.WaitGroup{}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			props.Set(KeyKrb5Conf, "/etc/krb5-"+strconv.Itoa(i)+".conf")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(50), props.Writes())
	_, ok := props.Get(KeyKrb5Conf)
	assert.True(t, ok)
}

func TestProperties_ExportEnv(t *testing.T) {
	t.Setenv("KRB5_CONFIG", "")
	props := NewProperties(zap.NewNop())

	require.NoError(t, props.ExportEnv())
	assert.Equal(t, "", os.Getenv("KRB5_CONFIG"))

	props.Set(KeyKrb5Conf, "/opt/krb5.conf")
	props.Set(KeyZookeeperSASLClient, "true")
	require.NoError(t, props.ExportEnv())
	assert.Equal(t, "/opt/krb5.conf", os.Getenv("KRB5_CONFIG"))
}

func TestDefaultProperties_IsShared(t *testing.T) {
	assert.Same(t, DefaultProperties(), DefaultProperties())
}
