package hbase

import (
	"fmt"

	"github.com/jcmturner/gokrb5/v8/client"
	krbconfig "github.com/jcmturner/gokrb5/v8/config"
	"github.com/jcmturner/gokrb5/v8/keytab"
	"github.com/jcmturner/gokrb5/v8/types"
	"github.com/mitchellh/mapstructure"
)

// KerberosOptions is the typed view of the Kerberos related settings.
type KerberosOptions struct {
	Principal             string `mapstructure:"hbase.principal"`
	Keytab                string `mapstructure:"hbase.keytab"`
	RegionServerPrincipal string `mapstructure:"hbase.kerberos.regionserver.principal"`
	Krb5Conf              string `mapstructure:"java.security.krb5.conf"`
	ZookeeperSASLClient   string `mapstructure:"zookeeper.sasl.client"`

	// DisablePAFXFAST is required for KDCs that do not support FAST, e.g. Active Directory.
	DisablePAFXFAST bool `mapstructure:"hbase.kerberos.disable.pafxfast"`
}

// DecodeKerberosOptions decodes the Kerberos settings. Unrelated settings are ignored.
func DecodeKerberosOptions(settings Settings) (KerberosOptions, error) {
	var opts KerberosOptions
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return KerberosOptions{}, fmt.Errorf("failed to create kerberos options decoder: %w", err)
	}

	// Nested maps can't be decoded into the flat option fields and are never Kerberos settings.
	flat := make(map[string]interface{}, len(settings))
	for k, v := range settings {
		if !isNested(v) {
			flat[k] = v
		}
	}
	if err := decoder.Decode(flat); err != nil {
		return KerberosOptions{}, fmt.Errorf("failed to decode kerberos options: %w", err)
	}

	return opts, nil
}

// NewKerberosClient creates a keytab based Kerberos client for the configured principal. The realm of the
// principal defaults to the default realm of the realm config. The client is not logged in yet.
func NewKerberosClient(settings Settings) (*client.Client, error) {
	opts, err := DecodeKerberosOptions(settings)
	if err != nil {
		return nil, err
	}
	principal, err := Principal(settings)
	if err != nil {
		return nil, err
	}
	keytabPath, err := Keytab(settings)
	if err != nil {
		return nil, err
	}

	krb5ConfPath, err := RealmConfigPath(settings)
	if err != nil {
		return nil, err
	}
	if err := RequireNonEmpty(krb5ConfPath, KeyKrb5Conf); err != nil {
		return nil, err
	}

	krbCfg, err := krbconfig.Load(krb5ConfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load realm config '%v': %w", krb5ConfPath, err)
	}
	kt, err := keytab.Load(keytabPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load keytab '%v': %w", keytabPath, err)
	}

	name, realm := types.ParseSPNString(principal)
	if realm == "" {
		realm = krbCfg.LibDefaults.DefaultRealm
	}
	if realm == "" {
		return nil, newConfigError(KeyPrincipal,
			"%s '%s' has no realm and the realm config has no default realm", KeyPrincipal, principal)
	}

	return client.NewWithKeytab(
		name.PrincipalNameString(),
		realm,
		kt,
		krbCfg,
		client.DisablePAFXFAST(opts.DisablePAFXFAST)), nil
}
