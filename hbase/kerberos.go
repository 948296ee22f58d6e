package hbase

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// KerberosRequested reports whether authorization or authentication is set to kerberos (case-insensitive) or the
// auth enable flag is set. It does not modify settings.
func KerberosRequested(settings Settings) bool {
	hasAuthorization := strings.EqualFold(KerberosMarker, settings.String(KeySecurityAuthorization))
	hasAuthentication := strings.EqualFold(KerberosMarker, settings.String(KeySecurityAuthentication))
	hasAuthEnable := settings.Bool(KeySecurityAuthEnable)

	return hasAuthorization || hasAuthentication || hasAuthEnable
}

// NormalizeKerberos rewrites the three Kerberos switches in settings to their canonical enabled form.
func NormalizeKerberos(settings Settings) {
	settings[KeySecurityAuthorization] = KerberosMarker
	settings[KeySecurityAuthentication] = KerberosMarker
	settings[KeySecurityAuthEnable] = true
}

// IsKerberosEnabled reports whether settings ask for Kerberos. If they do, settings are normalized in place with
// NormalizeKerberos, so callers must treat this as a mutating call.
func IsKerberosEnabled(settings Settings) bool {
	if !KerberosRequested(settings) {
		return false
	}
	zap.L().Info("enable kerberos for hbase")
	NormalizeKerberos(settings)
	return true
}

// RequireKerberosKeys checks that all keys Kerberos authentication depends on are set. The first missing key in
// RequiredKerberosKeys order is reported.
func RequireKerberosKeys(settings Settings) error {
	for _, key := range requiredKerberosKeys {
		if settings.String(key) == "" {
			return newConfigError(key, "Must provide [%s] when authentication is Kerberos", key)
		}
	}
	return nil
}

// Principal returns the client principal.
func Principal(settings Settings) (string, error) {
	principal := settings.String(KeyPrincipal)
	if principal == "" {
		return "", newConfigError(KeyPrincipal, "%s is not set!", KeyPrincipal)
	}
	return principal, nil
}

// Keytab returns the client keytab path.
func Keytab(settings Settings) (string, error) {
	keytab := settings.String(KeyKeytab)
	if keytab == "" {
		return "", newConfigError(KeyKeytab, "%s is not exist", KeyKeytab)
	}
	return keytab, nil
}

// ApplyServerAuthConfig writes the server side Kerberos settings into conf and publishes the ZooKeeper SASL flag
// and the realm config path to props. conf is left untouched if the region server principal is missing.
func ApplyServerAuthConfig(conf *Configuration, settings Settings, props *Properties) error {
	regionServerPrincipal := settings.String(KeyKerberosRegionServerPrincipal)
	if regionServerPrincipal == "" {
		return newConfigError(KeyKerberosRegionServerPrincipal,
			"Must provide region server Principal when authentication is Kerberos")
	}

	conf.Set(KeyMasterKerberosPrincipal, regionServerPrincipal)
	conf.Set(KeyRegionServerKerberosPrincipal, regionServerPrincipal)
	conf.Set(KeySecurityAuthorization, "true")
	conf.Set(KeySecurityAuthentication, KerberosMarker)

	if saslClient := settings.String(KeyZookeeperSASLClient); saslClient != "" {
		props.Set(KeyZookeeperSASLClient, saslClient)
	}

	_, err := ResolveRealmConfigPath(settings, props)
	return err
}

// ResolveRealmConfigPath resolves the realm config path with RealmConfigPath and stores it in props.
func ResolveRealmConfigPath(settings Settings, props *Properties) (string, error) {
	path, err := RealmConfigPath(settings)
	if err != nil {
		return "", err
	}
	props.Set(KeyKrb5Conf, path)
	return path, nil
}

// RealmConfigPath returns the configured realm config path. A value naming an existing file is returned as is,
// anything else is taken as relative to the working directory. An unset value resolves to "".
func RealmConfigPath(settings Settings) (string, error) {
	value := settings.String(KeyKrb5Conf)
	if value == "" {
		return "", nil
	}

	var path string
	_, err := os.Stat(value)
	switch {
	case err == nil:
		path = value
	case notExisting(err):
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "failed to get working directory")
		}
		path = filepath.Join(wd, value)
	default:
		return "", errors.Wrapf(err, "failed to check %v path '%v'", KeyKrb5Conf, value)
	}

	zap.L().Info("resolved realm config path", zap.String("key", KeyKrb5Conf), zap.String("path", path))
	return path, nil
}

// notExisting reports whether a stat error means that nothing exists at the path. A path running through a regular
// file or a name that is too long can't exist either, other errors such as missing permissions can't be decided.
func notExisting(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) || errors.Is(err, syscall.ENAMETOOLONG)
}

// ZookeeperQuorum returns the configured ZooKeeper hosts.
func ZookeeperQuorum(settings Settings) ([]string, error) {
	raw := settings.String(KeyZookeeperQuorum)
	if err := RequireNonEmpty(raw, KeyZookeeperQuorum); err != nil {
		return nil, err
	}

	var hosts []string
	for _, host := range strings.Split(raw, ",") {
		host = strings.TrimSpace(host)
		if host != "" {
			hosts = append(hosts, host)
		}
	}
	if len(hosts) == 0 {
		return nil, newConfigError(KeyZookeeperQuorum, "%s must be set!", KeyZookeeperQuorum)
	}
	return hosts, nil
}
