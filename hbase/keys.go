package hbase

// KerberosMarker is the value authorization and authentication carry in Kerberos mode.
const KerberosMarker = "kerberos"

const (
	KeySecurityAuthentication = "hbase.security.authentication"
	KeySecurityAuthorization  = "hbase.security.authorization"
	KeySecurityAuthEnable     = "hbase.security.auth.enable"

	KeyMasterKerberosPrincipal       = "hbase.master.kerberos.principal"
	KeyRegionServerKerberosPrincipal = "hbase.regionserver.kerberos.principal"

	// KeyKerberosRegionServerPrincipal is the settings key users provide the region server principal with. It is
	// copied into both server principal keys of the client configuration.
	KeyKerberosRegionServerPrincipal = "hbase.kerberos.regionserver.principal"
	KeyPrincipal                     = "hbase.principal"
	KeyKeytab                        = "hbase.keytab"

	KeyClientKeytabFile        = "hbase.client.keytab.file"
	KeyClientKerberosPrincipal = "hbase.client.kerberos.principal"

	KeyZookeeperQuorum      = "hbase.zookeeper.quorum"
	KeyZookeeperZnodeParent = "hbase.zookeeper.znode.parent"
	KeyZookeeperClientPort  = "hbase.zookeeper.property.clientPort"
	KeyClientRetries        = "hbase.client.retries.number"

	KeyZookeeperSASLClient = "zookeeper.sasl.client"
	KeyKrb5Conf            = "java.security.krb5.conf"
)

// requiredKerberosKeys is checked in order, the first missing key is reported.
var requiredKerberosKeys = []string{
	KeySecurityAuthentication,
	KeyKerberosRegionServerPrincipal,
	KeyPrincipal,
	KeyKeytab,
	KeyKrb5Conf,
}

// RequiredKerberosKeys returns a copy of the keys that must be set when Kerberos is enabled.
func RequiredKerberosKeys() []string {
	keys := make([]string, len(requiredKerberosKeys))
	copy(keys, requiredKerberosKeys)
	return keys
}
