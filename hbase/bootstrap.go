package hbase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jcmturner/gokrb5/v8/client"
	"go.uber.org/zap"
)

// BootstrapOptions are the collaborators of Bootstrap.
type BootstrapOptions struct {
	Logger     *zap.Logger
	Properties *Properties

	// Logins performs and caches the Kerberos login. If nil, credentials are validated but nobody logs in.
	Logins *LoginCache
}

// Session is the outcome of a successful Bootstrap.
type Session struct {
	ID            string
	Configuration *Configuration

	Kerberos        bool
	Principal       string
	RealmConfigPath string

	// Client is the logged in Kerberos client. It is nil unless Kerberos is enabled and a LoginCache was given.
	Client *client.Client
}

// Bootstrap prepares everything the HBase client needs to connect: it normalizes settings, builds the client
// configuration and, in Kerberos mode, validates credentials, applies the server auth config and logs in.
func Bootstrap(ctx context.Context, settings Settings, opts BootstrapOptions) (*Session, error) {
	if len(settings) == 0 {
		return nil, newConfigError("hbaseConfig", "hbase settings must not be empty")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Properties == nil {
		opts.Properties = DefaultProperties()
	}

	session := &Session{ID: uuid.NewString()}
	logger := opts.Logger.With(zap.String("session_id", session.ID))

	session.Kerberos = IsKerberosEnabled(settings)
	conf := BuildConfiguration(settings)

	if quorum, err := ZookeeperQuorum(settings); err == nil {
		logger.Debug("using zookeeper quorum", zap.Strings("hosts", quorum))
	} else {
		logger.Warn("no zookeeper quorum configured, the client falls back to localhost")
	}

	if !session.Kerberos {
		session.Configuration = conf
		logger.Info("hbase bootstrap completed without kerberos")
		return session, nil
	}

	if err := RequireKerberosKeys(settings); err != nil {
		return nil, err
	}
	if err := ApplyServerAuthConfig(conf, settings, opts.Properties); err != nil {
		return nil, fmt.Errorf("failed to apply kerberos server config: %w", err)
	}
	principal, err := Principal(settings)
	if err != nil {
		return nil, err
	}
	keytabPath, err := Keytab(settings)
	if err != nil {
		return nil, err
	}
	conf.Set(KeyClientKerberosPrincipal, principal)
	conf.Set(KeyClientKeytabFile, keytabPath)

	// Properties may be shared with other connectors, so the path is resolved from our own settings.
	session.RealmConfigPath, err = RealmConfigPath(settings)
	if err != nil {
		return nil, err
	}
	session.Principal = principal
	session.Configuration = conf

	if opts.Logins != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		session.Client, err = opts.Logins.Client(settings)
		if err != nil {
			return nil, err
		}
	}

	logger.Info("hbase bootstrap completed with kerberos",
		zap.String("principal", principal),
		zap.String("realm_config", session.RealmConfigPath),
		zap.Bool("logged_in", session.Client != nil))

	return session, nil
}
