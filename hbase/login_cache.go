package hbase

import (
	"fmt"
	"time"

	"github.com/jcmturner/gokrb5/v8/client"
	"github.com/jellydator/ttlcache/v2"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// LoginFunc obtains a TGT for a freshly created client.
type LoginFunc func(cl *client.Client) error

// KDCLogin logs the client in against the KDC of its realm.
func KDCLogin(cl *client.Client) error {
	return cl.Login()
}

// LoginCache shares logged in Kerberos clients between connectors of the same process. Clients are keyed by
// principal and keytab. Once their TTL expires they are evicted, so that the next connector logs in again.
//
// Evicted clients are not destroyed, whoever received them may still be using them and owns them from then on.
// Close destroys the clients that are still cached.
type LoginCache struct {
	logger *zap.Logger
	login  LoginFunc

	cache *ttlcache.Cache

	// loginGroup deduplicates concurrent logins for the same principal
	loginGroup *singleflight.Group

	logins *atomic.Int64
	failed *atomic.Int64
}

// NewLoginCache creates a cache that keeps clients for ttl. A nil login uses KDCLogin.
func NewLoginCache(ttl time.Duration, logger *zap.Logger, login LoginFunc) (*LoginCache, error) {
	if login == nil {
		login = KDCLogin
	}

	c := &LoginCache{
		logger:     logger.Named("login_cache"),
		login:      login,
		cache:      ttlcache.NewCache(),
		loginGroup: &singleflight.Group{},
		logins:     atomic.NewInt64(0),
		failed:     atomic.NewInt64(0),
	}
	if err := c.cache.SetTTL(ttl); err != nil {
		return nil, fmt.Errorf("failed to set login cache ttl: %w", err)
	}
	c.cache.SkipTTLExtensionOnHit(true)
	c.cache.SetExpirationCallback(func(key string, value interface{}) {
		c.logger.Debug("kerberos login expired, evicted client from cache", zap.String("key", key))
	})

	return c, nil
}

// Client returns a logged in client for the principal and keytab in settings.
func (c *LoginCache) Client(settings Settings) (*client.Client, error) {
	principal, err := Principal(settings)
	if err != nil {
		return nil, err
	}
	keytabPath, err := Keytab(settings)
	if err != nil {
		return nil, err
	}
	key := principal + "|" + keytabPath

	cached, err := c.cache.Get(key)
	if err == nil {
		return cached.(*client.Client), nil
	}
	if !errors.Is(err, ttlcache.ErrNotFound) {
		return nil, errors.Wrap(err, "failed to read login cache")
	}

	res, err, _ := c.loginGroup.Do(key, func() (interface{}, error) {
		cl, err := NewKerberosClient(settings)
		if err != nil {
			return nil, err
		}
		if err := c.login(cl); err != nil {
			c.failed.Inc()
			return nil, fmt.Errorf("kerberos login of principal '%v' failed: %w", principal, err)
		}
		c.logins.Inc()
		c.logger.Info("kerberos login succeeded", zap.String("principal", principal))

		if err := c.cache.Set(key, cl); err != nil {
			cl.Destroy()
			return nil, errors.Wrap(err, "failed to store kerberos client")
		}
		return cl, nil
	})
	if err != nil {
		return nil, err
	}

	return res.(*client.Client), nil
}

// Logins returns the number of successful logins.
func (c *LoginCache) Logins() int64 {
	return c.logins.Load()
}

// FailedLogins returns the number of failed logins.
func (c *LoginCache) FailedLogins() int64 {
	return c.failed.Load()
}

// Close destroys all cached clients.
func (c *LoginCache) Close() error {
	for _, v := range c.cache.GetItems() {
		v.(*client.Client).Destroy()
	}
	return c.cache.Close()
}
