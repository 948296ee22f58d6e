package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cloudhut/hconnect/hbase"
	promexporter "github.com/cloudhut/hconnect/prometheus"
	"github.com/cloudhut/hconnect/reader"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// app wires the bootstrap of a single job.
type app struct {
	cfg    Config
	logger *zap.Logger

	properties *hbase.Properties
	logins     *hbase.LoginCache
	exporter   *promexporter.Exporter
	registry   *prometheus.Registry

	// mu guards session, the outcome of the last successful bootstrap
	mu      sync.Mutex
	session *hbase.Session
}

// newApp creates the app. With a non-nil login the principal of the hbase settings logs in during bootstrap.
func newApp(cfg Config, logger *zap.Logger, registry *prometheus.Registry, login hbase.LoginFunc) (*app, error) {
	a := &app{
		cfg:        cfg,
		logger:     logger,
		properties: hbase.DefaultProperties(),
		registry:   registry,
	}

	if login != nil {
		logins, err := hbase.NewLoginCache(cfg.Kerberos.TTL, logger, login)
		if err != nil {
			return nil, fmt.Errorf("failed to create kerberos login cache: %w", err)
		}
		a.logins = logins
	}

	a.exporter = promexporter.NewExporter(cfg.Exporter, logger, a.properties, a.logins)
	if err := registry.Register(a.exporter); err != nil {
		return nil, fmt.Errorf("failed to register exporter: %w", err)
	}

	return a, nil
}

// bootstrap prepares the hbase client configuration and creates the job's reader, if one is configured.
func (a *app) bootstrap(ctx context.Context) (*hbase.Session, reader.Reader, error) {
	session, rd, err := a.doBootstrap(ctx)
	if err != nil {
		a.exporter.SetBootstrapError(err)
		return nil, nil, err
	}
	a.exporter.SetSession(session, rd)
	a.replaceSession(session)
	return session, rd, nil
}

// replaceSession makes session the current one and destroys the Kerberos client of the previous session, unless
// both share the same cached client.
func (a *app) replaceSession(session *hbase.Session) {
	a.mu.Lock()
	prev := a.session
	a.session = session
	a.mu.Unlock()

	if prev != nil && prev.Client != nil && prev.Client != session.Client {
		a.logger.Debug("destroying kerberos client of replaced session", zap.String("session_id", prev.ID))
		prev.Client.Destroy()
	}
}

func (a *app) currentSession() *hbase.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// keepAlive bootstraps again every interval until ctx is done. Once the cached login expired, the next bootstrap
// logs in again and the new session replaces the old one. A failed bootstrap keeps the previous session but is
// reported through the exporter.
func (a *app) keepAlive(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := a.bootstrap(ctx); err != nil {
				a.logger.Error("failed to refresh bootstrap", zap.Error(err))
			}
		}
	}
}

func (a *app) doBootstrap(ctx context.Context) (*hbase.Session, reader.Reader, error) {
	// Normalization writes into the settings, keep the loaded config intact for later bootstraps.
	settings := make(hbase.Settings, len(a.cfg.HBase))
	for k, v := range a.cfg.HBase {
		settings[k] = v
	}

	session, err := hbase.Bootstrap(ctx, settings, hbase.BootstrapOptions{
		Logger:     a.logger.Named("hbase"),
		Properties: a.properties,
		Logins:     a.logins,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap hbase connection: %w", err)
	}

	if session.Kerberos && a.cfg.Kerberos.ExportEnv {
		if err := a.properties.ExportEnv(); err != nil {
			return nil, nil, err
		}
	}

	if a.cfg.Reader.Name == "" {
		return session, nil, nil
	}
	rd, err := reader.DefaultRegistry().New(a.cfg.Reader, reader.Environment{
		JobName:     a.cfg.Job.Name,
		Parallelism: a.cfg.Job.Parallelism,
		Logger:      a.logger.Named("reader"),
	})
	if err != nil {
		return nil, nil, err
	}

	return session, rd, nil
}

func (a *app) close() {
	if a.logins != nil {
		if err := a.logins.Close(); err != nil {
			a.logger.Warn("failed to close kerberos login cache", zap.Error(err))
		}
	}
	// The session may hold a client that was already evicted from the cache.
	if session := a.currentSession(); session != nil && session.Client != nil {
		session.Client.Destroy()
	}
}
