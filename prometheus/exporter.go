package prometheus

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/cloudhut/hconnect/hbase"
	"github.com/cloudhut/hconnect/reader"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Exporter is the Prometheus exporter that implements the prometheus.Collector interface. It reports the state of
// the last bootstrap and of the shared Kerberos login cache.
type Exporter struct {
	cfg        Config
	logger     *zap.Logger
	properties *hbase.Properties
	logins     *hbase.LoginCache

	mu           sync.RWMutex
	session      *hbase.Session
	reader       reader.Reader
	bootstrapErr error

	bootstrapUp       *prometheus.Desc
	kerberosEnabled   *prometheus.Desc
	sessionInfo       *prometheus.Desc
	propertyWrites    *prometheus.Desc
	loginsTotal       *prometheus.Desc
	failedLoginsTotal *prometheus.Desc
}

// NewExporter creates an exporter. logins may be nil if nobody logs in.
func NewExporter(cfg Config, logger *zap.Logger, properties *hbase.Properties, logins *hbase.LoginCache) *Exporter {
	e := &Exporter{cfg: cfg, logger: logger.Named("exporter"), properties: properties, logins: logins}

	e.bootstrapUp = prometheus.NewDesc(
		prometheus.BuildFQName(cfg.Namespace, "bootstrap", "up"),
		"1 if the last bootstrap succeeded, otherwise 0.",
		nil, nil,
	)
	e.kerberosEnabled = prometheus.NewDesc(
		prometheus.BuildFQName(cfg.Namespace, "kerberos", "enabled"),
		"1 if the hbase settings enable Kerberos.",
		nil, nil,
	)
	e.sessionInfo = prometheus.NewDesc(
		prometheus.BuildFQName(cfg.Namespace, "bootstrap", "session_info"),
		"Information about the current bootstrap session.",
		[]string{"session_id", "principal", "reader", "engine_version"}, nil,
	)
	e.propertyWrites = prometheus.NewDesc(
		prometheus.BuildFQName(cfg.Namespace, "process", "property_writes_total"),
		"Number of writes to process properties such as the realm config path.",
		nil, nil,
	)
	e.loginsTotal = prometheus.NewDesc(
		prometheus.BuildFQName(cfg.Namespace, "kerberos", "logins_total"),
		"Number of successful Kerberos logins.",
		nil, nil,
	)
	e.failedLoginsTotal = prometheus.NewDesc(
		prometheus.BuildFQName(cfg.Namespace, "kerberos", "failed_logins_total"),
		"Number of failed Kerberos logins.",
		nil, nil,
	)

	return e
}

// SetSession records a successful bootstrap. rd may be nil if the job has no reader.
func (e *Exporter) SetSession(session *hbase.Session, rd reader.Reader) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = session
	e.reader = rd
	e.bootstrapErr = nil
}

// SetBootstrapError records a failed bootstrap.
func (e *Exporter) SetBootstrapError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bootstrapErr = err
}

// Describe implements the prometheus.Collector interface.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.bootstrapUp
	ch <- e.kerberosEnabled
	ch <- e.sessionInfo
	ch <- e.propertyWrites
	ch <- e.loginsTotal
	ch <- e.failedLoginsTotal
}

func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	e.mu.RLock()
	session, rd, bootstrapErr := e.session, e.reader, e.bootstrapErr
	e.mu.RUnlock()

	up := 0.0
	if session != nil && bootstrapErr == nil {
		up = 1.0
	}
	ch <- prometheus.MustNewConstMetric(e.bootstrapUp, prometheus.GaugeValue, up)

	if session != nil {
		kerberos := 0.0
		if session.Kerberos {
			kerberos = 1.0
		}
		ch <- prometheus.MustNewConstMetric(e.kerberosEnabled, prometheus.GaugeValue, kerberos)

		readerName, engineVersion := "", ""
		if rd != nil {
			readerName, engineVersion = rd.Name(), rd.EngineVersion()
		}
		ch <- prometheus.MustNewConstMetric(e.sessionInfo, prometheus.GaugeValue, 1.0,
			session.ID, session.Principal, readerName, engineVersion)
	}

	ch <- prometheus.MustNewConstMetric(e.propertyWrites, prometheus.CounterValue, float64(e.properties.Writes()))

	if e.logins != nil {
		ch <- prometheus.MustNewConstMetric(e.loginsTotal, prometheus.CounterValue, float64(e.logins.Logins()))
		ch <- prometheus.MustNewConstMetric(e.failedLoginsTotal, prometheus.CounterValue, float64(e.logins.FailedLogins()))
	}
}

// Serve exposes /metrics and /healthz until ctx is done.
func (e *Exporter) Serve(ctx context.Context, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		e.mu.RLock()
		healthy := e.session != nil && e.bootstrapErr == nil
		e.mu.RUnlock()

		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("Status: Bootstrap failed"))
			return
		}
		_, _ = w.Write([]byte("Status: Healthy"))
	})

	srv := &http.Server{Addr: e.cfg.ListenAddress(), Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	e.logger.Info("listening on address", zap.String("listen_address", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
