package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudhut/hconnect/hbase"
	"github.com/cloudhut/hconnect/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFilepath string

	root := &cobra.Command{
		Use:          "hconnect",
		Short:        "Bootstraps HBase and Phoenix connections of a sync job",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configFilepath, "config", "c", "", "path to the YAML job config (defaults to $CONFIG_FILEPATH)")

	root.AddCommand(newCheckCmd(&configFilepath), newServeCmd(&configFilepath))
	return root
}

func newCheckCmd(configFilepath *string) *cobra.Command {
	var login bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the job config and print the resulting hbase client configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, logger, err := setup(*configFilepath, prometheus.NewRegistry(), login)
			if err != nil {
				return err
			}
			defer a.close()

			session, rd, err := a.bootstrap(cmd.Context())
			if err != nil {
				logger.Error("bootstrap failed", zap.Error(err))
				return err
			}

			out := cmd.OutOrStdout()
			conf := session.Configuration.Map()
			for _, key := range session.Configuration.Keys() {
				fmt.Fprintf(out, "%s=%s\n", key, conf[key])
			}
			if rd != nil {
				for _, query := range rd.SplitQueries() {
					fmt.Fprintf(out, "# %s (engine %s): %s\n", rd.Name(), rd.EngineVersion(), query)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&login, "login", false, "log in against the KDC when kerberos is enabled")
	return cmd
}

func newServeCmd(configFilepath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Bootstrap, keep the kerberos login alive and expose metrics until terminated",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			a, logger, err := setup(*configFilepath, registry, true)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// A failed bootstrap is reported through the exporter instead of terminating the process.
			if _, _, err := a.bootstrap(ctx); err != nil {
				logger.Error("bootstrap failed", zap.Error(err))
			}

			// Bootstrap again once per login TTL, so the session always holds a logged in client.
			keepAliveDone := make(chan struct{})
			go func() {
				defer close(keepAliveDone)
				a.keepAlive(ctx, a.cfg.Kerberos.TTL)
			}()
			defer func() {
				stop()
				<-keepAliveDone
			}()

			if !a.cfg.Exporter.Enabled {
				logger.Info("exporter is disabled, waiting for termination")
				<-ctx.Done()
				return nil
			}
			return a.exporter.Serve(ctx, registry)
		},
	}
}

// setup loads the config, creates the process logger and the app.
func setup(configFilepath string, registry *prometheus.Registry, login bool) (*app, *zap.Logger, error) {
	startupLogger, err := zap.NewProduction()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create startup logger: %w", err)
	}

	cfg, err := newConfig(startupLogger, configFilepath)
	if err != nil {
		startupLogger.Error("failed to parse config", zap.Error(err))
		return nil, nil, err
	}

	logger, err := logging.NewLogger(cfg.Logger, cfg.Exporter.Namespace, registry)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger = logger.With(zap.String("job", cfg.Job.Name))

	var loginFunc hbase.LoginFunc
	if login || cfg.Kerberos.Enabled {
		loginFunc = hbase.KDCLogin
	}
	a, err := newApp(cfg, logger, registry, loginFunc)
	if err != nil {
		return nil, nil, err
	}
	return a, logger, nil
}
