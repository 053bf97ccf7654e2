package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/observable/internal/config"
	"github.com/vango-dev/observable/internal/feed"
	"github.com/vango-dev/observable/pkg/entry"
	"github.com/vango-dev/observable/pkg/observable"
	"github.com/vango-dev/observable/pkg/telemetry"
)

type serveOptions struct {
	configPath string
	port       int
	host       string
	logLevel   string
	logFormat  string
	noMetrics  bool
	trace      bool
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live collection over HTTP",
		Long: `Serve an entry collection over HTTP with a WebSocket event stream.

Settings come from observable.json in the working directory (or --config)
and may be overridden with flags. Every mutation made through the API is
pushed to connected /events clients.

Examples:
  observable serve
  observable serve --port=9090 --log-level=debug
  observable serve --config=./deploy/observable.json --trace`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default ./observable.json)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", -1, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&opts.host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "", "Log format: text or json")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "Disable Prometheus metrics")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Trace notifications and log the spans")

	return cmd
}

// loadServeConfig reads the config file and applies flag overrides.
func loadServeConfig(opts serveOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return nil, err
	}

	if opts.port >= 0 {
		cfg.Server.Port = opts.port
	}
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	if opts.noMetrics {
		cfg.Metrics.Enabled = false
	}
	if opts.trace {
		cfg.Tracing.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(ctx context.Context, out, logOut io.Writer, opts serveOptions) error {
	cfg, err := loadServeConfig(opts)
	if err != nil {
		return err
	}

	logger := newLogger(logOut, cfg.Log.Level, cfg.Log.Format)

	seed := make([]*entry.Entry, 0, len(cfg.Seed))
	for _, r := range cfg.Seed {
		seed = append(seed, entry.FromRecord(r))
	}
	entries := observable.From(seed,
		observable.WithID(cfg.Name),
		observable.WithLogger(logger))

	hubConfig := feed.HubConfig{
		SendBuffer: cfg.Server.SendBuffer,
		Logger:     logger,
	}
	serverConfig := feed.ServerConfig{
		Address:         cfg.Address(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Std(),
		WriteTimeout:    cfg.Server.WriteTimeout.Std(),
		PingInterval:    cfg.Server.PingInterval.Std(),
		MaxClients:      cfg.Server.MaxClients,
		MutationRate:    cfg.Server.MutationRate,
		MutationBurst:   cfg.Server.MutationBurst,
		Logger:          logger,
	}

	// Listeners are attached before the hub starts, while this goroutine
	// still owns the collection.
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := telemetry.NewMetrics(
			telemetry.WithRegistry(reg),
			telemetry.WithNamespace(cfg.Metrics.Namespace),
		)
		telemetry.Instrument(entries, metrics)

		hubConfig.Registerer = reg
		serverConfig.Gatherer = reg
	}

	if cfg.Tracing.Enabled {
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(newSpanLogger(logger)),
		)
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Warn("tracer shutdown failed", "error", err)
			}
		}()

		telemetry.Trace(ctx, entries,
			telemetry.WithTracerProvider(tp),
			telemetry.WithTracerName(cfg.Tracing.TracerName),
			telemetry.WithAttributeExtractor(entryAttributes),
		)
	}

	hub := feed.NewHub(entries, hubConfig)
	server := feed.NewServer(hub, serverConfig)

	printBanner(out)
	success(out, "Serving %q with %d entries", cfg.Name, entries.Len())
	info(out, "API:    http://%s/entries", cfg.Address())
	info(out, "Events: ws://%s/events", cfg.Address())
	if cfg.Metrics.Enabled {
		info(out, "Metrics: http://%s/metrics", cfg.Address())
	} else {
		warn(out, "Metrics disabled")
	}

	// A server that fails to start cancels ctx, which stops the hub.
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		return server.Run(ctx)
	})
	return g.Wait()
}

// entryAttributes describes an entry on notification spans.
func entryAttributes(item any) []attribute.KeyValue {
	e, ok := item.(*entry.Entry)
	if !ok {
		return nil
	}
	return []attribute.KeyValue{
		attribute.Int("entry.id", e.ID()),
		attribute.String("entry.name", e.Name()),
		attribute.Bool("entry.done", e.Done()),
	}
}
