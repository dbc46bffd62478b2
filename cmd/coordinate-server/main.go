// Command coordinate-server serves coordinate conversion, MGRS and satellite
// tracking over gRPC with a Prometheus /metrics endpoint alongside.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/coordinate-engine/internal/config"
	"github.com/signalsfoundry/coordinate-engine/internal/logging"
	"github.com/signalsfoundry/coordinate-engine/internal/nbi"
	"github.com/signalsfoundry/coordinate-engine/internal/observability"
	"github.com/signalsfoundry/coordinate-engine/kb"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logging.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		log.Error(ctx, "failed to listen for gRPC", logging.String("addr", cfg.Server.GRPCAddr), logging.Err(err))
		os.Exit(1)
	}
	if err := run(ctx, cfg, log, lis); err != nil {
		log.Error(ctx, "coordinate server failed", logging.Err(err))
		os.Exit(1)
	}
}

// parseFlags loads the config file and lets flags override it.
func parseFlags(args []string) (config.Config, error) {
	fs := flag.NewFlagSet("coordinate-server", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	grpcAddr := fs.String("grpc-addr", "", "TCP address the gRPC server listens on")
	metricsAddr := fs.String("metrics-addr", "", "HTTP address for Prometheus /metrics")
	sitesDB := fs.String("sites-db", "", "SQLite file persisting the site catalog")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return config.Config{}, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "grpc-addr":
			cfg.Server.GRPCAddr = *grpcAddr
		case "metrics-addr":
			cfg.Metrics.Addr = *metricsAddr
		case "sites-db":
			cfg.Sites.DB = *sitesDB
		}
	})
	return cfg, cfg.Validate()
}

// run serves on lis until ctx is cancelled.
func run(ctx context.Context, cfg config.Config, log logging.Logger, lis net.Listener) error {
	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	reg := prometheus.NewRegistry()
	conversions, err := observability.NewConversionCollector(reg)
	if err != nil {
		return fmt.Errorf("conversion metrics: %w", err)
	}
	tracks, err := observability.NewTrackCollector(reg)
	if err != nil {
		return fmt.Errorf("track metrics: %w", err)
	}

	catalog, closeStore, err := openCatalog(ctx, cfg.Sites, conversions, log)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := nbi.NewCoordinateService(catalog,
		nbi.WithMetrics(conversions),
		nbi.WithTrackMetrics(tracks),
		nbi.WithLogger(log),
		nbi.WithMaxBatch(cfg.Server.MaxBatch),
	)
	server, health := nbi.NewServer(svc, log, conversions)

	metricsSrv := serveMetrics(cfg.Metrics.Addr, reg, log)

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting coordinate gRPC server", logging.String("addr", lis.Addr().String()))
		serveErr <- server.Serve(lis)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	}

	log.Info(context.Background(), "shutting down coordinate server")
	health.Shutdown()
	server.GracefulStop()

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return nil
}

// openCatalog seeds the catalog from the config and, when a database is
// configured, loads it and mirrors later changes back.
func openCatalog(ctx context.Context, cfg config.SitesConfig, metrics kb.SiteMetricsRecorder, log logging.Logger) (*kb.Catalog, func(), error) {
	catalog := kb.NewCatalog(kb.WithMetrics(metrics))
	for _, site := range cfg.Seed {
		if _, err := catalog.PutSite(site); err != nil {
			return nil, nil, fmt.Errorf("seed site %q: %w", site.ID, err)
		}
	}
	if cfg.DB == "" {
		return catalog, func() {}, nil
	}

	store, err := kb.OpenSQLiteStore(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	n, err := store.LoadInto(ctx, catalog)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("load sites from %s: %w", cfg.DB, err)
	}
	for _, seed := range cfg.Seed {
		site, err := catalog.GetSite(seed.ID)
		if err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		if err := store.Save(ctx, site); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("persist seed site %q: %w", site.ID, err)
		}
	}
	detach := store.Attach(catalog, log)
	log.Info(ctx, "loaded site catalog",
		logging.String("db", cfg.DB),
		logging.Int("stored", n),
		logging.Int("total", catalog.Len()),
	)
	return catalog, func() {
		detach()
		if err := store.Close(); err != nil {
			log.Warn(context.Background(), "closing site store", logging.Err(err))
		}
	}, nil
}

func serveMetrics(addr string, gatherer prometheus.Gatherer, log logging.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
