package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vshulcz/dsmr-exporter/internal/adapters/collector/host"
	"github.com/vshulcz/dsmr-exporter/internal/adapters/exporter/prom"
	"github.com/vshulcz/dsmr-exporter/internal/adapters/http/ginserver"
	"github.com/vshulcz/dsmr-exporter/internal/adapters/http/ginserver/middlewares"
	journal "github.com/vshulcz/dsmr-exporter/internal/adapters/journal/file"
	"github.com/vshulcz/dsmr-exporter/internal/adapters/source/p1"
	"github.com/vshulcz/dsmr-exporter/internal/config"
	"github.com/vshulcz/dsmr-exporter/internal/domain"
	"github.com/vshulcz/dsmr-exporter/internal/logging"
	"github.com/vshulcz/dsmr-exporter/internal/services/collector"
	"github.com/vshulcz/dsmr-exporter/internal/services/mapper"
	"github.com/vshulcz/dsmr-exporter/pkg/buildinfo"
	"github.com/vshulcz/dsmr-exporter/pkg/observer"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

// run returns the process exit code. Usage and configuration errors go to
// stderr; everything after logger construction goes through the logger.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	build := buildinfo.Info{Version: buildVersion, Date: buildDate, Commit: buildCommit}
	build.Fprint(stderr)

	cfg, err := config.LoadExporterConfig(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "dsmr-exporter: %v\n", err)
		return exitConfig
	}

	logger, err := logging.New(cfg.Debug, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(stderr, "dsmr-exporter: logger: %v\n", err)
		return exitConfig
	}
	defer func() { _ = logger.Sync() }()

	if err := serve(ctx, cfg, build.VersionOr("dev"), logger); err != nil {
		logger.Error("exporter stopped", zap.Error(err))
		return exitFailed
	}
	return exitOK
}

func serve(ctx context.Context, cfg config.ExporterConfig, version string, logger *zap.Logger) error {
	logger.Info("dsmr-exporter starting",
		zap.String("version", version),
		zap.String("listen", cfg.ListenAddr()),
		zap.String("device", cfg.Device),
		zap.String("location", cfg.Location),
		zap.Duration("interval", cfg.ReadInterval),
		zap.Bool("push", cfg.Push),
		zap.String("backend", cfg.Backend),
		zap.Bool("debug", cfg.Debug),
	)
	if info, err := host.Describe(ctx); err == nil {
		logger.Info("host", info.Fields()...)
	} else {
		logger.Debug("host info unavailable", zap.Error(err))
	}

	registry := prom.New(version)
	gatherer, err := prom.NewGatherer(registry, host.NewCollector(logger))
	if err != nil {
		return fmt.Errorf("metrics registry: %w", err)
	}

	tsdb, err := buildTSDB(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("time-series sink: %w", err)
	}
	if tsdb != nil {
		defer func() {
			if err := tsdb.Close(); err != nil {
				logger.Warn("closing time-series sink", zap.Error(err))
			}
		}()
	}

	events := observer.NewSubject[domain.CycleResult](
		observer.ObserverFunc[domain.CycleResult](registry.ObserveCycle),
		cycleLogger(logger.Named("cycle")),
	)
	if cfg.JournalFile != "" {
		events.Attach(journal.New(cfg.JournalFile))
	}
	events.SetErrorHandler(func(err error) {
		logger.Warn("cycle observer failed", zap.Error(err))
	})

	svc, err := collector.New(collector.Deps{
		Source:  p1.NewSource(p1.Config{Device: cfg.Device, BaudRate: cfg.BaudRate}, logger),
		Mapper:  mapper.New(cfg.Strict),
		Metrics: registry,
		TSDB:    tsdb,
		Logger:  logger,
		Events:  events,
	}, collector.Options{
		Interval:     cfg.ReadInterval,
		Location:     cfg.Location,
		PushSpacing:  cfg.PushSpacing,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err != nil {
		return err
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := ginserver.NewRouter(
		ginserver.NewHandler(gatherer, logger),
		logger,
		middlewares.ZapLogger(logger.Named("http")),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ginserver.Serve(gctx, cfg.ListenAddr(), router, logger.Named("http"))
	})
	g.Go(func() error {
		return svc.Run(gctx)
	})
	return g.Wait()
}

// cycleLogger reports each finished cycle at debug level.
func cycleLogger(l *zap.Logger) observer.ObserverFunc[domain.CycleResult] {
	return func(_ context.Context, r domain.CycleResult) error {
		if ce := l.Check(zap.DebugLevel, "cycle finished"); ce != nil {
			fields := []zap.Field{
				zap.Uint64("seq", r.Seq),
				zap.String("outcome", string(r.Outcome)),
				zap.Int("samples", len(r.Samples)),
				zap.Int("dropped", len(r.Dropped)),
				zap.Int("pushed", r.Pushed),
				zap.Duration("took", r.Duration()),
			}
			if r.Reason != nil {
				fields = append(fields, zap.NamedError("reason", r.Reason))
			}
			for _, s := range r.Samples {
				fields = append(fields, zap.Float64(s.Name, s.Value))
			}
			ce.Write(fields...)
		}
		return nil
	}
}
