package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/vshulcz/dsmr-exporter/internal/adapters/tsdb/influx"
	"github.com/vshulcz/dsmr-exporter/internal/adapters/tsdb/postgres"
	"github.com/vshulcz/dsmr-exporter/internal/config"
	"github.com/vshulcz/dsmr-exporter/internal/ports"
)

// buildTSDB returns nil when pushing is disabled. An unreachable InfluxDB is
// only logged; the loop reports each failed write on its own.
func buildTSDB(ctx context.Context, cfg config.ExporterConfig, logger *zap.Logger) (ports.TimeSeriesSink, error) {
	if !cfg.Push {
		return nil, nil
	}

	switch cfg.Backend {
	case config.BackendPostgres:
		s, err := postgres.Open(ctx, cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("postgres connected and migrated")
		return s, nil

	default:
		s, err := influx.New(influx.Config{
			URL:       cfg.Influx.URL,
			Username:  cfg.Influx.Username,
			Password:  cfg.Influx.Password,
			Org:       cfg.Influx.Org,
			Bucket:    cfg.Influx.Bucket,
			VerifyTLS: cfg.Influx.VerifySSL,
			Timeout:   cfg.WriteTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		pingCtx := ctx
		if cfg.WriteTimeout > 0 {
			var cancel context.CancelFunc
			pingCtx, cancel = context.WithTimeout(ctx, cfg.WriteTimeout)
			defer cancel()
		}
		if err := s.Ping(pingCtx); err != nil {
			logger.Warn("influxdb not reachable yet", zap.String("url", cfg.Influx.URL), zap.Error(err))
		}
		return s, nil
	}
}
