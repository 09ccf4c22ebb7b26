package ports

import (
	"context"

	"github.com/vshulcz/dsmr-exporter/internal/domain"
)

// MetricsSink holds the latest value of every catalog metric for scraping.
// Update applies samples as one batch.
type MetricsSink interface {
	Update(samples []domain.MetricSample)
}

// TimeSeriesSink writes a batch of points in a single synchronous call.
type TimeSeriesSink interface {
	Name() string
	Write(ctx context.Context, points []domain.Point) error
	Close() error
}
