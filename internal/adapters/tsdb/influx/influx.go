// Package influx writes meter points to InfluxDB 2.x or 1.8 with the
// compatibility API.
package influx

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"

	"github.com/vshulcz/dsmr-exporter/internal/domain"
	"github.com/vshulcz/dsmr-exporter/internal/ports"
)

// Config holds connection settings. Username and Password form the
// "username:password" token accepted by InfluxDB 1.8.
type Config struct {
	URL       string
	Username  string
	Password  string
	Org       string
	Bucket    string
	VerifyTLS bool
	Timeout   time.Duration
}

// Sink writes each batch with a single blocking request.
type Sink struct {
	client influxdb2.Client
	writer api.WriteAPIBlocking
	log    *zap.Logger
}

var _ ports.TimeSeriesSink = (*Sink)(nil)

// New creates the client. No request is made until Write or Ping.
func New(cfg Config, log *zap.Logger) (*Sink, error) {
	if cfg.URL == "" {
		return nil, errors.New("influx: url is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	opts := influxdb2.DefaultOptions().
		SetPrecision(time.Second).
		SetTLSConfig(&tls.Config{InsecureSkipVerify: !cfg.VerifyTLS})
	if cfg.Timeout > 0 {
		opts.SetHTTPRequestTimeout(timeoutSeconds(cfg.Timeout))
	}
	client := influxdb2.NewClientWithOptions(cfg.URL, token(cfg.Username, cfg.Password), opts)
	return &Sink{
		client: client,
		writer: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:    log.Named("influx"),
	}, nil
}

func token(user, pass string) string {
	return user + ":" + pass
}

// Name implements ports.TimeSeriesSink.
func (s *Sink) Name() string { return "influxdb" }

// Write sends all points in one request.
func (s *Sink) Write(ctx context.Context, points []domain.Point) error {
	if len(points) == 0 {
		return nil
	}
	if err := s.writer.WritePoint(ctx, ToPoints(points)...); err != nil {
		return fmt.Errorf("influx: write %d points: %w", len(points), err)
	}
	s.log.Debug("points written", zap.Int("points", len(points)))
	return nil
}

// Ping reports whether the server answers.
func (s *Sink) Ping(ctx context.Context) error {
	ok, err := s.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("influx: ping: %w", err)
	}
	if !ok {
		return errors.New("influx: ping: server not ready")
	}
	return nil
}

// Close releases idle connections.
func (s *Sink) Close() error {
	s.client.Close()
	return nil
}

// ToPoints converts domain points to client points.
func ToPoints(points []domain.Point) []*write.Point {
	out := make([]*write.Point, 0, len(points))
	for _, p := range points {
		out = append(out, write.NewPoint(
			p.Measurement,
			p.Tags,
			map[string]any{p.Field: p.Value},
			p.Time,
		))
	}
	return out
}

// timeoutSeconds rounds a positive timeout up to whole seconds; the client
// treats 0 as no timeout.
func timeoutSeconds(d time.Duration) uint {
	if d <= 0 {
		return 0
	}
	return uint((d + time.Second - 1) / time.Second)
}
