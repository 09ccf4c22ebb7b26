// Package collector runs the read, map and publish cycle of the exporter.
package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vshulcz/dsmr-exporter/internal/domain"
	"github.com/vshulcz/dsmr-exporter/internal/misc"
	"github.com/vshulcz/dsmr-exporter/internal/ports"
	"github.com/vshulcz/dsmr-exporter/internal/services/mapper"
	"github.com/vshulcz/dsmr-exporter/pkg/observer"
)

// Deps are the collaborators of the loop. TSDB may be nil, which disables
// the push sink.
type Deps struct {
	Source  ports.TelegramSource
	Mapper  *mapper.Mapper
	Metrics ports.MetricsSink
	TSDB    ports.TimeSeriesSink
	Clock   misc.Clock
	Logger  *zap.Logger
	Events  observer.Publisher[domain.CycleResult]
}

// Options tune the loop.
type Options struct {
	Interval     time.Duration
	Location     string
	PushSpacing  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Service is the collection loop. It is not safe for concurrent use; one
// goroutine drives it.
type Service struct {
	deps Deps
	opts Options
	log  *zap.Logger

	seq      uint64
	lastPush time.Time
}

// New validates deps and fills defaults.
func New(deps Deps, opts Options) (*Service, error) {
	if deps.Source == nil || deps.Metrics == nil {
		return nil, errors.New("collector: source and metrics sink are required")
	}
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("collector: interval must be positive, got %s", opts.Interval)
	}
	if deps.Mapper == nil {
		deps.Mapper = mapper.New(false)
	}
	if deps.Clock == nil {
		deps.Clock = misc.RealClock()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Service{deps: deps, opts: opts, log: deps.Logger.Named("collector")}, nil
}

// Run performs cycles separated by the configured interval until ctx is
// cancelled. Cycle failures are logged and never stop the loop.
func (s *Service) Run(ctx context.Context) error {
	s.log.Info("collector started",
		zap.Duration("interval", s.opts.Interval),
		zap.Bool("push", s.deps.TSDB != nil),
		zap.Bool("strict", s.deps.Mapper.Strict()),
	)
	for {
		if ctx.Err() != nil {
			s.log.Info("collector stopped", zap.Uint64("cycles", s.seq))
			return nil
		}
		s.RunCycle(ctx)

		select {
		case <-ctx.Done():
			s.log.Info("collector stopped", zap.Uint64("cycles", s.seq))
			return nil
		case <-s.deps.Clock.After(s.opts.Interval):
		}
	}
}

// RunCycle reads one telegram and publishes it to the sinks.
func (s *Service) RunCycle(ctx context.Context) (res domain.CycleResult) {
	s.seq++
	res = domain.CycleResult{Seq: s.seq, Started: s.deps.Clock.Now()}
	defer func() {
		res.Finished = s.deps.Clock.Now()
		if s.deps.Events != nil {
			s.deps.Events.Publish(ctx, res)
		}
	}()

	tg, err := s.read(ctx)
	if err != nil {
		res.Outcome = domain.OutcomeSkipped
		res.Reason = fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
		s.log.Warn("telegram read failed", zap.Uint64("cycle", res.Seq), zap.Error(err))
		return res
	}

	mapped, err := s.deps.Mapper.Map(tg)
	res.Dropped = mapped.Dropped()
	if err != nil {
		res.Outcome = domain.OutcomeSkipped
		res.Reason = err
		s.log.Warn("telegram rejected", zap.Uint64("cycle", res.Seq), zap.Error(err))
		return res
	}
	for _, d := range res.Dropped {
		s.log.Debug("reading dropped", zap.Uint64("cycle", res.Seq), zap.Error(d))
	}

	res.Samples = mapped.Samples
	s.deps.Metrics.Update(mapped.Samples)
	res.Outcome = domain.OutcomeSuccess

	if s.deps.TSDB != nil {
		res.Pushed, res.PushErr = s.push(ctx, mapped.Samples)
		if res.PushErr != nil {
			s.log.Warn("time-series write failed",
				zap.Uint64("cycle", res.Seq),
				zap.String("sink", s.deps.TSDB.Name()),
				zap.Error(res.PushErr),
			)
		}
	}
	return res
}

func (s *Service) read(ctx context.Context) (domain.Telegram, error) {
	if s.opts.ReadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ReadTimeout)
		defer cancel()
	}
	return s.deps.Source.Next(ctx)
}

func (s *Service) push(ctx context.Context, samples []domain.MetricSample) (int, error) {
	now := s.deps.Clock.Now()
	if !s.lastPush.IsZero() && now.Sub(s.lastPush) < s.opts.PushSpacing {
		return 0, nil
	}
	s.lastPush = now

	points := BuildPoints(mapper.PushSamples(samples), s.opts.Location, now)
	if len(points) == 0 {
		return 0, nil
	}
	if s.opts.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.WriteTimeout)
		defer cancel()
	}
	if err := s.deps.TSDB.Write(ctx, points); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrSinkWrite, s.deps.TSDB.Name(), err)
	}
	return len(points), nil
}

// BuildPoints turns samples into push points sharing one timestamp, which is
// truncated to whole seconds.
func BuildPoints(samples []domain.MetricSample, location string, at time.Time) []domain.Point {
	ts := at.UTC().Truncate(time.Second)
	points := make([]domain.Point, 0, len(samples))
	for _, s := range samples {
		points = append(points, domain.Point{
			Measurement: domain.Measurement,
			Tags:        map[string]string{domain.LocationTag: location},
			Field:       string(s.Field),
			Value:       s.Value,
			Time:        ts,
		})
	}
	return points
}
