// Package postgres writes meter points to PostgreSQL, optionally backed by
// a TimescaleDB hypertable.
package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/vshulcz/dsmr-exporter/internal/domain"
	"github.com/vshulcz/dsmr-exporter/internal/misc"
	"github.com/vshulcz/dsmr-exporter/internal/ports"
)

const columnsPerPoint = 5

// Sink inserts each batch with one statement.
type Sink struct {
	db  *sql.DB
	log *zap.Logger
}

var _ ports.TimeSeriesSink = (*Sink)(nil)

var retryablePGCodes = map[string]struct{}{
	pgerrcode.ConnectionException:                           {},
	pgerrcode.ConnectionDoesNotExist:                        {},
	pgerrcode.ConnectionFailure:                             {},
	pgerrcode.SQLClientUnableToEstablishSQLConnection:       {},
	pgerrcode.SQLServerRejectedEstablishmentOfSQLConnection: {},
	pgerrcode.TooManyConnections:                            {},
	pgerrcode.AdminShutdown:                                 {},
	pgerrcode.CrashShutdown:                                 {},
	pgerrcode.CannotConnectNow:                              {},
}

// New wraps an open database.
func New(db *sql.DB, log *zap.Logger) *Sink {
	return &Sink{db: db, log: zapOrNop(log).Named("postgres")}
}

// Open connects to dsn and migrates the schema, retrying while the server
// is unreachable.
func Open(ctx context.Context, dsn string, log *zap.Logger) (*Sink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	log = zapOrNop(log)
	op := func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		return Migrate(ctx, db, log)
	}
	notify := func(attempt int, err error, wait time.Duration) {
		log.Warn("postgres not ready, retrying", zap.Int("attempt", attempt), zap.Duration("wait", wait), zap.Error(err))
	}
	if err := misc.Retry(ctx, misc.DefaultBackoff, IsRetryable, op, notify); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db, log), nil
}

// Name implements ports.TimeSeriesSink.
func (s *Sink) Name() string { return "postgres" }

// Write inserts all points in one statement. Failures are returned as is;
// the caller decides whether the batch is lost.
func (s *Sink) Write(ctx context.Context, points []domain.Point) error {
	if len(points) == 0 {
		return nil
	}
	q, args := insertQuery(points)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("postgres: insert %d points: %w", len(points), err)
	}
	s.log.Debug("points written", zap.Int("points", len(points)))
	return nil
}

// Close closes the database handle.
func (s *Sink) Close() error {
	return s.db.Close()
}

func insertQuery(points []domain.Point) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO dsmr_points (time, measurement, location, field, value) VALUES ")
	args := make([]any, 0, len(points)*columnsPerPoint)
	for i, p := range points {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := range columnsPerPoint {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(i*columnsPerPoint + c + 1))
		}
		b.WriteByte(')')
		args = append(args, p.Time, p.Measurement, p.Tags[domain.LocationTag], p.Field, p.Value)
	}
	return b.String(), args
}

// IsRetryable reports whether err is a transient connection failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var pqe *pq.Error
	if errors.As(err, &pqe) {
		code := string(pqe.Code)
		if _, ok := retryablePGCodes[code]; ok {
			return true
		}
		return strings.HasPrefix(code, "08")
	}
	return false
}
