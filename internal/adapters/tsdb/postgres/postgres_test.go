package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"

	"github.com/vshulcz/dsmr-exporter/internal/domain"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, *Sink, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	s := New(db, nil)
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
		_ = db.Close()
	}
	return mock, s, cleanup
}

func points() []domain.Point {
	ts := time.Date(2020, 12, 25, 8, 9, 36, 0, time.UTC)
	tags := map[string]string{domain.LocationTag: "TestSite"}
	return []domain.Point{
		{Measurement: "dsmr", Tags: tags, Field: "ELECTRICITY_USED_TARIFF_1", Value: 122.976, Time: ts},
		{Measurement: "dsmr", Tags: tags, Field: "HOURLY_GAS_METER_READING", Value: 134.906, Time: ts},
	}
}

func TestSink_Write(t *testing.T) {
	mock, s, done := newMock(t)
	defer done()

	pts := points()
	q := regexp.QuoteMeta(`INSERT INTO dsmr_points (time, measurement, location, field, value) VALUES ($1, $2, $3, $4, $5), ($6, $7, $8, $9, $10)`)
	mock.ExpectExec(q).
		WithArgs(
			pts[0].Time, "dsmr", "TestSite", "ELECTRICITY_USED_TARIFF_1", 122.976,
			pts[1].Time, "dsmr", "TestSite", "HOURLY_GAS_METER_READING", 134.906,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := s.Write(context.Background(), pts); err != nil {
		t.Fatalf("Write: %v", err)
	}
}

func TestSink_WriteEmpty(t *testing.T) {
	_, s, done := newMock(t)
	defer done()
	if err := s.Write(context.Background(), nil); err != nil {
		t.Fatalf("Write(nil): %v", err)
	}
}

func TestSink_WriteErrorIsNotRetried(t *testing.T) {
	mock, s, done := newMock(t)
	defer done()

	mock.ExpectExec(`INSERT INTO dsmr_points`).
		WillReturnError(&pq.Error{Code: pgerrcode.ConnectionFailure})

	err := s.Write(context.Background(), points())
	if err == nil {
		t.Fatal("expected error")
	}
	var pqe *pq.Error
	if !errors.As(err, &pqe) {
		t.Fatalf("want *pq.Error in chain, got %v", err)
	}
}

func TestSink_NameAndClose(t *testing.T) {
	mock, s, _ := newMock(t)
	if s.Name() != "postgres" {
		t.Fatalf("Name() = %q", s.Name())
	}
	mock.ExpectClose()
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestInsertQuery_Placeholders(t *testing.T) {
	pts := append(points(), points()...)
	q, args := insertQuery(pts)
	if len(args) != 20 {
		t.Fatalf("args = %d, want 20", len(args))
	}
	if !regexp.MustCompile(`\(\$16, \$17, \$18, \$19, \$20\)$`).MatchString(q) {
		t.Fatalf("unexpected query tail: %s", q)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"bad conn", driver.ErrBadConn, true},
		{"net op", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"wrapped net op", fmt.Errorf("ping: %w", &net.OpError{Op: "dial", Err: errors.New("refused")}), true},
		{"cannot connect now", &pq.Error{Code: pgerrcode.CannotConnectNow}, true},
		{"class 08", &pq.Error{Code: "08999"}, true},
		{"unique violation", &pq.Error{Code: pgerrcode.UniqueViolation}, false},
		{"no rows", sql.ErrNoRows, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.want {
				t.Fatalf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
