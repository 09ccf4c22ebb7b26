// Package mapper turns decoded telegrams into catalog metric samples.
package mapper

import (
	"strconv"
	"strings"

	"github.com/vshulcz/dsmr-exporter/internal/domain"
)

// Result holds the samples derived from one telegram plus the fields that
// could not contribute one.
type Result struct {
	Samples     []domain.MetricSample
	Missing     []domain.Field
	Unparseable []error
}

// Dropped lists every reason a catalog metric got no sample.
func (r Result) Dropped() []error {
	out := make([]error, 0, len(r.Missing)+len(r.Unparseable))
	if len(r.Missing) > 0 {
		out = append(out, &domain.IncompleteTelegramError{Missing: r.Missing})
	}
	return append(out, r.Unparseable...)
}

// Mapper applies the metric catalog to telegrams.
type Mapper struct {
	strict  bool
	entries []domain.CatalogEntry
}

// New returns a Mapper. In strict mode a telegram missing any Required
// catalog field fails the whole mapping.
func New(strict bool) *Mapper {
	return &Mapper{strict: strict, entries: domain.Catalog()}
}

// Strict reports whether missing required fields abort the mapping.
func (m *Mapper) Strict() bool { return m.strict }

// Map derives one sample per catalog entry present in t, in catalog order.
// Unparseable values never abort the mapping; they are reported in Result.
func (m *Mapper) Map(t domain.Telegram) (Result, error) {
	res := Result{Samples: make([]domain.MetricSample, 0, len(m.entries))}
	for _, e := range m.entries {
		r, ok := t.Get(e.Field)
		if !ok {
			res.Missing = append(res.Missing, e.Field)
			continue
		}
		v, err := parseValue(r.Value)
		if err != nil {
			res.Unparseable = append(res.Unparseable, &domain.UnparseableReadingError{
				Field: e.Field,
				Raw:   r.Value,
				Err:   err,
			})
			continue
		}
		res.Samples = append(res.Samples, domain.MetricSample{Name: e.Name, Field: e.Field, Value: v})
	}
	if m.strict {
		if missing := requiredOnly(m.entries, res.Missing); len(missing) > 0 {
			return res, &domain.IncompleteTelegramError{Missing: missing}
		}
	}
	return res, nil
}

// requiredOnly keeps the missing fields whose catalog entry is Required.
// Phase L2 and L3 readings are absent on single-phase meters.
func requiredOnly(entries []domain.CatalogEntry, missing []domain.Field) []domain.Field {
	if len(missing) == 0 {
		return nil
	}
	required := make(map[domain.Field]bool, len(entries))
	for _, e := range entries {
		if e.Required {
			required[e.Field] = true
		}
	}
	var out []domain.Field
	for _, f := range missing {
		if required[f] {
			out = append(out, f)
		}
	}
	return out
}

func parseValue(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

// PushSamples keeps the samples whose catalog entry is allow-listed for the
// time-series sink.
func PushSamples(samples []domain.MetricSample) []domain.MetricSample {
	out := make([]domain.MetricSample, 0, len(samples))
	for _, s := range samples {
		if e, ok := domain.LookupMetric(s.Name); ok && e.Push {
			out = append(out, s)
		}
	}
	return out
}
