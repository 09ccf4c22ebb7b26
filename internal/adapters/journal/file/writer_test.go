package file

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vshulcz/dsmr-exporter/internal/domain"
)

func TestWriter_AppendsOneLinePerCycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cycles.jsonl")
	w := New(path)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ok := domain.CycleResult{
		Seq:      1,
		Outcome:  domain.OutcomeSuccess,
		Samples:  []domain.MetricSample{{Name: "current_electricity_usage", Value: 3.731}},
		Dropped:  []error{errors.New("gas reading unparseable")},
		Pushed:   1,
		Started:  start,
		Finished: start.Add(250 * time.Millisecond),
	}
	skipped := domain.CycleResult{
		Seq:      2,
		Outcome:  domain.OutcomeSkipped,
		Reason:   domain.ErrSourceUnavailable,
		Started:  start.Add(time.Minute),
		Finished: start.Add(time.Minute),
	}
	require.NoError(t, w.Notify(context.Background(), ok))
	require.NoError(t, w.Notify(context.Background(), skipped))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		entries = append(entries, e)
	}
	require.Len(t, entries, 2)

	assert.Equal(t, "success", entries[0].Outcome)
	assert.InDelta(t, 3.731, entries[0].Readings["current_electricity_usage"], 1e-9)
	assert.Equal(t, []string{"gas reading unparseable"}, entries[0].Dropped)
	assert.Equal(t, int64(250), entries[0].TookMS)

	assert.Equal(t, "skipped", entries[1].Outcome)
	assert.Equal(t, domain.ErrSourceUnavailable.Error(), entries[1].Reason)
	assert.Nil(t, entries[1].Readings)
}

func TestWriter_EmptyPathIsNoop(t *testing.T) {
	assert.NoError(t, New("").Notify(context.Background(), domain.CycleResult{}))
	var w *Writer
	assert.NoError(t, w.Notify(context.Background(), domain.CycleResult{}))
}

func TestWriter_OpenError(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing", "cycles.jsonl"))
	err := w.Notify(context.Background(), domain.CycleResult{Seq: 7})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journal: open")
}
