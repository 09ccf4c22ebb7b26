// Package file keeps a newline-delimited JSON journal of collection cycles.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/vshulcz/dsmr-exporter/internal/domain"
)

// Entry is one journal line.
type Entry struct {
	Seq       uint64             `json:"seq"`
	Outcome   string             `json:"outcome"`
	Reason    string             `json:"reason,omitempty"`
	Readings  map[string]float64 `json:"readings,omitempty"`
	Dropped   []string           `json:"dropped,omitempty"`
	Pushed    int                `json:"pushed"`
	PushError string             `json:"push_error,omitempty"`
	Started   time.Time          `json:"started"`
	TookMS    int64              `json:"took_ms"`
}

// NewEntry flattens a cycle result into its journal form.
func NewEntry(r domain.CycleResult) Entry {
	e := Entry{
		Seq:     r.Seq,
		Outcome: string(r.Outcome),
		Pushed:  r.Pushed,
		Started: r.Started.UTC(),
		TookMS:  r.Duration().Milliseconds(),
	}
	if r.Reason != nil {
		e.Reason = r.Reason.Error()
	}
	if r.PushErr != nil {
		e.PushError = r.PushErr.Error()
	}
	if len(r.Samples) > 0 {
		e.Readings = make(map[string]float64, len(r.Samples))
		for _, s := range r.Samples {
			e.Readings[s.Name] = s.Value
		}
	}
	for _, d := range r.Dropped {
		e.Dropped = append(e.Dropped, d.Error())
	}
	return e
}

// Writer appends cycle results to a file. The file is opened per entry so
// external rotation needs no signal.
type Writer struct {
	path string
	mu   sync.Mutex
}

// New returns a Writer appending to path. An empty path disables it.
func New(path string) *Writer {
	return &Writer{path: path}
}

// Notify implements observer.Observer for domain.CycleResult.
func (w *Writer) Notify(_ context.Context, r domain.CycleResult) (retErr error) {
	if w == nil || w.path == "" {
		return nil
	}

	payload, err := json.Marshal(NewEntry(r))
	if err != nil {
		return fmt.Errorf("journal: marshal cycle %d: %w", r.Seq, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("journal: open: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("journal: close: %w", cerr)
		}
	}()

	if _, err := f.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("journal: write: %w", err)
	}
	return nil
}
