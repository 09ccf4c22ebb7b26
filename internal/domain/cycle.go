package domain

import "time"

// Outcome classifies how a collection cycle ended.
type Outcome string

const (
	// OutcomeSuccess means the pull sink was updated.
	OutcomeSuccess Outcome = "success"
	// OutcomeSkipped means nothing was published this cycle.
	OutcomeSkipped Outcome = "skipped"
)

// CycleResult is the explicit record of one read-map-publish cycle.
type CycleResult struct {
	Seq      uint64
	Outcome  Outcome
	Reason   error
	Samples  []MetricSample
	Dropped  []error
	Pushed   int
	PushErr  error
	Started  time.Time
	Finished time.Time
}

// Duration is the wall-clock time the cycle took, excluding the sleep.
func (r CycleResult) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}
