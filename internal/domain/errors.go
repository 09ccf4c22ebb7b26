package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceUnavailable marks a cycle where no telegram could be obtained.
	ErrSourceUnavailable = errors.New("telegram source unavailable")
	// ErrIncompleteTelegram is matched by *IncompleteTelegramError.
	ErrIncompleteTelegram = errors.New("incomplete telegram")
	// ErrUnparseableReading is matched by *UnparseableReadingError.
	ErrUnparseableReading = errors.New("unparseable reading")
	// ErrSinkWrite wraps failures of the time-series sink.
	ErrSinkWrite = errors.New("time-series write failed")
)

// IncompleteTelegramError lists catalog fields absent from a decoded telegram.
type IncompleteTelegramError struct {
	Missing []Field
}

func (e *IncompleteTelegramError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("incomplete telegram: missing %s", strings.Join(names, ", "))
}

func (e *IncompleteTelegramError) Is(target error) bool {
	return target == ErrIncompleteTelegram
}

// UnparseableReadingError reports a reading whose value is not numeric.
type UnparseableReadingError struct {
	Field Field
	Raw   string
	Err   error
}

func (e *UnparseableReadingError) Error() string {
	return fmt.Sprintf("unparseable reading %s=%q: %v", e.Field, e.Raw, e.Err)
}

func (e *UnparseableReadingError) Is(target error) bool {
	return target == ErrUnparseableReading
}

func (e *UnparseableReadingError) Unwrap() error { return e.Err }
