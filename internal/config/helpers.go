package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/vshulcz/dsmr-exporter/internal/misc"
)

// boolFlag is a flag that takes an explicit boolean argument such as
// "-d yes". It records whether it was set.
type boolFlag struct {
	value bool
	set   bool
}

func (b *boolFlag) String() string { return strconv.FormatBool(b.value) }

func (b *boolFlag) Set(s string) error {
	v, err := misc.ParseBool(s)
	if err != nil {
		return err
	}
	b.value, b.set = v, true
	return nil
}

func (b *boolFlag) Type() string { return "BOOL" }

func envBool(key string, def bool) (bool, error) {
	raw, ok := misc.LookupEnv(key)
	if !ok {
		return def, nil
	}
	v, err := misc.ParseBool(raw)
	if err != nil {
		return false, &ConfigurationError{Key: key, Value: raw, Err: err}
	}
	return v, nil
}

func envInt(key string, def, lo, hi int) (int, error) {
	raw, ok := misc.LookupEnv(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ConfigurationError{Key: key, Value: raw, Err: errors.New("not an integer")}
	}
	if n < lo || n > hi {
		return 0, &ConfigurationError{Key: key, Value: raw, Err: fmt.Errorf("must be within [%d, %d]", lo, hi)}
	}
	return n, nil
}

// envSeconds reads whole seconds or a Go duration; the result must be at
// least lo.
func envSeconds(key string, def, lo time.Duration) (time.Duration, error) {
	raw, ok := misc.LookupEnv(key)
	if !ok {
		return def, nil
	}
	d, err := misc.ParseSeconds(raw)
	if err != nil {
		return 0, &ConfigurationError{Key: key, Value: raw, Err: err}
	}
	if d < lo {
		return 0, &ConfigurationError{Key: key, Value: raw, Err: fmt.Errorf("must be at least %s", lo)}
	}
	return d, nil
}
