package p1

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vshulcz/dsmr-exporter/internal/domain"
)

var (
	// ErrChecksum means the CRC trailer does not match the frame.
	ErrChecksum = errors.New("p1: checksum mismatch")
	// ErrMalformed means the bytes are not a P1 telegram.
	ErrMalformed = errors.New("p1: malformed telegram")
)

var (
	lineRe  = regexp.MustCompile(`^(\d+-\d+:\d+\.\d+\.\d+)((?:\([^()]*\))+)$`)
	groupRe = regexp.MustCompile(`\(([^()]*)\)`)
)

// Parse decodes one complete frame, from the leading '/' up to and including
// the line holding '!' and the optional CRC. Unknown objects are ignored.
func Parse(frame []byte, receivedAt time.Time) (domain.Telegram, error) {
	start := bytes.IndexByte(frame, '/')
	end := bytes.LastIndexByte(frame, '!')
	if start < 0 || end < start {
		return domain.Telegram{}, ErrMalformed
	}
	if err := verifyChecksum(frame[start:end+1], frame[end+1:]); err != nil {
		return domain.Telegram{}, err
	}

	lines := strings.Split(string(frame[start:end]), "\n")
	header := strings.TrimSpace(lines[0])
	readings := make(map[domain.Field]domain.Reading)
	for _, raw := range lines[1:] {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		spec, ok := v5Objects[m[1]]
		if !ok {
			continue
		}
		var groups []string
		for _, g := range groupRe.FindAllStringSubmatch(m[2], -1) {
			groups = append(groups, g[1])
		}
		r, err := decode(spec.kind, groups)
		if err != nil {
			return domain.Telegram{}, fmt.Errorf("%w: %s: %w", ErrMalformed, m[1], err)
		}
		readings[spec.field] = r
	}
	return domain.NewTelegram(header, receivedAt, readings), nil
}

// verifyChecksum checks the four hex digits following '!'. DSMR 2 and 3
// frames carry none and are accepted as is.
func verifyChecksum(body, trailer []byte) error {
	hex := strings.TrimSpace(string(trailer))
	if hex == "" {
		return nil
	}
	if len(hex) < 4 {
		return fmt.Errorf("%w: short checksum %q", ErrMalformed, hex)
	}
	want, err := strconv.ParseUint(hex[:4], 16, 16)
	if err != nil {
		return fmt.Errorf("%w: checksum %q: %w", ErrMalformed, hex[:4], err)
	}
	if got := crc16(body); uint16(want) != got {
		return fmt.Errorf("%w: got %04X want %04X", ErrChecksum, got, want)
	}
	return nil
}

func decode(kind valueKind, groups []string) (domain.Reading, error) {
	switch kind {
	case kindCosem:
		if len(groups) != 1 {
			return domain.Reading{}, fmt.Errorf("want 1 value, got %d", len(groups))
		}
		v, u := splitUnit(groups[0])
		return domain.Reading{Value: v, Unit: u}, nil

	case kindTimestamp:
		if len(groups) != 1 {
			return domain.Reading{}, fmt.Errorf("want 1 value, got %d", len(groups))
		}
		ts, err := parseTimestamp(groups[0])
		if err != nil {
			return domain.Reading{}, err
		}
		return domain.Reading{Value: ts.Format(time.RFC3339), Timestamp: ts}, nil

	case kindMBus:
		if len(groups) != 2 {
			return domain.Reading{}, fmt.Errorf("want 2 values, got %d", len(groups))
		}
		ts, err := parseTimestamp(groups[0])
		if err != nil {
			return domain.Reading{}, err
		}
		v, u := splitUnit(groups[1])
		return domain.Reading{Value: v, Unit: u, Timestamp: ts}, nil

	case kindFailureLog:
		return decodeFailureLog(groups)
	}
	return domain.Reading{}, fmt.Errorf("unknown value kind %d", kind)
}

// decodeFailureLog reads (count)(buffer type) followed by count pairs of
// (end time)(duration*s). The reading value is the event count.
func decodeFailureLog(groups []string) (domain.Reading, error) {
	if len(groups) < 2 {
		return domain.Reading{}, fmt.Errorf("want at least 2 values, got %d", len(groups))
	}
	n, err := strconv.Atoi(groups[0])
	if err != nil {
		return domain.Reading{}, fmt.Errorf("event count %q: %w", groups[0], err)
	}
	// bound n before 2+2*n can overflow
	if n < 0 || n > (len(groups)-2)/2 || len(groups) != 2+2*n {
		return domain.Reading{}, fmt.Errorf("want %d values for %d events, got %d", 2+2*n, n, len(groups))
	}
	events := make([]domain.PowerFailureEvent, 0, n)
	for i := 2; i < len(groups); i += 2 {
		ended, err := parseTimestamp(groups[i])
		if err != nil {
			return domain.Reading{}, err
		}
		v, _ := splitUnit(groups[i+1])
		secs, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return domain.Reading{}, fmt.Errorf("event duration %q: %w", groups[i+1], err)
		}
		events = append(events, domain.PowerFailureEvent{EndedAt: ended, Duration: time.Duration(secs) * time.Second})
	}
	return domain.Reading{Value: strconv.Itoa(n), Unit: domain.UnitNone, Events: events}, nil
}

func splitUnit(s string) (string, domain.Unit) {
	v, u, ok := strings.Cut(s, "*")
	if !ok {
		return s, domain.UnitNone
	}
	switch strings.ToLower(u) {
	case "kwh":
		return v, domain.UnitKWh
	case "kw":
		return v, domain.UnitKW
	case "v":
		return v, domain.UnitVolt
	case "a":
		return v, domain.UnitAmpere
	case "m3":
		return v, domain.UnitCubicMetre
	case "s":
		return v, domain.UnitSecond
	}
	return v, domain.Unit(u)
}

var (
	winterTime = time.FixedZone("CET", 1*60*60)
	summerTime = time.FixedZone("CEST", 2*60*60)
)

// parseTimestamp reads YYMMDDhhmmssX where X is S for summer and W for
// winter time.
func parseTimestamp(s string) (time.Time, error) {
	if len(s) != 13 {
		return time.Time{}, fmt.Errorf("timestamp %q: want 13 characters", s)
	}
	var loc *time.Location
	switch s[12] {
	case 'S':
		loc = summerTime
	case 'W':
		loc = winterTime
	default:
		return time.Time{}, fmt.Errorf("timestamp %q: unknown season %q", s, s[12])
	}
	t, err := time.ParseInLocation("060102150405", s[:12], loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	return t, nil
}
