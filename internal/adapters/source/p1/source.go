// Package p1 reads and decodes DSMR telegrams from a smart meter P1 port.
package p1

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/vshulcz/dsmr-exporter/internal/domain"
	"github.com/vshulcz/dsmr-exporter/internal/ports"
)

const tcpScheme = "tcp://"

// Config selects the transport. Device is a serial device path or
// tcp://host:port for a network bridge such as ser2net.
type Config struct {
	Device   string
	BaudRate int
}

// Opener opens the transport for one read.
type Opener func(ctx context.Context) (io.ReadCloser, error)

// Source reads one telegram per Next call. The transport is opened for each
// read and closed afterwards, so buffered frames never go stale between
// cycles.
type Source struct {
	open Opener
	now  func() time.Time
	log  *zap.Logger
}

var _ ports.TelegramSource = (*Source)(nil)

// NewSource returns a Source for the configured device.
func NewSource(cfg Config, log *zap.Logger) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("p1")
	return NewSourceWithOpener(opener(cfg, log), log)
}

// NewSourceWithOpener builds a Source over a custom transport.
func NewSourceWithOpener(open Opener, log *zap.Logger) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	return &Source{open: open, now: time.Now, log: log}
}

// Next blocks until a full telegram arrives or ctx is done.
func (s *Source) Next(ctx context.Context) (domain.Telegram, error) {
	rc, err := s.open(ctx)
	if err != nil {
		return domain.Telegram{}, err
	}
	var once sync.Once
	closeRC := func() {
		once.Do(func() {
			if cerr := rc.Close(); cerr != nil {
				s.log.Debug("closing transport", zap.Error(cerr))
			}
		})
	}
	stop := context.AfterFunc(ctx, closeRC)
	defer func() {
		stop()
		closeRC()
	}()

	frame, err := ReadFrame(bufio.NewReader(rc))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Telegram{}, fmt.Errorf("p1: read aborted: %w", ctxErr)
		}
		return domain.Telegram{}, err
	}
	s.log.Debug("frame received", zap.Int("bytes", len(frame)))
	return Parse(frame, s.now())
}

func opener(cfg Config, log *zap.Logger) Opener {
	if addr, ok := strings.CutPrefix(cfg.Device, tcpScheme); ok {
		return func(ctx context.Context) (io.ReadCloser, error) {
			var d net.Dialer
			conn, err := d.DialContext(ctx, "tcp", addr)
			if err != nil {
				return nil, fmt.Errorf("p1: dial %s: %w", addr, err)
			}
			return conn, nil
		}
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	return func(context.Context) (io.ReadCloser, error) {
		port, err := serial.Open(cfg.Device, mode)
		if err != nil {
			var perr *serial.PortError
			if errors.As(err, &perr) && perr.Code() == serial.PortNotFound {
				if names, lerr := serial.GetPortsList(); lerr == nil {
					log.Warn("serial device not found", zap.String("device", cfg.Device), zap.Strings("available", names))
				}
			}
			return nil, fmt.Errorf("p1: open %s: %w", cfg.Device, err)
		}
		return port, nil
	}
}
