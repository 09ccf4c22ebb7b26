package p1

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// maxFrameSize bounds a telegram; real DSMR 5 frames stay well below 2 KiB.
const maxFrameSize = 16 << 10

// ReadFrame skips input up to the next '/' and returns the frame through the
// end of the checksum line.
func ReadFrame(r *bufio.Reader) ([]byte, error) {
	if err := skipTo(r, '/'); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte('/')
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("p1: reading frame body: %w", unexpected(err))
		}
		buf.WriteByte(b)
		if b == '!' {
			break
		}
		if b == '/' {
			// A new frame started; the previous one was truncated.
			buf.Reset()
			buf.WriteByte('/')
		}
		if buf.Len() > maxFrameSize {
			return nil, fmt.Errorf("%w: frame exceeds %d bytes", ErrMalformed, maxFrameSize)
		}
	}

	trailer, err := r.ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("p1: reading checksum: %w", err)
	}
	buf.Write(trailer)
	return buf.Bytes(), nil
}

func skipTo(r *bufio.Reader, delim byte) error {
	for n := 0; ; n++ {
		b, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("p1: waiting for frame start: %w", err)
		}
		if b == delim {
			return nil
		}
		if n > maxFrameSize {
			return fmt.Errorf("%w: no frame start within %d bytes", ErrMalformed, maxFrameSize)
		}
	}
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
