package p1

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFrame_RestartsOnNewFrameStart(t *testing.T) {
	t.Parallel()
	in := "0(00.000*kW)\r\n!1234\r\n/A\r\n1-0:1.8.1(1*kWh)\r\n/B\r\n1-0:1.8.1(2*kWh)\r\n!ABCD\r\n/C"
	r := bufio.NewReader(strings.NewReader(in))

	frame, err := ReadFrame(r)
	require.NoError(t, err)
	assert.Equal(t, "/B\r\n1-0:1.8.1(2*kWh)\r\n!ABCD\r\n", string(frame))
}

func TestReadFrame_Truncated(t *testing.T) {
	t.Parallel()
	r := bufio.NewReader(strings.NewReader("/A\r\n1-0:1.8.1(1*kWh)\r\n"))
	_, err := ReadFrame(r)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadFrame_NoChecksumAtEOF(t *testing.T) {
	t.Parallel()
	r := bufio.NewReader(strings.NewReader("/A\r\n1-0:1.8.1(1*kWh)\r\n!"))
	frame, err := ReadFrame(r)
	require.NoError(t, err)
	assert.Equal(t, "/A\r\n1-0:1.8.1(1*kWh)\r\n!", string(frame))
}

func TestReadFrame_Empty(t *testing.T) {
	t.Parallel()
	_, err := ReadFrame(bufio.NewReader(strings.NewReader("")))
	assert.ErrorIs(t, err, io.EOF)
}
