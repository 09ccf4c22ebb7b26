package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Help(t *testing.T) {
	var stderr bytes.Buffer
	code := run(context.Background(), []string{"-h"}, &stderr)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stderr.String(), "Build version: N/A")
	assert.Contains(t, stderr.String(), "--influxdb")
}

func TestRun_ConfigurationErrors(t *testing.T) {
	cases := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{name: "port", args: []string{"-p", "0"}, want: "port"},
		{name: "positional", args: []string{"extra"}, want: "unexpected arguments"},
		{name: "interval", env: map[string]string{"DSMR_READ_INTERVAL": "soon"}, want: "DSMR_READ_INTERVAL"},
		{name: "influx url", args: []string{"-i", "true"}, want: "INFLUXDB_URL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			var stderr bytes.Buffer
			code := run(context.Background(), tc.args, &stderr)
			assert.Equal(t, exitConfig, code)
			assert.Contains(t, stderr.String(), tc.want)
		})
	}
}

func TestMain_ExitsWithRunCode(t *testing.T) {
	got := -1
	exit = func(code int) { got = code }
	t.Cleanup(func() { exit = os.Exit })

	old := os.Args
	os.Args = []string{"dsmr-exporter", "--no-such-flag"}
	t.Cleanup(func() { os.Args = old })

	main()
	assert.Equal(t, exitConfig, got)
}

type influxCapture struct {
	mu    sync.Mutex
	lines []string
}

func (c *influxCapture) handler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v2/write" {
		b, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.lines = append(c.lines, strings.Split(strings.TrimSpace(string(b)), "\n")...)
		c.mu.Unlock()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *influxCapture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

// meter serves the reference telegram to every connection, like ser2net.
func meter(t *testing.T) string {
	t.Helper()
	frame, err := os.ReadFile(filepath.Join("..", "..", "internal", "adapters", "source", "p1", "testdata", "telegram_v5.txt"))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_, _ = conn.Write(frame)
			_ = conn.Close()
		}
	}()
	return "tcp://" + ln.Addr().String()
}

func TestRun_EndToEnd(t *testing.T) {
	capture := &influxCapture{}
	influx := httptest.NewServer(http.HandlerFunc(capture.handler))
	defer influx.Close()

	port := freePort(t)
	t.Setenv("DSMR_DEVICE", meter(t))
	t.Setenv("DSMR_READ_INTERVAL", "1")
	t.Setenv("DSMR_LOCATION", "Testville")
	t.Setenv("INFLUXDB_URL", influx.URL)
	t.Setenv("INFLUXDB_ORG_ID", "home")
	dir := t.TempDir()
	t.Setenv("LOG_FILE", filepath.Join(dir, "exporter.log"))
	t.Setenv("DSMR_JOURNAL_FILE", filepath.Join(dir, "cycles.jsonl"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() {
		done <- run(ctx, []string{"-b", "127.0.0.1", "-p", strconv.Itoa(port), "-i", "true"}, io.Discard)
	}()

	url := "http://127.0.0.1:" + strconv.Itoa(port) + "/metrics"
	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
		return strings.Contains(body, "electricity_used_tariff_1 122.976")
	}, 10*time.Second, 50*time.Millisecond)

	assert.Contains(t, body, "current_electricity_usage 3.731")
	assert.Contains(t, body, `dsmr_exporter_cycles_total{outcome="success"}`)
	assert.Contains(t, body, `dsmr_exporter_info{version="dev"} 1`)

	require.Eventually(t, func() bool { return capture.count() > 0 }, 5*time.Second, 50*time.Millisecond)
	capture.mu.Lock()
	first := capture.lines[0]
	capture.mu.Unlock()
	assert.True(t, strings.HasPrefix(first, "dsmr,location=Testville "), first)

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, exitOK, code)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after cancel")
	}

	journal, err := os.ReadFile(filepath.Join(dir, "cycles.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(journal), `"outcome":"success"`)
}
