// Package config loads the exporter settings from flags and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/vshulcz/dsmr-exporter/internal/misc"
)

const (
	defaultBind         = "0.0.0.0"
	defaultPort         = 8000
	defaultLocation     = "Adelaide"
	defaultReadInterval = 60 * time.Second
	defaultDevice       = "/dev/ttyUSB0"
	defaultBaudRate     = 115200
	defaultReadTimeout  = 30 * time.Second
	defaultBucket       = "dsmr"
	defaultPushSpacing  = 5 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// Time-series backends.
const (
	BackendInflux   = "influxdb"
	BackendPostgres = "postgres"
)

// InfluxConfig holds the InfluxDB connection settings.
type InfluxConfig struct {
	URL       string
	Username  string
	Password  string
	Org       string
	Bucket    string
	VerifySSL bool
}

// ExporterConfig is the validated runtime configuration of the exporter.
type ExporterConfig struct {
	Bind  string
	Port  int
	Debug bool
	Push  bool

	Location     string
	ReadInterval time.Duration
	Device       string
	BaudRate     int
	Strict       bool
	ReadTimeout  time.Duration

	Backend      string
	Influx       InfluxConfig
	PushSpacing  time.Duration
	DatabaseDSN  string
	WriteTimeout time.Duration

	LogFile     string
	JournalFile string
}

// ListenAddr is the host:port of the metrics endpoint.
func (c ExporterConfig) ListenAddr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// LoadExporterConfig reads flags from args and the rest from the
// environment. Flags -d and -i override DEBUG and push defaults when given.
// pflag.ErrHelp is returned as is for -h.
func LoadExporterConfig(args []string, out io.Writer) (ExporterConfig, error) {
	if out == nil {
		out = io.Discard
	}

	fs := pflag.NewFlagSet("dsmr-exporter", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.SortFlags = false

	var (
		bind   string
		port   int
		debug  boolFlag
		influx boolFlag
	)
	fs.StringVarP(&bind, "bind", "b", defaultBind, "Specify alternate bind address")
	fs.IntVarP(&port, "port", "p", defaultPort, "Specify alternate port")
	fs.VarP(&debug, "debug", "d", "Turns on more verbose logging, showing sensor output and post responses [default: false]")
	fs.VarP(&influx, "influxdb", "i", "Post sensor data to the time-series database [default: false]")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExporterConfig{}, err
		}
		return ExporterConfig{}, &ConfigurationError{Key: "flags", Value: strings.Join(args, " "), Err: err}
	}
	if fs.NArg() > 0 {
		return ExporterConfig{}, &ConfigurationError{Key: "flags", Value: strings.Join(fs.Args(), " "), Err: errors.New("unexpected arguments")}
	}
	if port < 1 || port > 65535 {
		return ExporterConfig{}, &ConfigurationError{Key: "port", Value: strconv.Itoa(port), Err: errors.New("must be within [1, 65535]")}
	}

	cfg := ExporterConfig{
		Bind:     strings.TrimSpace(bind),
		Port:     port,
		Push:     influx.set && influx.value,
		Location: misc.Getenv("DSMR_LOCATION", defaultLocation),
		Device:   misc.Getenv("DSMR_DEVICE", defaultDevice),
		Backend:  strings.ToLower(misc.Getenv("TSDB_BACKEND", BackendInflux)),
		Influx: InfluxConfig{
			URL:      misc.Getenv("INFLUXDB_URL", ""),
			Username: misc.Getenv("INFLUXDB_USERNAME", ""),
			Password: misc.Getenv("INFLUXDB_PASSWORD", ""),
			Org:      misc.Getenv("INFLUXDB_ORG_ID", ""),
			Bucket:   misc.Getenv("INFLUXDB_BUCKET", defaultBucket),
		},
		DatabaseDSN: misc.Getenv("DATABASE_DSN", ""),
		LogFile:     misc.Getenv("LOG_FILE", ""),
		JournalFile: misc.Getenv("DSMR_JOURNAL_FILE", ""),
	}

	var err error
	if cfg.Debug, err = envBool("DEBUG", false); err != nil {
		return ExporterConfig{}, err
	}
	if debug.set {
		cfg.Debug = debug.value
	}
	if cfg.Strict, err = envBool("DSMR_STRICT", false); err != nil {
		return ExporterConfig{}, err
	}
	if cfg.Influx.VerifySSL, err = envBool("INFLUXDB_VERIFY_SSL", true); err != nil {
		return ExporterConfig{}, err
	}
	if cfg.ReadInterval, err = envSeconds("DSMR_READ_INTERVAL", defaultReadInterval, time.Second); err != nil {
		return ExporterConfig{}, err
	}
	if cfg.ReadTimeout, err = envSeconds("DSMR_READ_TIMEOUT", defaultReadTimeout, 0); err != nil {
		return ExporterConfig{}, err
	}
	if cfg.PushSpacing, err = envSeconds("INFLUXDB_TIME_BETWEEN_POSTS", defaultPushSpacing, 0); err != nil {
		return ExporterConfig{}, err
	}
	if cfg.WriteTimeout, err = envSeconds("TSDB_WRITE_TIMEOUT", defaultWriteTimeout, 0); err != nil {
		return ExporterConfig{}, err
	}
	if cfg.BaudRate, err = envInt("DSMR_BAUD_RATE", defaultBaudRate, 300, 4_000_000); err != nil {
		return ExporterConfig{}, err
	}

	if err := cfg.validatePush(); err != nil {
		return ExporterConfig{}, err
	}
	return cfg, nil
}

func (c ExporterConfig) validatePush() error {
	switch c.Backend {
	case BackendInflux, BackendPostgres:
	default:
		return &ConfigurationError{Key: "TSDB_BACKEND", Value: c.Backend, Err: fmt.Errorf("want %s or %s", BackendInflux, BackendPostgres)}
	}
	if !c.Push {
		return nil
	}
	if c.Backend == BackendPostgres {
		if c.DatabaseDSN == "" {
			return &ConfigurationError{Key: "DATABASE_DSN", Err: errors.New("required for the postgres backend")}
		}
		return nil
	}
	if c.Influx.URL == "" {
		return &ConfigurationError{Key: "INFLUXDB_URL", Err: errors.New("required when posting to InfluxDB")}
	}
	if u, err := url.ParseRequestURI(c.Influx.URL); err != nil || u.Host == "" {
		return &ConfigurationError{Key: "INFLUXDB_URL", Value: c.Influx.URL, Err: errors.New("not an absolute URL")}
	}
	return nil
}
