package gologger

import (
	"fmt"
	"io"
	"strings"

	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	FormatConsole = glog.LoggerTypeConsole
	FormatJSON    = glog.LoggerTypeJSON
	FormatPretty  = glog.LoggerTypePretty
)

// Config selects the bootstrap logger's threshold, encoding and sink.
type Config struct {
	Name   string
	Level  string
	Format string
	Writer io.Writer
}

// New builds the root glog logger for the bootstrap. Unknown levels and
// formats are rejected rather than mapped to info and json.
func New(cfg Config) (*glog.BaseLogger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	options := []glog.Option{glog.WithLevel(level), glog.WithWriter(cfg.Writer)}

	switch format := strings.ToLower(strings.TrimSpace(cfg.Format)); format {
	case "", FormatConsole, "text":
		options = append(options, glog.WithLoggerTypeConsole())
	case FormatJSON:
		options = append(options, glog.WithLoggerTypeJSON())
	case FormatPretty:
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("gologger: unknown log format %q", cfg.Format)
	}
	if name := strings.TrimSpace(cfg.Name); name != "" {
		options = append(options, glog.WithName(name))
	}
	return glog.NewLogger(options...), nil
}

func parseLevel(value string) (string, error) {
	switch level := strings.ToUpper(strings.TrimSpace(value)); level {
	case "":
		return glog.Info, nil
	case "WARNING":
		return glog.Warn, nil
	case glog.Trace, glog.Debug, glog.Info, glog.Warn, glog.Error, glog.Fatal:
		return level, nil
	default:
		return "", fmt.Errorf("gologger: unknown log level %q", value)
	}
}

// ForJob resolves the named bootstrap logger (provider > logger > nop) and
// bridges it to go-job for the queued command runner.
func ForJob(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.Logger, job.Logger) {
	_, resolved := glog.Resolve(name, provider, logger)
	resolved = glog.Ensure(resolved)
	return resolved, job.GoLogger(resolved)
}
