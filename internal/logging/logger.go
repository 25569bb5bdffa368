package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Options struct {
	Level        string
	Format       string
	LogstashAddr string
	Output       io.Writer
}

// New builds the process logger. JSON is the default format; when
// LogstashAddr is set every line is also mirrored to Logstash. The returned
// close function releases the Logstash connection and is never nil.
func New(opts Options, service string) (*slog.Logger, func() error, error) {
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	closeFn := func() error { return nil }
	if strings.TrimSpace(opts.LogstashAddr) != "" {
		shipper, err := NewLogstashWriter(opts.LogstashAddr)
		if err != nil {
			return nil, nil, err
		}
		output = io.MultiWriter(output, shipper)
		closeFn = shipper.Close
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "text":
		handler = slog.NewTextHandler(output, handlerOpts)
	default:
		handler = slog.NewJSONHandler(output, handlerOpts)
	}
	if service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", service)})
	}
	return slog.New(handler), closeFn, nil
}

// ParseLevel maps debug, warn and error to their slog levels; anything else
// is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
