// Package logging builds the process-wide slog logger. Output goes to
// stdout and, when a log file is configured, to that file as well.
package logging

import (
	"io"
	"log/slog"
	"os"
)

type DualLogger struct {
	Logger *slog.Logger
	file   *os.File
}

// New creates a slog logger that logs to both stdout and an append-only file.
// The logfile path is obtained from env TRUTREND_LOGFILE or defaults to
// "./trutrend.log". An empty value ("-") disables file output.
func New() (*DualLogger, error) {
	logPath := os.Getenv("TRUTREND_LOGFILE")
	if logPath == "" {
		logPath = "./trutrend.log"
	}

	writers := []io.Writer{os.Stdout}

	var file *os.File
	if logPath != "-" {
		var err error
		file, err = os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		writers = append(writers, file)
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: level()})

	return &DualLogger{Logger: slog.New(handler), file: file}, nil
}

// Close releases the log file, if one was opened.
func (d *DualLogger) Close() error {
	if d.file == nil {
		return nil
	}
	return d.file.Close()
}

func level() slog.Level {
	switch os.Getenv("TRUTREND_LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
