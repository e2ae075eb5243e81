// Package logging builds the client logger. The terminal UI owns stdout, so logs go to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/qamarabbas408/booknstay/internal/config"
)

// FileName is the default log file inside the data directory.
const FileName = "booknstay.log"

// New returns a logger configured from cfg and a function that closes its output.
// File "stderr" logs to standard error instead of a file.
func New(cfg config.Log, dataDir string) (*logrus.Logger, func(), error) {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("logging.New: %w", err)
	}
	l.SetLevel(level)

	switch cfg.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	out, closeFn, err := output(cfg.File, dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("logging.New: %w", err)
	}
	l.SetOutput(out)
	return l, closeFn, nil
}

// Discard returns a logger that writes nothing.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func output(file, dataDir string) (io.Writer, func(), error) {
	if file == "stderr" {
		return os.Stderr, func() {}, nil
	}
	if file == "" {
		file = filepath.Join(dataDir, FileName)
	}
	if err := os.MkdirAll(filepath.Dir(file), 0700); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
