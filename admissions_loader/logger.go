package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Package logger. Defaults to stderr; initLogger reconfigures it from the
// CLI flags. Logging is for observability only; no pipeline behavior
// depends on it.
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// initLogger adds an optional log file next to the console output.
func initLogger(logFile string) error {
	if logFile == "" {
		return nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", logFile, err)
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return nil
}
