// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package log builds the logrus logger shared by every stage.
package log

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/papercrawl/pkg/types"
)

// New returns a logger writing to stderr. Format "json" selects the JSON
// formatter; anything else gets the text formatter. An empty level means info.
func New(cfg types.LogConfig) (*logrus.Logger, error) {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(cfg types.LogConfig, w io.Writer) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(w)

	switch cfg.Format {
	case "json":
		l.Formatter = &logrus.JSONFormatter{}
	case "", "text":
		l.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	level := logrus.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
	}
	l.SetLevel(level)
	return l, nil
}

// Discard returns a logger that drops everything. Library callers use it
// when they have no logger to pass.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
