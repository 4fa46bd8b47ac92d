// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/market-digest/pkg/types"
)

// New returns a logger writing to w (stderr when nil). format is "json" or
// "text"; level is any logrus level name.
func New(level, format string, w io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	if w == nil {
		w = os.Stderr
	}
	log.SetOutput(w)

	switch strings.ToLower(format) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	log.SetLevel(lvl)
	return log, nil
}

// FromConfig is New with the log section of cfg.
func FromConfig(cfg types.LogConfig, w io.Writer) (*logrus.Logger, error) {
	return New(cfg.Level, cfg.Format, w)
}
