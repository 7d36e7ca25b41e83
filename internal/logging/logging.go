// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/storyshelf/internal/config"
)

// Init applies the configured level and format to the standard logger.
func Init(cfg config.Log) error {
	return Configure(logrus.StandardLogger(), cfg, os.Stderr)
}

// Configure applies cfg to log, writing to out.
func Configure(log *logrus.Logger, cfg config.Log, out io.Writer) error {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	log.SetLevel(level)
	log.SetOutput(out)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q", cfg.Format)
	}
	return nil
}
