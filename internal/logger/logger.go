// Package logger configures the process-wide zerolog logger from CLI options.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is a go-flags option group embedded by command entry points.
type Logger struct {
	Level  string `long:"log-level"  env:"LOG_LEVEL"  description:"Logging level" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"info"`
	Format string `long:"log-format" env:"LOG_FORMAT" description:"Logging format" choice:"text" choice:"json" default:"text"`
}

// Setup applies the selected level and output format to the global logger.
func (l *Logger) Setup() {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if l.Format != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}
}
