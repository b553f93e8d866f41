package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// EnvLogFile is the environment variable naming an optional log file. When
// set, logs are written to the file (with rotation) as well as stdout.
const EnvLogFile = `LOG_FILE`

// Name is the name of the application the logger is created for.
type Name string

// Config is the configuration for a logger.
type Config struct {
	// name is the name of the application.
	name Name

	// w is the writer logs are written to.
	w io.Writer
}

// NewConfig creates a new logging configuration for the named application.
func NewConfig(name Name) *Config {
	var w io.Writer = os.Stdout
	if file := os.Getenv(EnvLogFile); file != "" {
		// Rotate the log file so long-running bots do not fill the disk.
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}

	return &Config{
		name: name,
		w:    w,
	}
}

// CommonLogger creates the application logger and installs it as the slog
// default.
func CommonLogger(c *Config) (*slog.Logger, error) {
	l := slog.New(slog.NewJSONHandler(c.w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})).With(slog.String(KeyAppName, string(c.name)))

	slog.SetDefault(l)
	return l, nil
}
