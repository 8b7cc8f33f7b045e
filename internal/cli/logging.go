package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/LeJamon/goEscrowd/internal/config"
)

// setupLogging applies the [log] section and the global verbosity flags
// to the standard logrus logger.
func setupLogging(lc config.LogConfig) error {
	level, err := log.ParseLevel(lc.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	switch {
	case debug || verbose:
		level = log.DebugLevel
	case quiet && level > log.WarnLevel:
		level = log.WarnLevel
	}
	log.SetLevel(level)
	log.SetReportCaller(verbose)

	if lc.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	log.SetOutput(logOutput(lc))
	return nil
}

func logOutput(lc config.LogConfig) io.Writer {
	if lc.File == "" {
		return os.Stderr
	}
	file := &lumberjack.Logger{
		Filename:   cfg.ResolvePath(lc.File),
		MaxSize:    lc.MaxSizeMB,
		MaxBackups: lc.MaxBackups,
		MaxAge:     lc.MaxAgeDays,
		Compress:   true,
	}
	if quiet {
		return file
	}
	return io.MultiWriter(os.Stderr, file)
}
