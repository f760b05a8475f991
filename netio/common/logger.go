package common

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/lni/dragonboat/v4/logger"
)

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboats logger.ILogger)
// --------------------------------------------------------------------------

// tcpIOLogger implements the ILogger interface. Messages below the
// configured level are dropped before formatting.
type tcpIOLogger struct {
	name  string
	level logger.LogLevel
	out   *log.Logger
}

func (l *tcpIOLogger) SetLevel(level logger.LogLevel) {
	l.level = level
}

func (l *tcpIOLogger) Debugf(format string, args ...interface{}) {
	if l.level < logger.DEBUG {
		return
	}
	l.write("DEBUG", format, args...)
}

func (l *tcpIOLogger) Infof(format string, args ...interface{}) {
	if l.level < logger.INFO {
		return
	}
	l.write("INFO", format, args...)
}

func (l *tcpIOLogger) Warningf(format string, args ...interface{}) {
	if l.level < logger.WARNING {
		return
	}
	l.write("WARN", format, args...)
}

func (l *tcpIOLogger) Errorf(format string, args ...interface{}) {
	if l.level < logger.ERROR {
		return
	}
	l.write("ERROR", format, args...)
}

func (l *tcpIOLogger) Panicf(format string, args ...interface{}) {
	if l.level < logger.CRITICAL {
		return
	}
	panic(fmt.Sprintf(format, args...))
}

// write emits one line: level tag, logger name, message
func (l *tcpIOLogger) write(level string, format string, args ...interface{}) {
	l.out.Printf("%-5s | %-15s | %s", level, l.name, fmt.Sprintf(format, args...))
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// CreateLogger creates a named logger writing to stdout with date and time
// prefixes. New loggers start at INFO until InitLoggers sets their level.
func CreateLogger(pkgName string) logger.ILogger {
	return &tcpIOLogger{
		name:  pkgName,
		level: logger.INFO,
		out:   log.New(os.Stdout, "", log.Ldate|log.Ltime),
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// parseLogLevel converts a string level to logger.LogLevel
func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG
	case "info":
		return logger.INFO
	case "warning", "warn":
		return logger.WARNING
	case "error":
		return logger.ERROR
	default:
		panic(fmt.Sprintf("invalid log level: %s. must be one of debug, info, warn, error", level))
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// InitLoggers initializes all loggers of this library with the custom format
// and the given level
func InitLoggers(logLevel string) {
	// Set as the global logger factory
	logger.SetLoggerFactory(CreateLogger)

	// configure the library loggers
	logger.GetLogger("netio").SetLevel(parseLogLevel(logLevel))
	logger.GetLogger("netio/transport").SetLevel(parseLogLevel(logLevel))
	logger.GetLogger("clocksync").SetLevel(parseLogLevel(logLevel))
	logger.GetLogger("cmd").SetLevel(parseLogLevel(logLevel))
}
