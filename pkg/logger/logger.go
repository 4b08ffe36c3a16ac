package logger

import (
	"io"
	"log"
	"os"
	"strings"
)

// LogLevel constants
const (
	LogLevelError = "error"
	LogLevelWarn  = "warn"
	LogLevelInfo  = "info"
	LogLevelDebug = "debug"
	LogLevelTrace = "trace"
)

var levelRank = map[string]int{
	LogLevelError: 0,
	LogLevelWarn:  1,
	LogLevelInfo:  2,
	LogLevelDebug: 3,
	LogLevelTrace: 4,
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// GlobalLogging is the configuration the package level helpers obey.
// Nothing is logged until Configure has been called.
var GlobalLogging *LoggingConfig

// Configure installs config as the global logging configuration and
// redirects the standard logger to the configured file, if any.
func Configure(config *LoggingConfig) {
	config.Level = strings.ToLower(config.Level)
	if config.Level == "" {
		config.Level = LogLevelInfo
	}
	log.SetOutput(openOutput(config.File))
	GlobalLogging = config
}

// openOutput returns the log destination, falling back to stdout
func openOutput(file string) io.Writer {
	if file == "" {
		return os.Stdout
	}
	// Use 0600 permissions (owner read/write only) for security
	output, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		log.Printf("Failed to open log file %s: %v", file, err)
		return os.Stdout
	}
	return output
}

// LevelFromVerbosity maps a -v count onto a log level.
// 0 = error, 1 = warn, 2 = info, 3+ = debug
func LevelFromVerbosity(verbosity int) string {
	switch {
	case verbosity <= 0:
		return LogLevelError
	case verbosity == 1:
		return LogLevelWarn
	case verbosity == 2:
		return LogLevelInfo
	default:
		return LogLevelDebug
	}
}

// shouldLog reports whether a message of messageLevel passes currentLevel.
// Unknown levels let everything through.
func shouldLog(currentLevel, messageLevel string) bool {
	current, ok := levelRank[currentLevel]
	if !ok {
		return true
	}
	message, ok := levelRank[messageLevel]
	if !ok {
		return true
	}
	return message <= current
}

func enabled(level string) bool {
	return GlobalLogging != nil && shouldLog(GlobalLogging.Level, level)
}

// LogStartup logs startup messages that should always be visible regardless of log level
func LogStartup(format string, args ...interface{}) {
	log.Printf("🔧 "+format, args...)
}

// LogError logs at error level
func LogError(format string, args ...interface{}) {
	if enabled(LogLevelError) {
		log.Printf("❌ "+format, args...)
	}
}

// LogWarn logs at warn level
func LogWarn(format string, args ...interface{}) {
	if enabled(LogLevelWarn) {
		log.Printf("⚠️ "+format, args...)
	}
}

// LogInfo logs at info level
func LogInfo(format string, args ...interface{}) {
	if enabled(LogLevelInfo) {
		log.Printf("ℹ️ "+format, args...)
	}
}

// LogDebug logs at debug level
func LogDebug(format string, args ...interface{}) {
	if enabled(LogLevelDebug) {
		log.Printf("🔧 "+format, args...)
	}
}

// LogTrace logs every frame and publish; enable with level "trace"
func LogTrace(format string, args ...interface{}) {
	if enabled(LogLevelTrace) {
		log.Printf("🔍 "+format, args...)
	}
}
