package logger

import (
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Level orders log severities; messages below the current level are dropped.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	DebugLogger *log.Logger
	InfoLogger  *log.Logger
	WarnLogger  *log.Logger
	ErrorLogger *log.Logger

	level atomic.Int32
)

func init() {
	DebugLogger = log.New(os.Stdout, "DEBUG: ", log.Ldate|log.Ltime|log.Lmicroseconds)
	InfoLogger = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lmicroseconds)
	WarnLogger = log.New(os.Stderr, "WARN: ", log.Ldate|log.Ltime|log.Lmicroseconds)
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lmicroseconds)
	level.Store(int32(LevelInfo))
}

// ParseLevel maps LOG_LEVEL values to a Level. Unknown values mean INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetLevel changes the minimum level that gets written.
func SetLevel(l Level) {
	level.Store(int32(l))
}

// SetOutput points every level at w. Tests use it to capture log lines.
func SetOutput(w io.Writer) {
	DebugLogger.SetOutput(w)
	InfoLogger.SetOutput(w)
	WarnLogger.SetOutput(w)
	ErrorLogger.SetOutput(w)
}

// Debug logs debug messages
func Debug(format string, v ...interface{}) {
	if enabled(LevelDebug) {
		DebugLogger.Printf(format, v...)
	}
}

// Info logs information messages
func Info(format string, v ...interface{}) {
	if enabled(LevelInfo) {
		InfoLogger.Printf(format, v...)
	}
}

// Warn logs recoverable problems
func Warn(format string, v ...interface{}) {
	if enabled(LevelWarn) {
		WarnLogger.Printf(format, v...)
	}
}

// Error logs error messages
func Error(format string, v ...interface{}) {
	if enabled(LevelError) {
		ErrorLogger.Printf(format, v...)
	}
}

func enabled(l Level) bool {
	return int32(l) >= level.Load()
}
