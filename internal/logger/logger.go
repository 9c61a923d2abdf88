package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	constants "pimonitor/config"
)

// Level represents log level
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
	LevelSuccess Level = "SUCCESS"
	LevelDebug   Level = "DEBUG"
)

// Logger writes leveled entries to an optional log file and an optional console stream
type Logger struct {
	filePath string
	logFile  *os.File
	console  io.Writer
	debug    bool
	mu       sync.Mutex
}

// New creates a new logger instance. An empty filePath disables file output.
func New(filePath string) *Logger {
	logger := &Logger{filePath: filePath}

	if filePath != "" {
		logFile, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			logger.logFile = logFile
		}
	}

	return logger
}

// Default returns a logger with default settings
func Default() *Logger {
	return New(constants.LOG_FILE)
}

// SetConsole mirrors every entry to w; nil disables console output
func (l *Logger) SetConsole(w io.Writer) {
	l.mu.Lock()
	l.console = w
	l.mu.Unlock()
}

// SetLevel enables debug entries when level is DEBUG
func (l *Logger) SetLevel(level string) {
	l.mu.Lock()
	l.debug = strings.EqualFold(level, string(LevelDebug))
	l.mu.Unlock()
}

func (l *Logger) write(level Level, message string, args ...interface{}) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	formattedMsg := fmt.Sprintf(message, args...)
	logEntry := fmt.Sprintf("[%s] %s: %s\n", timestamp, level, formattedMsg)

	l.mu.Lock()
	defer l.mu.Unlock()

	if level == LevelDebug && !l.debug {
		return
	}
	if l.logFile != nil {
		l.logFile.WriteString(logEntry)
	}
	if l.console != nil {
		io.WriteString(l.console, logEntry)
	}
}

// Close closes the log file
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logFile != nil {
		l.logFile.Close()
		l.logFile = nil
	}
}

// Info logs an informational message
func (l *Logger) Info(message string, args ...interface{}) {
	l.write(LevelInfo, message, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(message string, args ...interface{}) {
	l.write(LevelWarning, message, args...)
}

// Error logs an error message
func (l *Logger) Error(message string, args ...interface{}) {
	l.write(LevelError, message, args...)
}

// Success logs a success message
func (l *Logger) Success(message string, args ...interface{}) {
	l.write(LevelSuccess, message, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(message string, args ...interface{}) {
	l.write(LevelDebug, message, args...)
}

// Global logger instance for convenience
var (
	defaultLogger = Default()
	defaultMu     sync.RWMutex
)

// Configure replaces the default logger. Used once at startup by the serve command.
func Configure(filePath, level string, console io.Writer) {
	l := New(filePath)
	l.SetLevel(level)
	l.SetConsole(console)

	defaultMu.Lock()
	old := defaultLogger
	defaultLogger = l
	defaultMu.Unlock()

	old.Close()
}

func current() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Info logs an informational message using the default logger
func Info(message string, args ...interface{}) {
	current().Info(message, args...)
}

// Warning logs a warning message using the default logger
func Warning(message string, args ...interface{}) {
	current().Warning(message, args...)
}

// Error logs an error message using the default logger
func Error(message string, args ...interface{}) {
	current().Error(message, args...)
}

// Success logs a success message using the default logger
func Success(message string, args ...interface{}) {
	current().Success(message, args...)
}

// Debug logs a debug message using the default logger
func Debug(message string, args ...interface{}) {
	current().Debug(message, args...)
}
