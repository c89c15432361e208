// Package logging provides component loggers for the anonymize CLI, backed by
// charmbracelet/log and written to a rotating file.
//
// Basic usage:
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    return err
//	}
//	defer logging.Close()
//
//	logger := logging.Get("runner")
//	logger.Info("run started", "root", "/data")
//
// Loggers obtained before Init write nowhere.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// ErrInvalidLevel is returned by ParseLevel for an unknown level name.
var ErrInvalidLevel = log.ErrInvalidLevel

// ParseLevel parses a level name case-insensitively. An empty name means
// info and "warning" is accepted for warn.
func ParseLevel(s string) (log.Level, error) {
	switch name := strings.ToLower(strings.TrimSpace(s)); name {
	case "":
		return log.InfoLevel, nil
	case "warning":
		return log.WarnLevel, nil
	default:
		return log.ParseLevel(name)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level.
	Level string

	// Path is the log file path. Empty uses DefaultLogPath().
	Path string

	// Rotation configures log file rotation.
	Rotation RotationConfig

	// Components maps component names to level overrides.
	Components map[string]string

	// ConsoleLevel enables stderr output at the given level. Empty disables it.
	ConsoleLevel string
}

// Logger is a component logger. It writes to the log file and, when enabled,
// to stderr.
type Logger struct {
	component string

	mu      sync.RWMutex
	file    *log.Logger
	console *log.Logger
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) { l.log(log.DebugLevel, msg, args...) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) { l.log(log.InfoLevel, msg, args...) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) { l.log(log.WarnLevel, msg, args...) }

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) { l.log(log.ErrorLevel, msg, args...) }

// Component returns the component name of the logger.
func (l *Logger) Component() string { return l.component }

func (l *Logger) log(level log.Level, msg string, args ...interface{}) {
	l.mu.RLock()
	file, console := l.file, l.console
	l.mu.RUnlock()

	file.Log(level, msg, args...)
	if console != nil {
		console.Log(level, msg, args...)
	}
}

// state holds the global logging state. Loggers are created once per
// component and rewired in place on Init and Close, so package-level
// loggers obtained before Init start writing once Init runs.
type state struct {
	mu           sync.Mutex
	initialized  bool
	writer       *RotatingWriter
	level        log.Level
	components   map[string]log.Level
	console      bool
	consoleLevel log.Level
	loggers      map[string]*Logger
}

var globalState = &state{
	components: make(map[string]log.Level),
	loggers:    make(map[string]*Logger),
}

// Init initializes the logging system. Calling Init again replaces the
// previous configuration.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	components := make(map[string]log.Level, len(cfg.Components))
	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		components[comp] = parsed
	}

	var consoleLevel log.Level
	if cfg.ConsoleLevel != "" {
		consoleLevel, err = ParseLevel(cfg.ConsoleLevel)
		if err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}

	writer, err := NewRotatingWriter(path, cfg.Rotation)
	if err != nil {
		return fmt.Errorf("creating log writer: %w", err)
	}

	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if globalState.writer != nil {
		_ = globalState.writer.Close()
	}

	globalState.writer = writer
	globalState.level = level
	globalState.components = components
	globalState.console = cfg.ConsoleLevel != ""
	globalState.consoleLevel = consoleLevel
	globalState.initialized = true

	for _, logger := range globalState.loggers {
		globalState.wire(logger)
	}

	return nil
}

// Get returns the logger for a component, creating it on first use.
func Get(component string) *Logger {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if logger, ok := globalState.loggers[component]; ok {
		return logger
	}

	logger := &Logger{component: component}
	globalState.wire(logger)
	globalState.loggers[component] = logger
	return logger
}

// wire points a logger at the current outputs. Must be called with s.mu held.
func (s *state) wire(l *Logger) {
	level := s.level
	if compLevel, ok := s.components[l.component]; ok {
		level = compLevel
	}

	var out io.Writer = io.Discard
	if s.initialized {
		out = s.writer
	}

	file := log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          l.component,
	})

	var console *log.Logger
	if s.initialized && s.console {
		console = log.NewWithOptions(os.Stderr, log.Options{
			Level:           s.consoleLevel,
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Prefix:          l.component,
		})
	}

	l.mu.Lock()
	l.file = file
	l.console = console
	l.mu.Unlock()
}

// Close flushes and closes the log file. Loggers keep working but discard output.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if !globalState.initialized {
		return nil
	}

	var err error
	if globalState.writer != nil {
		err = globalState.writer.Close()
		globalState.writer = nil
	}

	globalState.initialized = false
	globalState.console = false
	globalState.components = make(map[string]log.Level)
	for _, logger := range globalState.loggers {
		globalState.wire(logger)
	}

	if err != nil {
		return fmt.Errorf("closing log writer: %w", err)
	}
	return nil
}

// DefaultLogPath returns $XDG_STATE_HOME/anonymize/anonymize.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "anonymize", "anonymize.log")
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:    "info",
		Path:     DefaultLogPath(),
		Rotation: DefaultRotationConfig(),
	}
}
