// Package logging provides component-scoped, leveled logging for
// photosweep, written to a rotating file and optionally mirrored to stderr.
//
// Basic usage:
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    return err
//	}
//	defer logging.Close()
//
//	log := logging.Get("catalog")
//	log.Info("catalog loaded", "photos", 120)
//
// Loggers obtained before Init are silent and start writing as soon as Init
// succeeds, so packages may hold a Logger in a package-level variable.
package logging

import (
	"errors"
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

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l Level) charm() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Path is the log file path. Empty uses DefaultLogPath().
	Path string

	Rotation RotationConfig

	// Components maps component names to level overrides.
	Components map[string]string

	// ConsoleLevel mirrors entries at or above this level to stderr.
	// Empty disables console output.
	ConsoleLevel string
}

// sinks are the charm loggers a component currently writes to.
type sinks struct {
	file    *log.Logger
	console *log.Logger
}

// Logger is a named component logger. It is cheap to copy and stays valid
// across Init and Close.
type Logger struct {
	component string
	fields    []interface{}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) { l.log(LevelDebug, msg, args) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) { l.log(LevelInfo, msg, args) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) { l.log(LevelWarn, msg, args) }

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) { l.log(LevelError, msg, args) }

// With returns a logger that prepends args to every entry.
func (l *Logger) With(args ...interface{}) *Logger {
	fields := make([]interface{}, 0, len(l.fields)+len(args))
	fields = append(fields, l.fields...)
	fields = append(fields, args...)
	return &Logger{component: l.component, fields: fields}
}

func (l *Logger) log(level Level, msg string, args []interface{}) {
	s := globalState.sinksFor(l.component)
	if len(l.fields) > 0 {
		args = append(append([]interface{}{}, l.fields...), args...)
	}
	write(s.file, level, msg, args)
	if s.console != nil {
		write(s.console, level, msg, args)
	}
}

func write(logger *log.Logger, level Level, msg string, args []interface{}) {
	switch level {
	case LevelDebug:
		logger.Debug(msg, args...)
	case LevelInfo:
		logger.Info(msg, args...)
	case LevelWarn:
		logger.Warn(msg, args...)
	case LevelError:
		logger.Error(msg, args...)
	}
}

type state struct {
	mu          sync.RWMutex
	initialized bool
	writer      *RotatingWriter
	level       Level
	components  map[string]Level
	console     bool
	consoleLvl  Level
	cache       map[string]sinks
}

var globalState = &state{
	components: make(map[string]Level),
	cache:      make(map[string]sinks),
}

// sinksFor returns (building on first use) the sinks for component.
func (s *state) sinksFor(component string) sinks {
	s.mu.RLock()
	sk, ok := s.cache[component]
	s.mu.RUnlock()
	if ok {
		return sk
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sk, ok := s.cache[component]; ok {
		return sk
	}
	sk = s.build(component)
	s.cache[component] = sk
	return sk
}

// build creates sinks for component. Must be called with s.mu held.
func (s *state) build(component string) sinks {
	level := s.level
	if lvl, ok := s.components[component]; ok {
		level = lvl
	}

	if !s.initialized {
		return sinks{file: log.NewWithOptions(io.Discard, log.Options{Level: level.charm(), Prefix: component})}
	}

	sk := sinks{
		file: log.NewWithOptions(s.writer, log.Options{
			Level:           level.charm(),
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          component,
		}),
	}
	if s.console {
		sk.console = log.NewWithOptions(os.Stderr, log.Options{
			Level:           s.consoleLvl.charm(),
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Prefix:          component,
		})
	}
	return sk
}

// Init configures the logging system. Calling Init again replaces the
// previous configuration and closes the previous log file.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	components := make(map[string]Level, len(cfg.Components))
	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		components[comp] = parsed
	}

	var consoleLvl Level
	if cfg.ConsoleLevel != "" {
		consoleLvl, err = ParseLevel(cfg.ConsoleLevel)
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
	globalState.consoleLvl = consoleLvl
	globalState.initialized = true
	globalState.cache = make(map[string]sinks)

	return nil
}

// Get returns the logger for component.
func Get(component string) *Logger {
	return &Logger{component: component}
}

// Close flushes and closes the log file. Loggers become silent until the
// next Init.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if !globalState.initialized {
		return nil
	}

	globalState.initialized = false
	globalState.cache = make(map[string]sinks)
	globalState.components = make(map[string]Level)

	if globalState.writer != nil {
		w := globalState.writer
		globalState.writer = nil
		if err := w.Close(); err != nil {
			return fmt.Errorf("closing log writer: %w", err)
		}
	}
	return nil
}

// DefaultLogPath returns $XDG_STATE_HOME/photosweep/photosweep.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "photosweep", "photosweep.log")
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:    "info",
		Path:     DefaultLogPath(),
		Rotation: DefaultRotationConfig(),
	}
}
