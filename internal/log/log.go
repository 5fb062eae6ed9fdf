// Package log provides structured, leveled logging for impalab.
//
// Logging is process-wide and configured once at startup from the
// environment: IMPALAB_LOG selects verbosity (debug, info, warn,
// error; default info) and IMPALAB_LOG_FILE, if set, redirects
// output from stderr to that file. There is no other global mutable
// state in the process.
package log

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func parseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Category groups related log messages by the component that produced them.
type Category string

const (
	CatManifest  Category = "manifest"
	CatDiscovery Category = "discovery"
	CatProc      Category = "proc"
	CatFanout    Category = "fanout"
	CatCollector Category = "collector"
	CatOrch      Category = "orch"
	CatConfig    Category = "config"
	CatCLI       Category = "cli"
)

type logger struct {
	mu       sync.Mutex
	writer   *os.File
	file     *os.File
	minLevel Level
}

var (
	defaultLogger *logger
	once          sync.Once
)

// InitFromEnv initializes the global logger from IMPALAB_LOG and
// IMPALAB_LOG_FILE, falling back to fallbackLevel (the configured
// log_level) when IMPALAB_LOG is unset. It is safe to call more than
// once; only the first call takes effect. The returned function closes
// the log file, if one was opened, and should be deferred by main.
func InitFromEnv(fallbackLevel string) func() {
	once.Do(func() {
		levelSrc := os.Getenv("IMPALAB_LOG")
		if levelSrc == "" {
			levelSrc = fallbackLevel
		}
		l := &logger{
			writer:   os.Stderr,
			minLevel: parseLevel(levelSrc),
		}
		if path := os.Getenv("IMPALAB_LOG_FILE"); path != "" {
			//nolint:gosec // G304: path comes from an operator-controlled env var, not request input
			if f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
				l.writer = f
				l.file = f
			} else {
				fmt.Fprintf(os.Stderr, "log: could not open %s, logging to stderr: %v\n", path, err)
			}
		}
		defaultLogger = l
	})
	return func() {
		if defaultLogger != nil && defaultLogger.file != nil {
			_ = defaultLogger.file.Close()
		}
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) { logAt(LevelDebug, cat, msg, fields...) }

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) { logAt(LevelInfo, cat, msg, fields...) }

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) { logAt(LevelWarn, cat, msg, fields...) }

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) { logAt(LevelError, cat, msg, fields...) }

// ErrorErr logs an error at error level, appending it as a field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	logAt(LevelError, cat, msg, fields...)
}

func logAt(level Level, cat Category, msg string, fields ...any) {
	if defaultLogger == nil {
		return
	}
	if level < defaultLogger.minLevel {
		return
	}

	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	entry := fmt.Sprintf("%s [%s] [%s] %s", timestamp, level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		entry += fmt.Sprintf(" %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		entry += fmt.Sprintf(" %v=<missing>", fields[len(fields)-1])
	}
	fmt.Fprintln(defaultLogger.writer, entry)
}
