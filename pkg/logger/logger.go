package logger

import "sync"

// LoggerInstance is a single logging backend. Every call on the package
// facade is fanned out to all registered instances.
type LoggerInstance interface {
	Log(message string, keyvals ...any)
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
	Fatal(message string, keyvals ...any)
}

type level int

const (
	levelLog level = iota
	levelDebug
	levelInfo
	levelWarn
	levelError
	levelFatal
)

var (
	mu        sync.RWMutex
	instances []LoggerInstance
)

// Init replaces the registered backends. Without a call to Init every
// logging function is a no-op, which keeps library code quiet in tests.
func Init(backends ...LoggerInstance) {
	mu.Lock()
	defer mu.Unlock()
	instances = backends
}

func dispatch(l level, message string, keyvals []any) {
	mu.RLock()
	backends := instances
	mu.RUnlock()

	for _, instance := range backends {
		switch l {
		case levelDebug:
			instance.Debug(message, keyvals...)
		case levelInfo:
			instance.Info(message, keyvals...)
		case levelWarn:
			instance.Warn(message, keyvals...)
		case levelError:
			instance.Error(message, keyvals...)
		case levelFatal:
			instance.Fatal(message, keyvals...)
		default:
			instance.Log(message, keyvals...)
		}
	}
}

// Log writes a message without a level.
func Log(message string, keyvals ...any) { dispatch(levelLog, message, keyvals) }

// Debug writes a message at DEBUG level.
func Debug(message string, keyvals ...any) { dispatch(levelDebug, message, keyvals) }

// Info writes a message at INFO level.
func Info(message string, keyvals ...any) { dispatch(levelInfo, message, keyvals) }

// Warn writes a message at WARN level.
func Warn(message string, keyvals ...any) { dispatch(levelWarn, message, keyvals) }

// Error writes a message at ERROR level.
func Error(message string, keyvals ...any) { dispatch(levelError, message, keyvals) }

// Fatal writes a message at FATAL level. Console backends terminate the process.
func Fatal(message string, keyvals ...any) { dispatch(levelFatal, message, keyvals) }
