package logger

// LoggerInstance defines the interface for logging backends.
type LoggerInstance interface {
	Log(message string, keyvals ...any)
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
	Fatal(message string, keyvals ...any)
}

// Logger holds multiple logging backends and dispatches log calls to all of them.
type Logger struct {
	instances []LoggerInstance
	fields    []any
}

var singleton *Logger

func getSingleton() *Logger {
	return singleton
}

// Init initializes the global logger with one or more logging backends.
// Calls made before Init are dropped.
func Init(instances ...LoggerInstance) {
	singleton = &Logger{
		instances: instances,
	}
}

// SetFields attaches key/value pairs that are appended to every subsequent
// log call, e.g. the run id of the current ranking pass.
func SetFields(keyvals ...any) {
	logger := getSingleton()
	if logger == nil {
		return
	}
	logger.fields = keyvals
}

func dispatch(keyvals []any, fn func(LoggerInstance, []any)) {
	logger := getSingleton()
	if logger == nil {
		return
	}

	if len(logger.fields) > 0 {
		merged := make([]any, 0, len(keyvals)+len(logger.fields))
		merged = append(merged, keyvals...)
		merged = append(merged, logger.fields...)
		keyvals = merged
	}

	for _, instance := range logger.instances {
		fn(instance, keyvals)
	}
}

// Log writes a message at the default log level to all configured backends.
func Log(message string, keyvals ...any) {
	dispatch(keyvals, func(l LoggerInstance, kv []any) { l.Log(message, kv...) })
}

// Info writes a message at INFO level to all configured backends.
func Info(message string, keyvals ...any) {
	dispatch(keyvals, func(l LoggerInstance, kv []any) { l.Info(message, kv...) })
}

// Warn writes a message at WARN level to all configured backends.
func Warn(message string, keyvals ...any) {
	dispatch(keyvals, func(l LoggerInstance, kv []any) { l.Warn(message, kv...) })
}

// Error writes a message at ERROR level to all configured backends.
func Error(message string, keyvals ...any) {
	dispatch(keyvals, func(l LoggerInstance, kv []any) { l.Error(message, kv...) })
}

// Debug writes a message at DEBUG level to all configured backends.
func Debug(message string, keyvals ...any) {
	dispatch(keyvals, func(l LoggerInstance, kv []any) { l.Debug(message, kv...) })
}

// Fatal writes a message at FATAL level and terminates the program.
func Fatal(message string, keyvals ...any) {
	dispatch(keyvals, func(l LoggerInstance, kv []any) { l.Fatal(message, kv...) })
}
