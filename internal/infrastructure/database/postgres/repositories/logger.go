package repositories

// Logger is the minimal logging contract required by repository
// implementations. Keys and values are alternating pairs; the
// monitoring/logging package provides a KV adapter that satisfies it.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}
