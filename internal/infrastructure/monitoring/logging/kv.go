package logging

import "fmt"

// KVLogger exposes a Logger through a loosely-typed key/value interface.
// Several components (database repositories, the analysis pipeline) declare
// their own minimal logging contracts in this shape so they stay decoupled
// from the monitoring stack; KV bridges those contracts to the structured
// Logger.
type KVLogger struct {
	l Logger
}

// KV wraps a Logger in the key/value interface. A nil logger falls back to
// the no-op implementation.
func KV(l Logger) *KVLogger {
	if l == nil {
		l = NewNopLogger()
	}
	return &KVLogger{l: l}
}

func (k *KVLogger) Debug(msg string, keysAndValues ...interface{}) {
	k.l.Debug(msg, pairFields(keysAndValues)...)
}

func (k *KVLogger) Info(msg string, keysAndValues ...interface{}) {
	k.l.Info(msg, pairFields(keysAndValues)...)
}

func (k *KVLogger) Warn(msg string, keysAndValues ...interface{}) {
	k.l.Warn(msg, pairFields(keysAndValues)...)
}

func (k *KVLogger) Error(msg string, keysAndValues ...interface{}) {
	k.l.Error(msg, pairFields(keysAndValues)...)
}

// pairFields folds a flat key/value list into Fields. A trailing unpaired
// value is kept under the "extra" key rather than dropped.
func pairFields(keysAndValues []interface{}) []Field {
	fields := make([]Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		fields = append(fields, Any(key, keysAndValues[i+1]))
	}
	if len(keysAndValues)%2 == 1 {
		fields = append(fields, Any("extra", keysAndValues[len(keysAndValues)-1]))
	}
	return fields
}
