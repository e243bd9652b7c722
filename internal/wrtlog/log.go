// Package wrtlog is a thin facade over zap so the rest of the tree depends
// on an interface, not zap directly — the same shape as wazero's
// internal/logging wraps its FunctionListener abstraction rather than
// hard-wiring one observability backend into every call site.
package wrtlog

import "go.uber.org/zap"

// Logger is the facade every other package threads through constructors
// (spec's ambient-stack rule: never a global log.Printf).
type Logger struct {
	z *zap.Logger
}

// Nop returns a Logger that discards everything, used as the default when
// an embedder doesn't configure one.
func Nop() *Logger { return &Logger{z: zap.NewNop()} }

// New wraps an existing zap.Logger. Passing nil is equivalent to Nop().
func New(z *zap.Logger) *Logger {
	if z == nil {
		return Nop()
	}
	return &Logger{z: z}
}

// Debug logs at zap's debug level. No call site in this tree uses it and no
// build tag gates it; whether an entry is emitted depends only on the
// wrapped zap.Logger's level.
func (l *Logger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }

// Info logs lifecycle events; runtime initialization is the one call site
// in this tree.
func (l *Logger) Info(msg string, fields ...zap.Field) { l.z.Info(msg, fields...) }

// Warn logs recoverable boundary failures.
func (l *Logger) Warn(msg string, fields ...zap.Field) { l.z.Warn(msg, fields...) }

// Error logs failures the embedder should be made aware of even though the
// runtime itself continues.
func (l *Logger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }

// With returns a child Logger carrying additional structured fields on every
// subsequent call, the same pattern moby-moby uses for per-component zap
// child loggers.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{z: l.z.With(fields...)}
}

// Sync flushes any buffered log entries. Callers invoke this once at
// shutdown, mirroring zap's own recommended usage.
func (l *Logger) Sync() error { return l.z.Sync() }

// Unwrap returns the underlying *zap.Logger, for the few call sites
// (internal/wrtcap.NewCapabilityContext) that take one directly rather than
// a Logger, since the capability registry predates this facade and is
// exercised independently of it in its own tests.
func (l *Logger) Unwrap() *zap.Logger { return l.z }
