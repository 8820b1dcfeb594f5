package logger

import (
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/keysound/pianorecd/sdk/contracts"
)

// zapLogger is a contracts.Logger backed by go.uber.org/zap.
type zapLogger struct {
	mu    sync.Mutex
	level zap.AtomicLevel
	core  zapcore.Core
	base  *zap.Logger
}

// NewLogger creates a console-backed zap logger at InfoLevel. Use SetLevel
// and SetDestination to reconfigure it afterward.
func NewLogger() contracts.Logger {
	level := zap.NewAtomicLevelAt(toZapLevel(contracts.InfoLevel))
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level)

	l := &zapLogger{level: level, core: core}
	l.base = zap.New(core)
	return l
}

func toZapLevel(level contracts.LogLevel) zapcore.Level {
	switch level {
	case contracts.DebugLevel:
		return zapcore.DebugLevel
	case contracts.WarnLevel:
		return zapcore.WarnLevel
	case contracts.ErrorLevel:
		return zapcore.ErrorLevel
	case contracts.FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *zapLogger) Info(msg string, fields ...contracts.Field) {
	l.base.Info(msg, toZapFields(fields)...)
}

func (l *zapLogger) Error(msg string, fields ...contracts.Field) {
	l.base.Error(msg, toZapFields(fields)...)
}

func (l *zapLogger) Debug(msg string, fields ...contracts.Field) {
	l.base.Debug(msg, toZapFields(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...contracts.Field) {
	l.base.Warn(msg, toZapFields(fields)...)
}

func (l *zapLogger) Fatal(msg string, fields ...contracts.Field) {
	l.base.Fatal(msg, toZapFields(fields)...)
}

func (l *zapLogger) Field() contracts.Field {
	return &zapField{}
}

func (l *zapLogger) SetLevel(level contracts.LogLevel) {
	l.level.SetLevel(toZapLevel(level))
}

func (l *zapLogger) SetDestination(dest contracts.LogDestination, filePath ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())

	switch dest {
	case contracts.FileLog:
		if len(filePath) == 0 {
			l.base.Error("file destination requires a path; keeping previous destination")
			return
		}
		f, err := os.OpenFile(filePath[0], os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			l.base.Error("failed to open log file", zap.Error(err))
			return
		}
		l.core = zapcore.NewCore(enc, zapcore.AddSync(f), l.level)
	default:
		l.core = zapcore.NewCore(enc, zapcore.Lock(os.Stdout), l.level)
	}
	l.base = zap.New(l.core)
}

// zapField implements contracts.Field as a one-shot builder: each method
// returns a fresh Field wrapping a single zap.Field, so call sites build
// one field per Field() invocation rather than chaining.
type zapField struct {
	f   zap.Field
	set bool
}

func (z *zapField) Bool(key string, val bool) contracts.Field {
	return &zapField{f: zap.Bool(key, val), set: true}
}

func (z *zapField) Int(key string, val int) contracts.Field {
	return &zapField{f: zap.Int(key, val), set: true}
}

func (z *zapField) Float64(key string, val float64) contracts.Field {
	return &zapField{f: zap.Float64(key, val), set: true}
}

func (z *zapField) String(key string, val string) contracts.Field {
	return &zapField{f: zap.String(key, val), set: true}
}

func (z *zapField) Time(key string, val time.Time) contracts.Field {
	return &zapField{f: zap.Time(key, val), set: true}
}

func (z *zapField) Int64(key string, val int64) contracts.Field {
	return &zapField{f: zap.Int64(key, val), set: true}
}

func (z *zapField) Error(key string, val error) contracts.Field {
	return &zapField{f: zap.NamedError(key, val), set: true}
}

func (z *zapField) Uint64(key string, val uint64) contracts.Field {
	return &zapField{f: zap.Uint64(key, val), set: true}
}

func (z *zapField) Uint8(key string, val uint8) contracts.Field {
	return &zapField{f: zap.Uint8(key, val), set: true}
}

func toZapFields(fields []contracts.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if zf, ok := f.(*zapField); ok && zf.set {
			out = append(out, zf.f)
		}
	}
	return out
}
