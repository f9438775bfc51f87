package logger

import (
	"io"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a thin zap wrapper emitting JSON lines with caller info.
// The SentryHook parses the emitted field names, keep them stable.
type Logger struct {
	appEnv  string
	appName string
	l       *zap.Logger
}

func NewZapLogger(appName string, writers ...io.Writer) *Logger {
	var syncers []zapcore.WriteSyncer

	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = timeEncoder("2006-01-02T15-04-05.000", time.UTC)
	cfg.TimeKey = "timestamp"

	if len(writers) == 0 {
		syncers = append(syncers, os.Stdout)
	}
	for _, writer := range writers {
		syncers = append(syncers, zapcore.AddSync(writer))
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(cfg),
		zapcore.NewMultiWriteSyncer(syncers...),
		zapcore.DebugLevel,
	)

	return &Logger{
		appName: appName,
		l:       zap.New(core),
	}
}

func (l *Logger) Stop() error {
	return l.l.Sync()
}

func (l *Logger) Error(err error, fields ...map[string]any) {
	extra := []zap.Field{
		zap.String("error", err.Error()),
		zap.Stack("stack"),
	}
	l.emit(zapcore.ErrorLevel, err.Error(), fields, extra)
}

func (l *Logger) Info(msg string, fields ...map[string]any) {
	l.emit(zapcore.InfoLevel, msg, fields, nil)
}

func (l *Logger) Warning(msg string, fields ...map[string]any) {
	l.emit(zapcore.WarnLevel, msg, fields, nil)
}

func (l *Logger) Debug(msg string, fields ...map[string]any) {
	l.emit(zapcore.DebugLevel, msg, fields, nil)
}

func (l *Logger) Fatal(msg string, fields ...map[string]any) {
	l.emit(zapcore.FatalLevel, msg, fields, nil)
}

func (l *Logger) emit(level zapcore.Level, msg string, fields []map[string]any, extra []zap.Field) {
	file, line, funcName := callerParams()

	zapFields := make([]zap.Field, 0, 8)
	if len(fields) > 0 {
		for k, v := range fields[0] {
			zapFields = append(zapFields, zap.Any(k, v))
		}
	}
	zapFields = append(zapFields,
		zap.String("app_zone", l.appEnv),
		zap.String("app_name", l.appName),
		zap.String("caller_file", file),
		zap.Int("caller_line", line),
		zap.String("caller_func", funcName),
	)
	zapFields = append(zapFields, extra...)

	if ce := l.l.Check(level, msg); ce != nil {
		ce.Write(zapFields...)
	}
}

func callerParams() (file string, line int, funcName string) {
	// Caller(3): callerParams -> emit -> Info/Error/... -> call site.
	pc, file, line, ok := runtime.Caller(3)
	if !ok {
		return "not_defined", 0, "not_defined"
	}
	return file, line, runtime.FuncForPC(pc).Name()
}

func timeEncoder(layout string, location *time.Location) zapcore.TimeEncoder {
	return func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		t = t.In(location)
		type appendTimeEncoder interface {
			AppendTimeLayout(time.Time, string)
		}
		if enc, ok := enc.(appendTimeEncoder); ok {
			enc.AppendTimeLayout(t, layout)
			return
		}
		enc.AppendString(t.Format(layout))
	}
}
