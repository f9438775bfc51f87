package logger

import (
	"encoding/json"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap/zapcore"
)

const (
	_sentryMaxErrorDepth int           = 9
	_sentryFlushTimeout  time.Duration = 5 * time.Second
)

// SentryHook is an io.Writer that can be handed to NewZapLogger as an
// extra sink. It parses each JSON log line and forwards error-level
// entries to Sentry; everything else is dropped.
type SentryHook struct {
	appName string
	enabled bool
}

func NewSentryHook(appName, dsn string, isDebug bool) *SentryHook {
	if dsn == "" {
		return &SentryHook{appName: appName}
	}

	if err := sentry.Init(sentry.ClientOptions{
		AttachStacktrace: true,
		Debug:            isDebug,
		Dsn:              dsn,
		MaxErrorDepth:    _sentryMaxErrorDepth,
		ServerName:       appName,
	}); err != nil {
		log.Println("sentry init error:", err.Error())
		return &SentryHook{appName: appName}
	}

	return &SentryHook{appName: appName, enabled: true}
}

type logLine struct {
	Level      string `json:"level"`
	Message    string `json:"msg"`
	Error      string `json:"error"`
	CallerFile string `json:"caller_file"`
	CallerLine int    `json:"caller_line"`
	CallerFunc string `json:"caller_func"`
	Stack      string `json:"stack"`
}

func (h *SentryHook) Write(p []byte) (int, error) {
	if !h.enabled {
		return len(p), nil
	}

	var line logLine
	if err := json.Unmarshal(p, &line); err != nil {
		return len(p), nil
	}

	level, err := zapcore.ParseLevel(line.Level)
	if err != nil || level < zapcore.ErrorLevel || line.Message == "" {
		return len(p), nil
	}

	event := sentry.NewEvent()
	event.Level = sentry.LevelError
	if level > zapcore.ErrorLevel {
		event.Level = sentry.LevelFatal
	}
	event.Message = line.Message
	event.Extra["AppName"] = h.appName
	event.Extra["Error"] = line.Error
	event.Extra["CallerFile"] = line.CallerFile
	event.Extra["CallerLine"] = line.CallerLine
	event.Extra["CallerFunc"] = line.CallerFunc
	event.Extra["Stack"] = line.Stack
	event.Exception = append(event.Exception, sentry.Exception{
		Type:       line.Message,
		Value:      line.Error,
		Stacktrace: sentry.NewStacktrace(),
	})
	sentry.CaptureEvent(event)

	return len(p), nil
}

// Flush drains buffered events, call it on shutdown.
func (h *SentryHook) Flush() {
	if h.enabled {
		sentry.Flush(_sentryFlushTimeout)
	}
}
