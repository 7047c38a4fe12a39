package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level  slog.Level
	Format string    // "json" or "text"
	Output io.Writer // defaults to stdout
}

// ParseLevel maps LOG_LEVEL values onto slog levels. Unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger provides structured logging with component and request context.
type Logger struct {
	slogger *slog.Logger
}

// NewLogger creates a new structured logger
func NewLogger(config LogConfig) *Logger {
	w := config.Output
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: config.Level}

	var handler slog.Handler
	if config.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return &Logger{slogger: slog.New(handler)}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{slogger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

// Slog exposes the underlying logger, e.g. for slog.SetDefault.
func (l *Logger) Slog() *slog.Logger { return l.slogger }

// WithComponent returns a child logger tagged with component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{slogger: l.slogger.With(slog.String("component", component))}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(context.Background(), slog.LevelDebug, msg, nil, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(context.Background(), slog.LevelInfo, msg, nil, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(context.Background(), slog.LevelWarn, msg, nil, fields) }

func (l *Logger) Error(msg string, err error, fields ...Field) {
	l.log(context.Background(), slog.LevelError, msg, err, fields)
}

// InfoContext logs at info level and attaches the request id carried by ctx.
func (l *Logger) InfoContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelInfo, msg, nil, fields)
}

// ErrorContext logs at error level and attaches the request id carried by ctx.
func (l *Logger) ErrorContext(ctx context.Context, msg string, err error, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, err, fields)
}

func (l *Logger) log(ctx context.Context, level slog.Level, msg string, err error, fields []Field) {
	if !l.slogger.Enabled(ctx, level) {
		return
	}
	attrs := make([]slog.Attr, 0, len(fields)+2)
	if id := RequestID(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	l.slogger.LogAttrs(ctx, level, msg, attrs...)
}

type ctxKey struct{}

// WithRequestID stores a request id for the *Context logging methods.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

func String(key, value string) Field                 { return Field{Key: key, Value: value} }
func Int(key string, value int) Field                { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field            { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field              { return Field{Key: key, Value: value} }
func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

// Fields converts a summary map into fields, e.g. Config.GetConfigSummary.
func Fields(m map[string]interface{}) []Field {
	out := make([]Field, 0, len(m))
	for k, v := range m {
		out = append(out, Field{Key: k, Value: v})
	}
	return out
}
