package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Initialize sets up the global logger with the specified level and format
func Initialize(level, format string) {
	InitializeWithWriter(os.Stdout, level, format)
}

// InitializeWithWriter is Initialize writing to w instead of stdout
func InitializeWithWriter(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Get returns the default logger, creating an info/text one on first use
func Get() *slog.Logger {
	if defaultLogger == nil {
		Initialize("info", "text")
	}
	return defaultLogger
}

func Debug(msg string, args ...any) { Get().Debug(msg, args...) }
func Info(msg string, args ...any)  { Get().Info(msg, args...) }
func Warn(msg string, args ...any)  { Get().Warn(msg, args...) }
func Error(msg string, args ...any) { Get().Error(msg, args...) }

// WithService returns a logger tagged with a component name
func WithService(serviceName string) *slog.Logger {
	return Get().With("service", serviceName)
}

// track writes one process-tracking record: debug on success, error when
// err is set. Leading attributes come first so records line up in text output.
func track(msg string, err error, lead []any, args []any) {
	attrs := make([]any, 0, len(lead)+len(args)+2)
	attrs = append(attrs, lead...)
	if err != nil {
		attrs = append(attrs, "error", err)
		Get().Error(msg, append(attrs, args...)...)
		return
	}
	Get().Debug(msg, append(attrs, args...)...)
}

// EnterMethod and ExitMethod bracket service calls at debug level
func EnterMethod(methodName string, args ...any) {
	track("→ Method entered", nil, []any{"method", methodName, "event", "enter"}, args)
}

func ExitMethod(methodName string, args ...any) {
	track("← Method exited", nil, []any{"method", methodName, "event", "exit"}, args)
}

func ExitMethodWithError(methodName string, err error, args ...any) {
	track("← Method exited with error", err, []any{"method", methodName, "event", "exit"}, args)
}

// DatabaseCall and DatabaseResult surround every SQL statement
func DatabaseCall(operation, query string, args ...any) {
	track("→ Database call", nil, []any{"operation", operation, "query", query}, args)
}

func DatabaseResult(operation string, rowsAffected int64, err error, args ...any) {
	msg := "← Database call succeeded"
	if err != nil {
		msg = "← Database call failed"
	}
	track(msg, err, []any{"operation", operation, "rows_affected", rowsAffected}, args)
}

// ExternalServiceCall and ExternalServiceResult surround collaborator calls
// (Stripe, Firebase, SendGrid, Kafka, Gemini)
func ExternalServiceCall(service, operation string, args ...any) {
	track("→ External service call", nil, []any{"service", service, "operation", operation}, args)
}

func ExternalServiceResult(service, operation string, err error, args ...any) {
	msg := "← External service call succeeded"
	if err != nil {
		msg = "← External service call failed"
	}
	track(msg, err, []any{"service", service, "operation", operation}, args)
}
