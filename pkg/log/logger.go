package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

const (
	// ErrAttrKey is the attribute key used for error values.
	// Handlers recognize this key and may extract stack traces from the value.
	ErrAttrKey = "error"
	// StacktraceAttrKey is the attribute key under which handlers expose
	// a stack trace extracted from an error value.
	StacktraceAttrKey = "stacktrace"
)

// SetupLogger configures the process-wide slog default logger with JSON output.
//
// The handler remaps attribute names to the structured-logging conventions used
// by Google Cloud Logging (severity, message, sourceLocation) so that EvalGo
// services log in a form log aggregators parse natively. Error attributes are
// expanded with stack traces by ErrFmtHandler.
func SetupLogger(loglevel string) {
	logLevel := ToLogLevel(loglevel)

	replaceAttrFunc := func(groups []string, a slog.Attr) slog.Attr {
		switch a.Key {
		case slog.LevelKey:
			a.Key = "severity"
		case slog.MessageKey:
			a.Key = "message"
		case slog.SourceKey:
			a.Key = "sourceLocation"
		}
		return a
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   true,
		Level:       logLevel,
		ReplaceAttr: replaceAttrFunc,
	})

	logger := slog.New(WrapByErrFmtHandler(handler))
	slog.SetDefault(logger)
}

// ToLogLevel converts a level name into a slog.Level.
// Valid names are "debug", "info", "warn" and "error".
// It panics on any other value; log levels come from static configuration
// and an invalid one is a programming error.
func ToLogLevel(loglevel string) slog.Level {
	switch loglevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic("invalid log level: " + loglevel)
	}
}

// ErrAttr wraps an error into a slog.Attr under ErrAttrKey.
//
// Example:
//
//	slog.Error("evaluation failed", log.ErrAttr(err))
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// slogLogger adapts a slog.Logger to the Logger interface.
// It is the production implementation used throughout EvalGo.
type slogLogger struct {
	logger *slog.Logger
	level  *slog.LevelVar
}

// New returns a Logger writing JSON records to w at the given minimum level.
// Error attributes passed under the "error" key are expanded with stack
// traces when the error carries one.
func New(w io.Writer, level Level) Logger {
	lv := new(slog.LevelVar)
	lv.Set(slog.Level(level))
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv})
	return &slogLogger{
		logger: slog.New(WrapByErrFmtHandler(handler)),
		level:  lv,
	}
}

// NewFromSlog wraps an existing slog.Logger in the Logger interface.
// Level queries are answered by the underlying handler.
func NewFromSlog(logger *slog.Logger) Logger {
	return &slogLogger{logger: logger}
}

func (l *slogLogger) Debug(msg string, fields ...any) { l.logger.Debug(msg, fields...) }
func (l *slogLogger) Info(msg string, fields ...any)  { l.logger.Info(msg, fields...) }
func (l *slogLogger) Warn(msg string, fields ...any)  { l.logger.Warn(msg, fields...) }
func (l *slogLogger) Error(msg string, fields ...any) { l.logger.Error(msg, fields...) }

func (l *slogLogger) With(fields ...any) Logger {
	return &slogLogger{logger: l.logger.With(fields...), level: l.level}
}

func (l *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return l.logger.Enabled(ctx, slog.Level(level))
}

// slogProvider is the default LoggerProvider backed by New.
type slogProvider struct {
	mu     sync.RWMutex
	logger Logger
	level  *slog.LevelVar
}

func newSlogProvider() *slogProvider {
	lv := new(slog.LevelVar)
	lv.Set(slog.LevelInfo)
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lv})
	return &slogProvider{
		logger: &slogLogger{logger: slog.New(WrapByErrFmtHandler(handler)), level: lv},
		level:  lv,
	}
}

func (p *slogProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.logger
}

func (p *slogProvider) GetLoggerWithName(name string) Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.logger.With("logger", name)
}

func (p *slogProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level.Set(slog.Level(level))
}

var (
	providerMu      sync.RWMutex
	defaultProvider LoggerProvider = newSlogProvider()
)

// SetDefaultProvider replaces the package-level LoggerProvider.
// It is intended for application startup and tests.
func SetDefaultProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	defaultProvider = p
}

// GetLogger returns the default logger from the current provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLogger()
}

// GetLoggerWithName returns a named logger from the current provider.
// The name typically identifies the subsystem, e.g. "automl" or "engine".
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLoggerWithName(name)
}
