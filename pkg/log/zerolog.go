package log

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	evalgoErrors "github.com/YuminosukeSato/evalgo/pkg/errors"
)

// zerologLogger adapts a zerolog.Logger to the Logger interface.
//
// zerolog is the preferred backend for long-running search services: it
// allocates nothing on disabled levels and renders PipelineError values
// through their MarshalZerologObject implementation.
type zerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger returns a Logger backed by zerolog writing to w.
// Records below the given level are discarded.
func NewZerologLogger(w io.Writer, level Level) Logger {
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &zerologLogger{zl: zl}
}

// NewFromZerolog wraps an existing zerolog.Logger in the Logger interface.
func NewFromZerolog(zl zerolog.Logger) Logger {
	return &zerologLogger{zl: zl}
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

func (l *zerologLogger) Debug(msg string, fields ...any) {
	applyFields(l.zl.Debug(), fields).Msg(msg)
}

func (l *zerologLogger) Info(msg string, fields ...any) {
	applyFields(l.zl.Info(), fields).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, fields ...any) {
	applyFields(l.zl.Warn(), fields).Msg(msg)
}

func (l *zerologLogger) Error(msg string, fields ...any) {
	applyFields(l.zl.Error(), fields).Msg(msg)
}

func (l *zerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	eachPair(fields, func(key string, value any) {
		switch v := value.(type) {
		case zerolog.LogObjectMarshaler:
			ctx = ctx.Object(key, v)
		case error:
			ctx = ctx.AnErr(key, v)
		default:
			ctx = ctx.Interface(key, v)
		}
	})
	return &zerologLogger{zl: ctx.Logger()}
}

func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	zl := toZerologLevel(level)
	return zl >= l.zl.GetLevel() && zl >= zerolog.GlobalLevel()
}

// applyFields attaches alternating key/value fields to a zerolog event.
// Values implementing zerolog.LogObjectMarshaler are rendered structurally,
// plain errors through AnErr, everything else through Interface.
func applyFields(event *zerolog.Event, fields []any) *zerolog.Event {
	eachPair(fields, func(key string, value any) {
		switch v := value.(type) {
		case zerolog.LogObjectMarshaler:
			event = event.Object(key, v)
		case error:
			event = event.AnErr(key, v)
		default:
			event = event.Interface(key, v)
		}
	})
	return event
}

// eachPair walks an alternating key/value slice in order.
// Non-string keys are stringified and a trailing value without a key is
// reported under "!BADKEY", matching slog's convention.
func eachPair(fields []any, fn func(key string, value any)) {
	for i := 0; i < len(fields); i += 2 {
		if i+1 >= len(fields) {
			fn("!BADKEY", fields[i])
			return
		}
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprint(fields[i])
		}
		fn(key, fields[i+1])
	}
}

// RegisterZerologWarnings routes warnings raised through the errors package
// to the given zerolog logger. Warning types implementing
// zerolog.LogObjectMarshaler are embedded structurally.
func RegisterZerologWarnings(zl zerolog.Logger) {
	evalgoErrors.SetZerologWarnFunc(func(w error) {
		event := zl.Warn().Str(ErrorTypeKey, fmt.Sprintf("%T", w))
		if obj, ok := w.(zerolog.LogObjectMarshaler); ok {
			event = event.EmbedObject(obj)
		}
		event.Msg(w.Error())
	})
}
