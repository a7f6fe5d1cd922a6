package log

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"

	evalgoErrors "github.com/YuminosukeSato/evalgo/pkg/errors"
)

// ErrFmtHandler is a slog handler that enriches error attributes.
//
// For any attribute logged under ErrAttrKey it extracts the stack trace
// recorded by cockroachdb/errors, and when the error chain contains a
// PipelineError it additionally emits the failing pipeline's name, the
// operation and the failure code as separate attributes. This keeps job
// failures queryable in log aggregators without parsing message strings.
type ErrFmtHandler struct {
	handler slog.Handler
}

// WrapByErrFmtHandler function wraps the standard slog handler.
// This function returns the slog handler which emits logs with a stacktrace attribute.
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &ErrFmtHandler{
		handler: handler,
	}
}

func (eh *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return eh.handler.Enabled(ctx, l)
}

func (eh *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var found error
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key == ErrAttrKey {
			if err, ok := attr.Value.Any().(error); ok {
				found = err
			}
			return false
		}
		return true
	})
	if found != nil {
		if stacktrace := extractStacktrace(found); stacktrace != "" {
			r.AddAttrs(slog.String(StacktraceAttrKey, stacktrace))
		}
		var pipeErr *evalgoErrors.PipelineError
		if errors.As(found, &pipeErr) {
			r.AddAttrs(
				slog.String(PipelineNameKey, pipeErr.PipelineName),
				slog.String(OperationKey, pipeErr.Op),
				slog.String(ErrorCodeKey, string(pipeErr.Code)),
			)
		}
	}
	return eh.handler.Handle(ctx, r)
}

func (eh *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithAttrs(attrs)}
}

func (eh *ErrFmtHandler) WithGroup(g string) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithGroup(g)}
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
