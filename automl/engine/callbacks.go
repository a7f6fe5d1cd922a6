package engine

import "fmt"

// ErrorCallback is the policy an evaluation job applies to a fold failure.
// It is a plain enum rather than a function value so a Config carrying it
// survives gob encoding.
type ErrorCallback int

const (
	// LogErrorCallback records the failure to the job logger at WARN and
	// continues with NaN scores for the fold. This is the default.
	LogErrorCallback ErrorCallback = iota
	// RaiseErrorCallback aborts the evaluation job; the error surfaces
	// through the owning computation's Result.
	RaiseErrorCallback
	// SilentErrorCallback continues with NaN scores without logging.
	SilentErrorCallback
)

func (cb ErrorCallback) String() string {
	switch cb {
	case LogErrorCallback:
		return "log"
	case RaiseErrorCallback:
		return "raise"
	case SilentErrorCallback:
		return "silent"
	default:
		return fmt.Sprintf("ErrorCallback(%d)", int(cb))
	}
}

// Apply handles a fold failure according to the policy. A nil return means
// the job continues with NaN scores; a non-nil return aborts the job with
// that error.
func (cb ErrorCallback) Apply(err error, pipelineName string, logger *JobLogger) error {
	switch cb {
	case RaiseErrorCallback:
		return err
	case SilentErrorCallback:
		return nil
	default:
		if logger != nil {
			logger.Warn(fmt.Sprintf("%s fold failed, scores set to NaN: %v", pipelineName, err))
		}
		return nil
	}
}
