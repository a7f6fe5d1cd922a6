package engine

import (
	"github.com/YuminosukeSato/evalgo/pkg/log"
)

// LogRecord is one message captured by a JobLogger.
type LogRecord struct {
	Level   log.Level
	Message string
}

// JobLogger is the append-only log a job writes while it runs. Workers on
// the far side of an engine boundary cannot reach the caller's logger, so
// each job records into its own JobLogger and the caller replays the records
// afterwards with WriteToLogger. The exported field keeps the records intact
// across gob.
//
// A JobLogger belongs to exactly one job and is not safe for concurrent use.
type JobLogger struct {
	Entries []LogRecord
}

// NewJobLogger returns an empty job logger.
func NewJobLogger() *JobLogger {
	return &JobLogger{}
}

// Debug appends a debug-level record.
func (l *JobLogger) Debug(msg string) {
	l.Entries = append(l.Entries, LogRecord{Level: log.LevelDebug, Message: msg})
}

// Info appends an info-level record.
func (l *JobLogger) Info(msg string) {
	l.Entries = append(l.Entries, LogRecord{Level: log.LevelInfo, Message: msg})
}

// Warn appends a warn-level record.
func (l *JobLogger) Warn(msg string) {
	l.Entries = append(l.Entries, LogRecord{Level: log.LevelWarn, Message: msg})
}

// Error appends an error-level record.
func (l *JobLogger) Error(msg string) {
	l.Entries = append(l.Entries, LogRecord{Level: log.LevelError, Message: msg})
}

// Len returns the number of captured records.
func (l *JobLogger) Len() int {
	return len(l.Entries)
}

// Records returns a copy of the captured records in append order.
func (l *JobLogger) Records() []LogRecord {
	out := make([]LogRecord, len(l.Entries))
	copy(out, l.Entries)
	return out
}

// WriteToLogger replays every record into the given logger in append order.
func (l *JobLogger) WriteToLogger(logger log.Logger) {
	for _, record := range l.Entries {
		switch record.Level {
		case log.LevelDebug:
			logger.Debug(record.Message)
		case log.LevelWarn:
			logger.Warn(record.Message)
		case log.LevelError:
			logger.Error(record.Message)
		default:
			logger.Info(record.Message)
		}
	}
}
