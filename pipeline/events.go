package pipeline

import (
	"github.com/sirupsen/logrus"
)

// Outcome is the terminal state of a record for the current pass. A record
// re-enters processing only when the next pass re-reads the roster.
type Outcome string

const (
	Granted        Outcome = "granted"
	AlreadyGranted Outcome = "already-granted"
	Skipped        Outcome = "skipped"
	FolderNotFound Outcome = "folder-not-found"
	Errored        Outcome = "error"
)

// Events receives one event per record transition and one summary per pass.
// Rendering (console, progress, log files) is the implementation's concern.
type Events interface {
	Record(row int, outcome Outcome, detail string)
	Summary(stats Stats)
}

// LogEvents renders pipeline events as structured log entries.
type LogEvents struct {
	log *logrus.Logger
}

func NewLogEvents(log *logrus.Logger) *LogEvents {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &LogEvents{log: log}
}

func (e *LogEvents) Record(row int, outcome Outcome, detail string) {
	entry := e.log.WithFields(logrus.Fields{
		"row":   row,
		"state": outcome,
	})

	switch outcome {
	case Errored:
		entry.Error(detail)
	case FolderNotFound:
		entry.Warn(detail)
	default:
		entry.Info(detail)
	}
}

func (e *LogEvents) Summary(stats Stats) {
	e.log.WithFields(logrus.Fields{
		"total":   stats.Total,
		"done":    stats.Done,
		"skipped": stats.Skipped,
		"errors":  stats.Errors,
	}).Info("pass complete")
}

type discard struct{}

func (discard) Record(int, Outcome, string) {}
func (discard) Summary(Stats)               {}
