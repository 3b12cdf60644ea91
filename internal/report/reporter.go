// Package report renders reconciliation outcomes. It never influences the
// engine's control flow.
package report

import (
	"github.com/yungbote/edgehound/internal/domain"
	"github.com/yungbote/edgehound/internal/platform/logger"
)

type Reporter interface {
	Report(out domain.Outcome)
	Skipped(line int, err error)
	Notice(msg string, keysAndValues ...interface{})
}

type Summary struct {
	Created          int
	AlreadyExists    int
	ResolutionFailed int
	Skipped          int
}

func (s Summary) Total() int {
	return s.Created + s.AlreadyExists + s.ResolutionFailed + s.Skipped
}

func (s *Summary) Add(status domain.Status) {
	switch status {
	case domain.StatusCreated:
		s.Created++
	case domain.StatusAlreadyExists:
		s.AlreadyExists++
	case domain.StatusResolutionFailed:
		s.ResolutionFailed++
	}
}

func (s *Summary) AddSkipped() {
	s.Skipped++
}

// LogReporter writes one structured log line per outcome.
type LogReporter struct {
	log *logger.Logger
}

func NewLogReporter(log *logger.Logger) *LogReporter {
	return &LogReporter{log: log.With("component", "Report")}
}

func (r *LogReporter) Report(out domain.Outcome) {
	kv := []interface{}{
		"line", out.Record.Line,
		"userName", out.Principal,
		"hostName", out.Record.Host,
		"assumed_type", out.AssumedType.String(),
		"attempts", out.Attempts,
	}
	switch out.Status {
	case domain.StatusCreated:
		r.log.Info("Successfully added relation", kv...)
	case domain.StatusAlreadyExists:
		r.log.Info("Relation already exists, skipping", kv...)
	default:
		r.log.Warn("Failed to add relation", kv...)
	}
}

func (r *LogReporter) Skipped(line int, err error) {
	r.log.Warn("Skipping malformed row", "line", line, "error", err)
}

func (r *LogReporter) Notice(msg string, keysAndValues ...interface{}) {
	r.log.Info(msg, keysAndValues...)
}
