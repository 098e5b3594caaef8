// Package logger provides session logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// SessionLogger records calculator session events.
type SessionLogger struct {
	*logrus.Entry
}

// NewSessionLogger creates a session logger tagged with the session id.
func NewSessionLogger(baseLogger *logrus.Logger, sessionID string) *SessionLogger {
	return &SessionLogger{
		Entry: baseLogger.WithFields(logrus.Fields{
			"component":  "session",
			"session_id": sessionID,
		}),
	}
}

// LogMutation logs a change to the session state.
func (sl *SessionLogger) LogMutation(operation string, outcomeID int, budget int64, outcomes int) {
	sl.WithFields(logrus.Fields{
		"operation":  operation,
		"outcome_id": outcomeID,
		"budget":     budget,
		"outcomes":   outcomes,
	}).Info("Session updated")
}

// LogRejected logs a mutation that could not be applied.
func (sl *SessionLogger) LogRejected(operation string, err error) {
	sl.WithError(err).WithField("operation", operation).Warn("Session update rejected")
}

// LogConnection logs a live session opening or closing.
func (sl *SessionLogger) LogConnection(event, remoteAddr string) {
	sl.WithFields(logrus.Fields{
		"event":       event,
		"remote_addr": remoteAddr,
	}).Info("Live session connection event")
}
