// Package logger captures interaction events for the interpreter as
// newline-delimited JSON so sessions can be audited after the fact.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"
)

// LogEntry is one logged event. Exactly one of the event fields is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	SessionStart   *SessionStart   `json:"session_start,omitempty"`
	SessionEnd     *SessionEnd     `json:"session_end,omitempty"`
	LoginAttempt   *LoginAttempt   `json:"login_attempt,omitempty"`
	RunCommand     *RunCommand     `json:"run_command,omitempty"`
	UnknownCommand *UnknownCommand `json:"unknown_command,omitempty"`
	ParseError     *ParseError     `json:"parse_error,omitempty"`
}

// SessionStart records a new interpreter session.
type SessionStart struct {
	// Interactive is true for a local terminal session, false for a
	// served one.
	Interactive bool `json:"interactive"`
}

// SessionEnd records a session's termination.
type SessionEnd struct{}

// LoginAttempt records an authentication attempt against the served
// interpreter.
type LoginAttempt struct {
	Success    bool   `json:"success"`
	Username   string `json:"username"`
	RemoteAddr string `json:"remote_addr,omitempty"`
}

// RunCommand records a dispatched external command.
type RunCommand struct {
	Command  []string `json:"command"`
	ExitCode int      `json:"exit_code"`
}

// UnknownCommand records a command name that couldn't be resolved to an
// executable.
type UnknownCommand struct {
	Command []string `json:"command"`
	Error   string   `json:"error,omitempty"`
}

// ParseError records a rejected input line.
type ParseError struct {
	Error string `json:"error"`
}

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(le *LogEntry) error

// Logger records interaction events.
type Logger struct {
	Record LogRecorder
}

// NewJsonLinesLogRecorder creates a Logger that exports logs in newline
// delimited JSON object format.
func NewJsonLinesLogRecorder(w io.Writer) *Logger {
	return &Logger{
		Record: func(le *LogEntry) error {
			entry, err := json.Marshal(le)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// NewDiscardLogRecorder creates a Logger that drops every event.
func NewDiscardLogRecorder() *Logger {
	return &Logger{
		Record: func(le *LogEntry) error { return nil },
	}
}

// NewSession creates a logger with a fresh session ID attached.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{logger: l, sessionID: fmt.Sprintf("%d", rand.Uint64())}
}

// Sessionless creates a logger without a session ID.
func (l *Logger) Sessionless() *SessionLogger {
	return &SessionLogger{logger: l}
}

// SessionLogger logs events with a shared session ID.
type SessionLogger struct {
	logger    *Logger
	sessionID string
}

// Record stamps and stores the entry.
func (l *SessionLogger) Record(le *LogEntry) error {
	le.TimestampMicros = time.Now().UnixNano() / int64(time.Microsecond)
	le.SessionID = l.sessionID
	return l.logger.Record(le)
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}
