// Package ttylog records and replays terminal sessions.
package ttylog

import (
	"io"
	"sync"
	"time"
)

// FD identifies the stream an I/O event belongs to.
type FD int

const (
	FDStdin FD = iota
	FDStdout
	FDStderr
)

// Entry is one recorded terminal event.
type Entry struct {
	// TimestampMicros is the event's UNIX timestamp in microseconds.
	TimestampMicros int64
	// FD is the stream the data moved on.
	FD FD
	// Data is the raw bytes read or written.
	Data []byte
	// Close marks the end of the session.
	Close bool
}

// NewEntry builds an I/O event stamped with the current time.
func NewEntry(fd FD, data []byte) *Entry {
	return &Entry{
		TimestampMicros: time.Now().UnixNano() / int64(time.Microsecond),
		FD:              fd,
		Data:            append([]byte(nil), data...),
	}
}

// LogSink receives log events.
type LogSink func(e *Entry) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available log entry. It returns io.EOF when
	// the source has no more log entries.
	Next() (*Entry, error)
}

// Replay pumps every entry from source into sink.
func Replay(source LogSource, sink LogSink) error {
	for {
		entry, err := source.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := sink(entry); err != nil {
			return err
		}
	}
}

// NewRealTimePlayback wraps next so entries are delivered with the pauses
// of the original session. If maxSleep > 0 it caps each pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(entry *Entry) error {
		once.Do(func() {
			prevTimeMicros = entry.TimestampMicros
		})

		delta := entry.TimestampMicros - prevTimeMicros
		prevTimeMicros = entry.TimestampMicros

		sleepDuration := time.Duration(delta) * time.Microsecond
		if maxSleep > 0 && sleepDuration > maxSleep {
			sleepDuration = maxSleep
		}
		time.Sleep(sleepDuration)

		return next(entry)
	}
}

// NewClientOutput creates a LogSink that writes output events to w the way
// the original client would have seen them. Input and close events are
// dropped.
func NewClientOutput(w io.Writer) LogSink {
	return func(entry *Entry) error {
		if entry.Close || entry.FD == FDStdin {
			return nil
		}
		_, err := w.Write(entry.Data)
		return err
	}
}
