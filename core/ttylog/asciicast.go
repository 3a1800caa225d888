package ttylog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// AsciicastFileExt holds the suggested file extension for asciicast files.
const AsciicastFileExt = "cast"

// asciicastLogLine is one event line: [delta-seconds, "i"|"o", data].
type asciicastLogLine struct {
	DeltaSeconds float64
	EventType    string
	Data         string
}

func (l *asciicastLogLine) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{l.DeltaSeconds, l.EventType, l.Data})
}

func (l *asciicastLogLine) UnmarshalJSON(data []byte) error {
	parts := []interface{}{&l.DeltaSeconds, &l.EventType, &l.Data}
	return json.Unmarshal(data, &parts)
}

func writeJSONLine(w io.Writer, structure interface{}) error {
	line, err := json.Marshal(structure)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%s\n", string(line))
	return err
}

func microsecondsToSeconds(micros int64) float64 {
	return float64(micros) / float64(time.Second/time.Microsecond)
}

// NewAsciicastLogSink creates a LogSink compatible with the asciicast v2
// format.
//
// See: https://github.com/asciinema/asciinema/blob/develop/doc/asciicast-v2.md
func NewAsciicastLogSink(w io.Writer) LogSink {
	var (
		firstLogTimeMicros int64
		once               sync.Once
	)

	return func(entry *Entry) error {
		var headerErr error
		once.Do(func() {
			firstLogTimeMicros = entry.TimestampMicros
			// Generic settings that should work to display most outputs.
			headerErr = writeJSONLine(w, map[string]interface{}{
				"version":   2,
				"width":     80,
				"height":    24,
				"timestamp": time.UnixMicro(firstLogTimeMicros).Unix(),
				"title":     "seashell session",
				"env": map[string]interface{}{
					"TERM":  "xterm-256color",
					"SHELL": "/bin/sh",
				},
			})
		})
		if headerErr != nil {
			return headerErr
		}

		if entry.Close {
			// Asciicast has no close event.
			return nil
		}

		deltaSecond := microsecondsToSeconds(entry.TimestampMicros - firstLogTimeMicros)
		direction := "o"
		if entry.FD == FDStdin {
			direction = "i"
		}

		return writeJSONLine(w, &asciicastLogLine{deltaSecond, direction, string(entry.Data)})
	}
}

// AsciicastLogSource reads log events from an asciicast formatted file.
type AsciicastLogSource struct {
	r             *bufio.Reader
	consumeHeader sync.Once
	startMicros   int64
}

var _ LogSource = (*AsciicastLogSource)(nil)

// NewAsciicastLogSource reads log events from an asciicast formatted file.
func NewAsciicastLogSource(r io.Reader) *AsciicastLogSource {
	return &AsciicastLogSource{r: bufio.NewReader(r)}
}

// Next gets the next log entry, it returns io.EOF if there are no more.
func (log *AsciicastLogSource) Next() (*Entry, error) {
	var headerErr error
	log.consumeHeader.Do(func() {
		line, err := log.r.ReadBytes('\n')
		if err != nil {
			headerErr = err
			return
		}
		var header struct {
			Timestamp int64 `json:"timestamp"`
		}
		if err := json.Unmarshal(line, &header); err != nil {
			headerErr = err
			return
		}
		log.startMicros = header.Timestamp * int64(time.Second/time.Microsecond)
	})
	if headerErr != nil {
		return nil, headerErr
	}

	for {
		line, err := log.r.ReadBytes('\n')
		if err != nil {
			return nil, err
		}

		if len(line) == 1 {
			// Skip blank lines.
			continue
		}

		var asciicastLine asciicastLogLine
		if err := json.Unmarshal(line, &asciicastLine); err != nil {
			return nil, err
		}

		// Asciicast doesn't support stderr so it's collapsed into stdout.
		var fd FD
		switch asciicastLine.EventType {
		case "o":
			fd = FDStdout
		case "i":
			fd = FDStdin
		default:
			// Skip unknown events.
			continue
		}

		return &Entry{
			TimestampMicros: log.startMicros + int64(asciicastLine.DeltaSeconds*float64(time.Second/time.Microsecond)),
			FD:              fd,
			Data:            []byte(asciicastLine.Data),
		}, nil
	}
}
