package core

import (
	"errors"
	"io"
)

// DefaultMaxLineBytes is the line capacity used when the configuration
// doesn't supply one.
const DefaultMaxLineBytes = 1024

// ErrLineTooLong is returned by LineReader.ReadLine when an input line
// exceeds the reader's capacity. The unread remainder of the physical line
// has already been discarded when this is returned.
var ErrLineTooLong = errors.New("input line too long")

// LineReader reads one line at a time from an interactive source using a
// fixed-capacity buffer.
//
// It reads the source a byte at a time and never consumes past the
// terminating newline, so the same source can safely be handed to a child
// process between calls.
type LineReader struct {
	src io.Reader
	buf []byte
}

// NewLineReader returns a LineReader over src with the given line capacity.
func NewLineReader(src io.Reader, capacity int) *LineReader {
	if capacity <= 0 {
		capacity = DefaultMaxLineBytes
	}
	return &LineReader{
		src: src,
		buf: make([]byte, capacity),
	}
}

// ReadLine reads the next line, including its trailing newline if one was
// present.
//
// It returns io.EOF once the source is exhausted. A line that fills the
// buffer without a newline is judged too long: the rest of the physical
// line is drained from the source and ErrLineTooLong is returned, so the
// next call starts at the following line rather than mid-line garbage.
func (r *LineReader) ReadLine() (string, error) {
	n := 0
	for n < len(r.buf)-1 {
		count, err := r.src.Read(r.buf[n : n+1])
		if count > 0 {
			n += count
			if r.buf[n-1] == '\n' {
				return string(r.buf[:n]), nil
			}
			continue
		}
		if err == io.EOF {
			if n == 0 {
				return "", io.EOF
			}
			// Final line without a trailing newline.
			return string(r.buf[:n]), nil
		}
		if err != nil {
			return "", err
		}
	}

	// Buffer filled with no newline seen: discard the rest of the physical
	// line so it can't corrupt the next read.
	if err := r.drain(); err != nil {
		return "", err
	}
	return "", ErrLineTooLong
}

func (r *LineReader) drain() error {
	var b [1]byte
	for {
		count, err := r.src.Read(b[:])
		if count > 0 && b[0] == '\n' {
			return nil
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
