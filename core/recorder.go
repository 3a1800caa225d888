package core

import (
	"io"
	"sync"

	"github.com/seashell-sh/seashell/core/ttylog"
)

// Recorder captures a session's terminal traffic into a ttylog sink.
//
// Writers for different streams may be used from the parent and a child
// process in sequence; the mutex keeps interleaved events whole.
type Recorder struct {
	mu   sync.Mutex
	sink ttylog.LogSink
}

// NewRecorder creates a Recorder feeding sink.
func NewRecorder(sink ttylog.LogSink) *Recorder {
	return &Recorder{sink: sink}
}

func (r *Recorder) record(fd ttylog.FD, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Recording failures never fail the session itself.
	_ = r.sink(ttylog.NewEntry(fd, data))
}

// WrapInput returns a reader that records everything read through it as
// stdin traffic.
func (r *Recorder) WrapInput(src io.Reader) io.Reader {
	return &recordingReader{r: r, src: src}
}

// WrapOutput returns a writer that records everything written through it.
func (r *Recorder) WrapOutput(fd ttylog.FD, dst io.Writer) io.Writer {
	return &recordingWriter{r: r, fd: fd, dst: dst}
}

// Close marks the end of the session in the sink.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sink(&ttylog.Entry{Close: true})
}

type recordingReader struct {
	r   *Recorder
	src io.Reader
}

func (rr *recordingReader) Read(p []byte) (int, error) {
	n, err := rr.src.Read(p)
	if n > 0 {
		rr.r.record(ttylog.FDStdin, p[:n])
	}
	return n, err
}

type recordingWriter struct {
	r   *Recorder
	fd  ttylog.FD
	dst io.Writer
}

func (rw *recordingWriter) Write(p []byte) (int, error) {
	n, err := rw.dst.Write(p)
	if n > 0 {
		rw.r.record(rw.fd, p[:n])
	}
	return n, err
}
