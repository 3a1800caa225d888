package ttylog

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsciicastRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sink := NewAsciicastLogSink(&buf)

	base := int64(1700000000_000000)
	written := []*Entry{
		{TimestampMicros: base, FD: FDStdout, Data: []byte("seashell> ")},
		{TimestampMicros: base + 250_000, FD: FDStdin, Data: []byte("ls\n")},
		{TimestampMicros: base + 500_000, FD: FDStdout, Data: []byte("file-a\nfile-b\n")},
	}
	for _, e := range written {
		require.NoError(t, sink(e))
	}
	require.NoError(t, sink(&Entry{Close: true}))

	// The header is one JSON object declaring asciicast v2.
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4, "header plus one line per I/O event")

	var header map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &header))
	assert.EqualValues(t, 2, header["version"])

	// Reading the file back yields the same stream contents.
	source := NewAsciicastLogSource(&buf)
	for i, want := range written {
		got, err := source.Next()
		require.NoError(t, err, "entry %d", i)
		assert.Equal(t, want.FD, got.FD)
		assert.Equal(t, want.Data, got.Data)
	}
	_, err := source.Next()
	assert.Equal(t, io.EOF, err)
}

func TestAsciicastTimestampsAreRelative(t *testing.T) {
	var buf bytes.Buffer
	sink := NewAsciicastLogSink(&buf)

	base := int64(1700000000_000000)
	require.NoError(t, sink(&Entry{TimestampMicros: base, FD: FDStdout, Data: []byte("a")}))
	require.NoError(t, sink(&Entry{TimestampMicros: base + 1_500_000, FD: FDStdout, Data: []byte("b")}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var event []interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &event))
	assert.InDelta(t, 1.5, event[0], 0.001)
	assert.Equal(t, "o", event[1])
}

func TestClientOutput(t *testing.T) {
	var out bytes.Buffer
	sink := NewClientOutput(&out)

	require.NoError(t, sink(&Entry{FD: FDStdout, Data: []byte("visible ")}))
	require.NoError(t, sink(&Entry{FD: FDStdin, Data: []byte("hidden")}))
	require.NoError(t, sink(&Entry{FD: FDStderr, Data: []byte("also visible")}))
	require.NoError(t, sink(&Entry{Close: true}))

	assert.Equal(t, "visible also visible", out.String())
}

type sliceSource struct {
	entries []*Entry
}

func (s *sliceSource) Next() (*Entry, error) {
	if len(s.entries) == 0 {
		return nil, io.EOF
	}
	next := s.entries[0]
	s.entries = s.entries[1:]
	return next, nil
}

func TestReplay(t *testing.T) {
	source := &sliceSource{entries: []*Entry{
		{FD: FDStdout, Data: []byte("one")},
		{FD: FDStdout, Data: []byte("two")},
	}}

	var seen []string
	err := Replay(source, func(e *Entry) error {
		seen = append(seen, string(e.Data))
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, seen)
}
