package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		name     string
		line     string
		expected []string
	}{
		{"simple", "ls -l /tmp\n", []string{"ls", "-l", "/tmp"}},
		{"no trailing newline", "ls -l", []string{"ls", "-l"}},
		{"single token", "exit\n", []string{"exit"}},
		{"runs of delimiters", "  ls \t\t -l  \r\n", []string{"ls", "-l"}},
		{"bell delimiter", "ls\a-l\n", []string{"ls", "-l"}},
		{"no quoting", `echo "a b"` + "\n", []string{"echo", `"a`, `b"`}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, err := ParseLine(tc.line, DefaultMaxArgs)
			assert.NoError(t, err)
			if assert.NotNil(t, cmd) {
				assert.Equal(t, tc.expected, cmd.Args)
				assert.Equal(t, tc.expected[0], cmd.Name)
				assert.Equal(t, cmd.Name, cmd.Args[0])
				assert.Equal(t, len(tc.expected), cmd.Argc())
			}
		})
	}
}

func TestParseLineEmpty(t *testing.T) {
	for _, line := range []string{"", "\n", "   ", " \t \r \n", "\a\a"} {
		t.Run(fmt.Sprintf("%q", line), func(t *testing.T) {
			cmd, err := ParseLine(line, DefaultMaxArgs)
			assert.NoError(t, err)
			assert.Nil(t, cmd, "delimiter-only input must not yield a Command")
		})
	}
}

func TestParseLineTooManyArgs(t *testing.T) {
	line := strings.Repeat("tok ", DefaultMaxArgs+1)

	cmd, err := ParseLine(line, DefaultMaxArgs)
	assert.True(t, errors.Is(err, ErrTooManyArgs))
	assert.Nil(t, cmd, "a partial Command must never escape a failed parse")

	// Exactly at the limit is fine.
	line = strings.Repeat("tok ", DefaultMaxArgs)
	cmd, err = ParseLine(line, DefaultMaxArgs)
	assert.NoError(t, err)
	if assert.NotNil(t, cmd) {
		assert.Equal(t, DefaultMaxArgs, cmd.Argc())
	}
}

func TestParseLineCustomMax(t *testing.T) {
	_, err := ParseLine("a b c", 2)
	assert.True(t, errors.Is(err, ErrTooManyArgs))

	cmd, err := ParseLine("a b", 2)
	assert.NoError(t, err)
	assert.NotNil(t, cmd)
}
