package core

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seashell-sh/seashell/core/logger"
)

// testSession runs a full session over the given input and returns the
// shell plus its captured stdout and stderr.
func testSession(t *testing.T, input string, mutate func(*ShellConfig)) (*Shell, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	config := ShellConfig{
		Stdin:  strings.NewReader(input),
		Stdout: &stdout,
		Stderr: &stderr,
		Dir:    t.TempDir(),
	}
	if mutate != nil {
		mutate(&config)
	}

	shell, err := NewShell(config)
	require.NoError(t, err)

	require.NoError(t, shell.Run())
	return shell, &stdout, &stderr
}

func TestShellExit(t *testing.T) {
	_, stdout, stderr := testSession(t, "exit\n", nil)

	assert.Equal(t, DefaultPrompt, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestShellExitIgnoresArguments(t *testing.T) {
	_, _, stderr := testSession(t, "exit now please\n", nil)
	assert.Empty(t, stderr.String())
}

func TestShellEndOfInput(t *testing.T) {
	// No dispatch is attempted on absent input; the loop just ends.
	_, stdout, stderr := testSession(t, "", nil)

	assert.Equal(t, DefaultPrompt+"\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestShellBlankLines(t *testing.T) {
	_, stdout, stderr := testSession(t, "\n   \n\t\t\nexit\n", nil)

	// One prompt per iteration, nothing else.
	assert.Equal(t, strings.Repeat(DefaultPrompt, 4), stdout.String())
	assert.Empty(t, stderr.String())
}

func TestShellBuiltinPrecedence(t *testing.T) {
	// Builtins win over same-named externals before any lookup happens.
	shell, _, _ := testSession(t, "", nil)

	outcome := shell.dispatch(&Command{Name: "exit", Args: []string{"exit"}})
	assert.Equal(t, OutcomeTerminate, outcome)
}

func TestShellCdMissingArgument(t *testing.T) {
	shell, _, stderr := testSession(t, "cd\nexit\n", nil)

	assert.Contains(t, stderr.String(), "cd: missing argument")
	// The directory is unchanged and the loop survived to see exit.
	assert.Equal(t, shell.config.Dir, shell.Getwd())
}

func TestShellCdValidDirectory(t *testing.T) {
	target := t.TempDir()

	shell, stdout, stderr := testSession(t, "cd "+target+"\npwd\nexit\n", nil)

	assert.Empty(t, stderr.String())
	assert.Equal(t, filepath.Clean(target), shell.Getwd())
	assert.Contains(t, stdout.String(), filepath.Clean(target)+"\n")
}

func TestShellCdRelative(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "sub"), 0755))

	shell, _, stderr := testSession(t, "cd sub\nexit\n", func(c *ShellConfig) {
		c.Dir = base
	})

	assert.Empty(t, stderr.String())
	assert.Equal(t, filepath.Join(base, "sub"), shell.Getwd())
}

func TestShellCdNonexistent(t *testing.T) {
	shell, _, stderr := testSession(t, "cd /definitely/not/a/real/path\nexit\n", nil)

	assert.Contains(t, stderr.String(), "cd: ")
	assert.Equal(t, shell.config.Dir, shell.Getwd())
}

func TestShellUnknownCommand(t *testing.T) {
	_, _, stderr := testSession(t, "this-command-does-not-exist-xyz\nexit\n", nil)

	assert.Contains(t, stderr.String(), "this-command-does-not-exist-xyz: command not found")
}

func TestShellTooManyArguments(t *testing.T) {
	line := strings.Repeat("tok ", DefaultMaxArgs+1) + "\n"

	_, _, stderr := testSession(t, line+"exit\n", nil)

	assert.Contains(t, stderr.String(), "too many arguments")
}

func TestShellOversizedLine(t *testing.T) {
	input := strings.Repeat("x", 100) + "\npwd\nexit\n"

	shell, stdout, stderr := testSession(t, input, func(c *ShellConfig) {
		c.MaxLineBytes = 32
	})

	assert.Contains(t, stderr.String(), "input line too long")
	// The rest of the oversized line was discarded, so pwd on the next
	// physical line still ran.
	assert.Contains(t, stdout.String(), shell.Getwd()+"\n")
}

func TestShellExternalCommand(t *testing.T) {
	_, stdout, stderr := testSession(t, "echo hello-from-child\nexit\n", nil)

	assert.Contains(t, stdout.String(), "hello-from-child\n")
	assert.Empty(t, stderr.String())
}

func TestShellChildFailureContinues(t *testing.T) {
	// A child that exits non-zero must not end the session.
	_, stdout, _ := testSession(t, "false\necho still-alive\nexit\n", nil)

	assert.Contains(t, stdout.String(), "still-alive\n")
}

func TestShellLogsEvents(t *testing.T) {
	var entries []*logger.LogEntry
	collector := &logger.Logger{Record: func(le *logger.LogEntry) error {
		entries = append(entries, le)
		return nil
	}}

	input := "echo from-test\nnot-a-real-command-xyz\n" +
		strings.Repeat("t ", DefaultMaxArgs+1) + "\nexit\n"
	testSession(t, input, func(c *ShellConfig) {
		c.Log = collector.Sessionless()
	})

	var ran, unknown, parseErrs int
	for _, le := range entries {
		switch {
		case le.RunCommand != nil:
			ran++
			assert.Equal(t, []string{"echo", "from-test"}, le.RunCommand.Command)
			assert.Equal(t, 0, le.RunCommand.ExitCode)
		case le.UnknownCommand != nil:
			unknown++
			assert.Equal(t, "not-a-real-command-xyz", le.UnknownCommand.Command[0])
		case le.ParseError != nil:
			parseErrs++
		}
	}
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, unknown)
	assert.Equal(t, 1, parseErrs)
}

func TestShellGolden(t *testing.T) {
	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	cases := map[string]struct {
		input  string
		stderr bool
	}{
		"help":   {input: "help\nexit\n"},
		"errors": {input: "cd\n \t \nnosuchcmd-xyz\nexit\n", stderr: true},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			_, stdout, stderr := testSession(t, tc.input, nil)

			out := stdout.Bytes()
			if tc.stderr {
				out = stderr.Bytes()
			}
			g.Assert(t, tn, out)
		})
	}
}
