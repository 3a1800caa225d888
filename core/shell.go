package core

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/seashell-sh/seashell/core/logger"
)

// DefaultPrompt is written before each read when the configuration doesn't
// supply one.
const DefaultPrompt = "seashell> "

// Outcome tells the main loop what to do after dispatching a command.
type Outcome int

const (
	// OutcomeContinue means the dispatch finished and the loop should
	// prompt again.
	OutcomeContinue Outcome = iota
	// OutcomeTerminate means the loop should end normally.
	OutcomeTerminate
	// OutcomeError means the dispatch failed. The error has already been
	// reported; the loop prompts again.
	OutcomeError
)

// ShellConfig holds the streams and limits for one interpreter instance.
type ShellConfig struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// ChildStdin, when set, is handed to launched processes instead of
	// Stdin. The interactive front end passes the raw terminal file here
	// so children inherit the descriptor directly rather than through a
	// pipe that would steal buffered input.
	ChildStdin io.Reader

	// Prompt is written to Stdout, without a trailing newline, before
	// each read. Empty means DefaultPrompt.
	Prompt string
	// PromptColor colorizes the prompt when set.
	PromptColor *color.Color

	// MaxLineBytes caps the line reader's buffer. Zero means
	// DefaultMaxLineBytes.
	MaxLineBytes int
	// MaxArgs caps the token count per line. Zero means DefaultMaxArgs.
	MaxArgs int

	// Dir is the initial working directory. Empty means the process's.
	Dir string
	// ChdirProcess makes the cd builtin also change the interpreter
	// process's own working directory. Set for the interactive shell,
	// unset for served sessions which each keep an isolated directory.
	ChdirProcess bool

	// Env is the environment handed to children. Nil means os.Environ.
	Env []string

	// Log receives interaction events. Nil disables event logging.
	Log *logger.SessionLogger
}

// Shell is one read-parse-dispatch-execute interpreter.
//
// A Shell is single threaded: each iteration's read, parse and dispatch
// happen strictly in sequence, and at most one supervised child process is
// alive at any time.
type Shell struct {
	config ShellConfig
	reader *LineReader
	cwd    string
}

// NewShell builds a Shell from the given config.
func NewShell(config ShellConfig) (*Shell, error) {
	if config.Stdin == nil || config.Stdout == nil || config.Stderr == nil {
		return nil, fmt.Errorf("shell requires stdin, stdout and stderr")
	}
	if config.Prompt == "" {
		config.Prompt = DefaultPrompt
	}
	if config.Env == nil {
		config.Env = os.Environ()
	}

	cwd := config.Dir
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("shell: can't determine working directory: %w", err)
		}
		cwd = wd
	}

	return &Shell{
		config: config,
		reader: NewLineReader(config.Stdin, config.MaxLineBytes),
		cwd:    cwd,
	}, nil
}

// Getwd returns the shell's working directory.
func (s *Shell) Getwd() string {
	return s.cwd
}

// Stdout returns the shell's output stream.
func (s *Shell) Stdout() io.Writer {
	return s.config.Stdout
}

// Stderr returns the shell's error stream.
func (s *Shell) Stderr() io.Writer {
	return s.config.Stderr
}

// Prompt returns the rendered prompt string.
func (s *Shell) Prompt() string {
	if c := s.config.PromptColor; c != nil {
		return c.Sprint(s.config.Prompt)
	}
	return s.config.Prompt
}

// Run drives the prompt loop until end of input, a read failure or the exit
// builtin. It returns nil on normal termination.
//
// Read failures other than an over-long line are treated like end of input:
// a fixed-capacity reader that keeps failing mid-session is unlikely to
// recover, so the loop reports the error and terminates.
func (s *Shell) Run() error {
	for {
		fmt.Fprint(s.config.Stdout, s.Prompt())

		line, err := s.reader.ReadLine()
		switch {
		case err == io.EOF:
			// Keep the next terminal line clean after ^D.
			fmt.Fprintln(s.config.Stdout)
			return nil

		case err == ErrLineTooLong:
			fmt.Fprintf(s.config.Stderr, "seashell: %v\n", err)
			s.logParseError(err)
			continue

		case err != nil:
			fmt.Fprintf(s.config.Stderr, "seashell: read error: %v\n", err)
			return err
		}

		cmd, err := ParseLine(line, s.config.MaxArgs)
		if err != nil {
			fmt.Fprintf(s.config.Stderr, "seashell: %v\n", err)
			s.logParseError(err)
			continue
		}
		if cmd == nil {
			continue // blank line
		}

		if s.dispatch(cmd) == OutcomeTerminate {
			return nil
		}
		// OutcomeContinue and OutcomeError both prompt again; errors were
		// reported where they happened.
	}
}

// dispatch routes a command to a builtin or to the process launcher.
// Builtins always win over same-named external programs.
func (s *Shell) dispatch(cmd *Command) Outcome {
	if builtin, ok := AllBuiltins[cmd.Name]; ok {
		return builtin.Main(s, cmd.Args)
	}
	return s.launch(cmd)
}

func (s *Shell) logParseError(err error) {
	if s.config.Log == nil {
		return
	}
	s.config.Log.Record(&logger.LogEntry{
		ParseError: &logger.ParseError{Error: err.Error()},
	})
}
