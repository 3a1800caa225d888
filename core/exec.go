package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/seashell-sh/seashell/core/logger"
)

// ErrNotFound is the error resulting if a path search failed to find an
// executable file.
var ErrNotFound = exec.ErrNotFound

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

// Getenv looks up key in the shell's environment.
func (s *Shell) Getenv(key string) string {
	prefix := key + "="
	for _, kv := range s.config.Env {
		if strings.HasPrefix(kv, prefix) {
			return strings.TrimPrefix(kv, prefix)
		}
	}
	return ""
}

// LookPath searches for an executable named file in the directories named by
// the PATH environment variable. If file contains a slash, it is resolved
// against the shell's working directory and the PATH is not consulted.
func (s *Shell) LookPath(file string) (string, error) {
	if strings.Contains(file, "/") {
		if !filepath.IsAbs(file) {
			file = filepath.Join(s.cwd, file)
		}
		if err := findExecutable(file); err != nil {
			return "", err
		}
		return file, nil
	}
	path := s.Getenv("PATH")
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = s.cwd
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", ErrNotFound
}

// launch runs cmd as a child process and blocks until it has exited or died
// to a signal. The wait never resumes the loop for a child that is merely
// stopped: os/exec keeps waiting through stop/continue events.
//
// The child inherits the shell's streams and environment and runs in the
// shell's working directory. There is no forked interpreter copy in this
// port; an unresolvable name simply fails before any process exists.
func (s *Shell) launch(cmd *Command) Outcome {
	execPath, err := s.LookPath(cmd.Name)
	switch {
	case errors.Is(err, ErrNotFound) || errors.Is(err, fs.ErrNotExist):
		fmt.Fprintf(s.Stderr(), "%s: command not found\n", cmd.Name)
		s.logUnknownCommand(cmd, err)
		return OutcomeContinue
	case errors.Is(err, fs.ErrPermission):
		fmt.Fprintf(s.Stderr(), "%s: permission denied\n", cmd.Name)
		s.logUnknownCommand(cmd, err)
		return OutcomeContinue
	case err != nil:
		fmt.Fprintf(s.Stderr(), "%s: %v\n", cmd.Name, err)
		s.logUnknownCommand(cmd, err)
		return OutcomeContinue
	}

	child := exec.Command(execPath)
	child.Args = cmd.Args
	child.Dir = s.cwd
	child.Env = s.config.Env
	child.Stdout = s.config.Stdout
	child.Stderr = s.config.Stderr
	if s.config.ChildStdin != nil {
		child.Stdin = s.config.ChildStdin
	}

	if err := child.Start(); err != nil {
		fmt.Fprintf(s.Stderr(), "%s: %v\n", cmd.Name, err)
		return OutcomeError
	}

	err = child.Wait()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		// Child exited successfully.
	case errors.As(err, &exitErr):
		// Child exited non-zero or died to a signal. It reported its own
		// failure; the loop just prompts again.
	default:
		fmt.Fprintf(s.Stderr(), "%s: wait: %v\n", cmd.Name, err)
		return OutcomeError
	}

	s.logRunCommand(cmd, child.ProcessState.ExitCode())
	return OutcomeContinue
}

func (s *Shell) logRunCommand(cmd *Command, exitCode int) {
	if s.config.Log == nil {
		return
	}
	s.config.Log.Record(&logger.LogEntry{
		RunCommand: &logger.RunCommand{
			Command:  cmd.Args,
			ExitCode: exitCode,
		},
	})
}

func (s *Shell) logUnknownCommand(cmd *Command, err error) {
	if s.config.Log == nil {
		return
	}
	s.config.Log.Record(&logger.LogEntry{
		UnknownCommand: &logger.UnknownCommand{
			Command: cmd.Args,
			Error:   err.Error(),
		},
	})
}
