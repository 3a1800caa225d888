package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pborman/getopt/v2"
)

// AllBuiltins holds every registered shell builtin, keyed by exact,
// case-sensitive command name. Builtins are consulted before any child
// process is created.
var AllBuiltins = make(map[string]ShellBuiltin)

type ShellBuiltin interface {
	Main(s *Shell, args []string) Outcome
}

type ShellBuiltinFunc func(s *Shell, args []string) Outcome

func (f ShellBuiltinFunc) Main(s *Shell, args []string) Outcome {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// Cd changes the interpreter's working directory to args[1].
//
// A missing or bad target is reported and leaves the directory unchanged;
// cd never terminates the loop.
func Cd(s *Shell, args []string) Outcome {
	switch len(args) {
	case 1:
		fmt.Fprintf(s.Stderr(), "%s: missing argument\n", args[0])
		return OutcomeContinue
	case 2:
		if err := s.chdir(args[1]); err != nil {
			fmt.Fprintf(s.Stderr(), "%s: %v\n", args[0], err)
		}
		return OutcomeContinue
	default:
		fmt.Fprintf(s.Stderr(), "%s: too many arguments\n", args[0])
		return OutcomeContinue
	}
}

// chdir moves the shell to path, resolving it against the current working
// directory. The target must exist and be a directory before any state
// changes.
func (s *Shell) chdir(path string) error {
	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(s.cwd, target)
	}
	target = filepath.Clean(target)

	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", path)
	}

	if s.config.ChdirProcess {
		if err := os.Chdir(target); err != nil {
			return err
		}
	}

	s.cwd = target
	return nil
}

// Exit terminates the main loop. Arguments are ignored and no child process
// is involved.
func Exit(s *Shell, args []string) Outcome {
	return OutcomeTerminate
}

// Pwd prints the shell's working directory.
func Pwd(s *Shell, args []string) Outcome {
	fmt.Fprintln(s.Stdout(), s.Getwd())
	return OutcomeContinue
}

// Help lists the registered builtins.
func Help(s *Shell, args []string) Outcome {
	opts := getopt.New()
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := s.Stderr()
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "usage: help")
		fmt.Fprintln(w, "List the interpreter's builtin commands.")
		return OutcomeContinue
	}

	w := s.Stdout()
	fmt.Fprintln(w, "These commands run inside the interpreter itself.")
	fmt.Fprintln(w)

	var builtins []string
	for k := range AllBuiltins {
		builtins = append(builtins, k)
	}
	sort.Strings(builtins)

	for _, name := range builtins {
		fmt.Fprintln(w, name)
	}

	return OutcomeContinue
}

func init() {
	AllBuiltins["cd"] = ShellBuiltinFunc(Cd)
	AllBuiltins["exit"] = ShellBuiltinFunc(Exit)
	AllBuiltins["pwd"] = ShellBuiltinFunc(Pwd)
	AllBuiltins["help"] = ShellBuiltinFunc(Help)
}
