package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/seashell-sh/seashell/core"
	"github.com/seashell-sh/seashell/core/config"
	"github.com/seashell-sh/seashell/core/logger"
	"github.com/seashell-sh/seashell/core/ttylog"
)

var (
	cfgPath    string
	recordPath string
)

// loadConfig loads the configuration directory. It fails if the directory
// was never initialized.
func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(afero.NewOsFs(), cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Couldn't load config: did you run init?")
	}

	return configuration, err
}

// rootCmd starts the interactive interpreter when called without a
// subcommand.
var rootCmd = &cobra.Command{
	Use:   "seashell",
	Short: "A small interactive command interpreter.",
	Long: `An interactive command interpreter: reads one command per line,
runs builtins (cd, exit, pwd, help) in-process and everything else as a
child process, waiting for each child before prompting again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		// An uninitialized directory is fine for interactive use; fall
		// back to the built-in defaults and skip event logging.
		configuration, err := config.Load(afero.NewOsFs(), cfgPath)
		eventLog := logger.NewDiscardLogRecorder()
		switch {
		case errors.Is(err, fs.ErrNotExist):
			configuration = config.Default(afero.NewOsFs(), cfgPath)
		case err != nil:
			return err
		default:
			if fd, logErr := configuration.OpenAppLog(); logErr == nil {
				defer fd.Close()
				eventLog = logger.NewJsonLinesLogRecorder(fd)
			}
		}
		if err := configuration.Validate(); err != nil {
			return err
		}

		var (
			stdin  io.Reader = os.Stdin
			stdout io.Writer = os.Stdout
			stderr io.Writer = os.Stderr
		)

		if recordPath != "" {
			fd, err := os.Create(recordPath)
			if err != nil {
				return err
			}
			defer fd.Close()
			recorder := core.NewRecorder(ttylog.NewAsciicastLogSink(fd))
			defer recorder.Close()
			stdin = recorder.WrapInput(stdin)
			stdout = recorder.WrapOutput(ttylog.FDStdout, stdout)
			stderr = recorder.WrapOutput(ttylog.FDStderr, stderr)
		}

		var promptColor *color.Color
		if term.IsTerminal(int(os.Stdout.Fd())) {
			promptColor = color.New(color.FgGreen, color.Bold)
		}

		sessionLog := eventLog.NewSession()
		sessionLog.Record(&logger.LogEntry{
			SessionStart: &logger.SessionStart{Interactive: true},
		})
		defer sessionLog.Record(&logger.LogEntry{SessionEnd: &logger.SessionEnd{}})

		shell, err := core.NewShell(core.ShellConfig{
			Stdin:  stdin,
			Stdout: stdout,
			Stderr: stderr,
			// Children inherit the terminal descriptor directly so a
			// pipe never races the interpreter for typed-ahead input.
			ChildStdin:   os.Stdin,
			Prompt:       configuration.Prompt,
			PromptColor:  promptColor,
			MaxLineBytes: configuration.MaxLineBytes,
			MaxArgs:      configuration.MaxArgs,
			ChdirProcess: true,
			Log:          sessionLog,
		})
		if err != nil {
			return err
		}

		// A stray ^C at the prompt must not kill the interpreter; a
		// running child shares the terminal's process group and receives
		// the interrupt with default disposition restored across exec.
		interrupts := make(chan os.Signal, 1)
		signal.Notify(interrupts, os.Interrupt)
		defer signal.Stop(interrupts)
		go func() {
			for range interrupts {
				fmt.Fprintln(stdout)
			}
		}()

		return shell.Run()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
	rootCmd.Flags().StringVar(&recordPath, "record", "", "record the session to an asciicast file")
}
