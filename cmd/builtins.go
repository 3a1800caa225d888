package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/seashell-sh/seashell/core"
)

// builtinsCmd lists the interpreter's builtin commands.
var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the commands that run inside the interpreter.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var builtins []string

		for name := range core.AllBuiltins {
			builtins = append(builtins, name)
		}

		sort.Strings(builtins)

		for _, v := range builtins {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
