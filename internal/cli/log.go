package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"
	prettyjson "github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"
)

// errUsage is returned after the usage line has already been printed.
var errUsage = errors.New("invalid usage")

func logJSONCmd(cmd *cobra.Command, iList ...any) {
	for _, i := range iList {
		m, err := prettyjson.Marshal(i)
		if err != nil {
			m, err = json.MarshalIndent(i, "", "  ")
			if err != nil {
				logErrorCmd(cmd, err)

				return
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n\n", string(m))
	}
}

func logUsageCmd(cmd *cobra.Command, u string) {
	fmt.Fprint(cmd.ErrOrStderr(), color.YellowString("\nusage: %s\n\n", u))
}

func logErrorCmd(cmd *cobra.Command, err error) {
	boldRed := color.New(color.FgRed, color.Bold)
	boldRed.Fprint(cmd.ErrOrStderr(), "\nerror: ")
	fmt.Fprintf(cmd.ErrOrStderr(), "%s\n\n", color.RedString(err.Error()))
}

func logOKCmd(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n\n", color.BlueString(msg))
}

// exactArgs prints the usage line when the argument count is wrong.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			logUsageCmd(cmd, cmd.Use)

			return errUsage
		}

		return nil
	}
}
