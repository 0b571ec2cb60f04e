// Package cli implements the scriptable a3kd subcommands. Each subcommand
// performs one or two calls against the experiment service and prints the
// result as JSON.
package cli

import (
	"errors"

	"a3kd/internal/api"

	"github.com/spf13/cobra"
)

var errNoClient = errors.New("experiment service client is not configured")

var client api.Client

// SetClient sets the client used by every subcommand.
func SetClient(c api.Client) {
	client = c
}

func requireClient() (api.Client, error) {
	if client == nil {
		return nil, errNoClient
	}

	return client, nil
}

// run adapts a subcommand body so failures are printed the same way everywhere.
func run(fn func(cmd *cobra.Command, c api.Client, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := requireClient()
		if err == nil {
			err = fn(cmd, c, args)
		}
		if err != nil {
			logErrorCmd(cmd, err)
		}

		return err
	}
}

func NewHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the experiment service",
		Long:  `Check that the experiment service is reachable.`,
		Args:  exactArgs(0),
		RunE: run(func(cmd *cobra.Command, c api.Client, _ []string) error {
			st, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}
			logJSONCmd(cmd, st)

			return nil
		}),
	}
}
