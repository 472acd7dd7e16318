package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/storagereport/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  noArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "storagereport %s\n", version.String())
		},
	}
}
