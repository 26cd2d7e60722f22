package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/webchatbot/panel/internal/version"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.opts.output == "table" {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "panel %s\n", version.GetInfo())
				return err
			}
			return printValue(cmd.OutOrStdout(), a.opts.output, version.Get())
		},
	}
}
