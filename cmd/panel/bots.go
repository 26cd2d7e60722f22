package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/webchatbot/panel/internal/bots"
)

func newBotsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bots",
		Short: "Inspect the bot catalog",
	}

	var file string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the configured bots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				catalog bots.Catalog
				err     error
			)
			if file != "" {
				catalog, err = bots.LoadCatalog(file)
			} else {
				catalog, err = a.client.FetchCatalog(cmd.Context())
			}
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(catalog.Bots))
			for _, b := range catalog.Bots {
				caps := make([]string, 0, len(b.Capabilities))
				for _, c := range b.Capabilities {
					caps = append(caps, string(c))
				}
				rows = append(rows, []string{b.ID, b.DisplayName(), b.Channel, strings.Join(caps, ", "), b.Description})
			}
			return printTable(cmd.OutOrStdout(), a.opts.output, catalog.Bots,
				[]string{"ID", "Name", "Channel", "Capabilities", "Description"}, rows)
		},
	}
	list.Flags().StringVar(&file, "file", "", "Read a local chatbots.json instead of the API")

	cmd.AddCommand(list)
	return cmd
}
