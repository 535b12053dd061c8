package cmd

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dhcgn/circuit-maintenance-parser/provider"
)

// NewProvidersCmd lists the registered providers with the input they accept.
func NewProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the supported provider parsers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return pterm.DefaultTable.
				WithHasHeader().
				WithData(providerRows()).
				WithWriter(cmd.OutOrStdout()).
				Render()
		},
	}
}

func providerRows() [][]string {
	rows := [][]string{{"Parser", "Input", "Default organizer", "Processors"}}
	for _, d := range provider.Descriptors() {
		in := "raw file or email"
		if d.RequiresEmail {
			in = "email only"
		}
		organizer := d.DefaultOrganizer
		if organizer == "" {
			organizer = "-"
		}
		names := make([]string, 0, len(d.Processors))
		for _, p := range d.Processors {
			names = append(names, p.Name())
		}
		rows = append(rows, []string{string(d.Type), in, organizer, strings.Join(names, ", ")})
	}
	return rows
}
