package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/stratsim/strategies"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the built-in strategies and their parameters",
	Args:  cobra.NoArgs,
	RunE:  runStrategies,
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}

func runStrategies(cmd *cobra.Command, args []string) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Strategy", "Param", "Default", "Min", "Max", "Step"})
	for _, name := range strategies.Names() {
		params, err := strategies.ParamsOf(name)
		if err != nil {
			return err
		}
		if len(params) == 0 {
			table.Append([]string{name, "-", "", "", "", ""})
			continue
		}
		for _, p := range params {
			table.Append([]string{
				name, p.Name,
				fmt.Sprintf("%g", p.Default),
				fmt.Sprintf("%g", p.Min),
				fmt.Sprintf("%g", p.Max),
				fmt.Sprintf("%g", p.Step),
			})
		}
	}
	table.Render()
	return nil
}
