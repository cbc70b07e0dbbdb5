package cmd

import (
	"fmt"

	"github.com/KaramelBytes/dataqa-cli/internal/analysis"
	"github.com/KaramelBytes/dataqa-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	describeSheet string
	describeJSON  bool
	describeTop   int
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Show per-column statistics for a dataset",
	Example: `  dataqa describe sales.csv
  dataqa describe stock.xlsx --sheet Stock --top 10 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, err := openTable(args[0], describeSheet)
		if err != nil {
			return err
		}
		opt := analysis.DefaultOptions()
		if describeTop > 0 {
			opt.TopValues = describeTop
		}
		report := analysis.Describe(tbl, opt)
		out := cmd.OutOrStdout()
		if describeJSON {
			b, err := utils.PrettyJSON(report)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprint(out, report.Markdown())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVar(&describeSheet, "sheet", "", "Excel: worksheet name (default first sheet)")
	describeCmd.Flags().BoolVar(&describeJSON, "json", false, "print the report as JSON")
	describeCmd.Flags().IntVar(&describeTop, "top", 0, "frequent values to list per text column (default 5)")
}
