package cmd

import (
	"fmt"

	"github.com/KaramelBytes/dataqa-cli/internal/ingest"
	"github.com/KaramelBytes/dataqa-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	previewRows  int
	previewSheet string
	previewJSON  bool
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Load a CSV/TSV/Excel file and show its first rows",
	Example: `  dataqa preview sales.csv
  dataqa preview inventory.xlsx --sheet Stock --rows 10
  dataqa preview orders.csv --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, err := openTable(args[0], previewSheet)
		if err != nil {
			return err
		}
		n := previewRows
		if !cmd.Flags().Changed("rows") && cfg != nil && cfg.PreviewRows > 0 {
			n = cfg.PreviewRows
		}
		if n > tbl.NumRows() {
			n = tbl.NumRows()
		}
		out := cmd.OutOrStdout()
		if previewJSON {
			b, err := utils.PrettyJSON(struct {
				ingest.Metadata
				Preview string `json:"preview"`
			}{tbl.Metadata(), tbl.Preview(n)})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprintf(out, "✓ Loaded %s (%s, %d rows × %d columns)\n\n", tbl.Name, tbl.Format, tbl.NumRows(), len(tbl.Columns))
		fmt.Fprintln(out, tbl.Preview(n))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().IntVarP(&previewRows, "rows", "n", 5, "number of rows to show")
	previewCmd.Flags().StringVar(&previewSheet, "sheet", "", "Excel: worksheet name (default first sheet)")
	previewCmd.Flags().BoolVar(&previewJSON, "json", false, "print metadata and preview as JSON")
}
