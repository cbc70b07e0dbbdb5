package cmd

import (
	"fmt"

	"github.com/KaramelBytes/dataqa-cli/internal/answer"
	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the dataset types accepted by ask --type",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, dt := range answer.DatasetTypes() {
			fmt.Fprintln(cmd.OutOrStdout(), dt)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
