package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/KaramelBytes/dataqa-cli/internal/ai"
	"github.com/KaramelBytes/dataqa-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	modelsJSON     bool
	modelsProvider string
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect providers and the model catalog",
}

var modelsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the model catalog used for context-window warnings",
	Example: `  dataqa models show
  dataqa models show --only groq
  dataqa models show --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var list []ai.ModelInfo
		for _, m := range ai.Catalog() {
			if modelsProvider != "" && m.Provider != modelsProvider {
				continue
			}
			list = append(list, m)
		}
		out := cmd.OutOrStdout()
		if modelsJSON {
			b, err := utils.PrettyJSON(list)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PROVIDER\tMODEL\tCONTEXT")
		for _, m := range list {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", m.Provider, m.Name, m.ContextTokens)
		}
		return tw.Flush()
	},
}

var modelsProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List known providers with their endpoints and default models",
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PROVIDER\tBASE URL\tDEFAULT MODEL")
		for _, name := range ai.Providers() {
			p, _ := ai.LookupProvider(name)
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.BaseURL, p.DefaultModel)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsShowCmd)
	modelsCmd.AddCommand(modelsProvidersCmd)
	modelsShowCmd.Flags().BoolVar(&modelsJSON, "json", false, "print the catalog as JSON")
	modelsShowCmd.Flags().StringVar(&modelsProvider, "only", "", "only show models for this provider")
}
