package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/KaramelBytes/dataqa-cli/internal/ai"
	"github.com/KaramelBytes/dataqa-cli/internal/answer"
	"github.com/KaramelBytes/dataqa-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	askType        string
	askSheet       string
	askJSON        bool
	askPrintPrompt bool
	askDryRun      bool
)

type askOutput struct {
	answer.Result
	Error string `json:"error,omitempty"`
}

var askCmd = &cobra.Command{
	Use:   "ask <file> <question...>",
	Short: "Ask a question about a dataset",
	Example: `  dataqa ask sales.csv --type Sales "Which region has the highest revenue?"
  dataqa ask stock.xlsx --type Inventory --print-prompt "Which items are below 10 units?"
  dataqa ask invoices.csv --type Invoice --dry-run "Total amount due?"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dt, err := answer.ParseDatasetType(askType)
		if err != nil {
			return err
		}
		question := strings.TrimSpace(strings.Join(args[1:], " "))
		if question == "" {
			return errors.New("question cannot be empty")
		}
		tbl, err := openTable(args[0], askSheet)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if askPrintPrompt || askDryRun {
			summary := answer.BuildSummary(tbl)
			prompt := answer.BuildPrompt(dt, summary, question)
			if askPrintPrompt {
				fmt.Fprintln(out, prompt)
			}
			model := answerConfig().Model
			tokens := utils.CountTokens(prompt)
			parts := utils.TokenBreakdown(map[string]string{"summary": summary.String(), "question": question})
			fmt.Fprintf(out, "Prompt: ~%d tokens (summary ~%d, question ~%d), %d of %d rows sampled\n",
				tokens, parts["summary"], parts["question"], summary.SampleRows, summary.RowCount)
			if ai.ExceedsContext(model, tokens) {
				fmt.Fprintf(out, "⚠ Warning: prompt may exceed the context window of %s\n", model)
			}
			if askDryRun {
				fmt.Fprintln(out, "✓ Dry run: no request sent")
				return nil
			}
		}

		svc, err := answer.NewService(answerConfig())
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		res := svc.Answer(ctx, dt, tbl, question)
		if askJSON {
			o := askOutput{Result: res}
			if res.Err != nil {
				o.Error = res.Err.Error()
			}
			b, err := utils.PrettyJSON(o)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		} else if res.OK() {
			fmt.Fprintln(out, res.Text)
		}
		if !res.OK() {
			if res.Err != nil {
				logger.Debug("answer failed", "error", res.Err)
			}
			return errors.New(res.Text)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askType, "type", "t", string(answer.Sales), "dataset type: Sales | Manufacturing | Invoice | Purchase | Inventory")
	askCmd.Flags().StringVar(&askSheet, "sheet", "", "Excel: worksheet name (default first sheet)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the result as JSON")
	askCmd.Flags().BoolVar(&askPrintPrompt, "print-prompt", false, "print the prompt before sending")
	askCmd.Flags().BoolVar(&askDryRun, "dry-run", false, "build the prompt but do not call the model")
}
