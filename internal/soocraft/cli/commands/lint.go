package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func LintCmd() *cobra.Command {
	var fix bool
	var stepID string
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check answers for directive language",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return err
			}
			app, err := OpenApp(root)
			if err != nil {
				return err
			}
			defer app.Close()

			failed := false
			for _, step := range app.Bundle.Flow.Steps {
				if stepID != "" && step.ID != stepID {
					continue
				}
				if !step.GateLint && step.ID != "soo_output" && stepID == "" {
					continue
				}
				if fix {
					if n := app.Flow.RewriteStep(step); n > 0 {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: rewrote %d phrase(s)\n", step.ID, n)
					}
				}
				res := app.Flow.EvaluateStep(step)
				if len(res.Findings) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: clean\n", step.ID)
					continue
				}
				for _, f := range res.Findings {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: [%s] %q at %d: %s\n",
						step.ID, f.Severity, f.Match, f.Offset, f.Message)
				}
				if res.HasErrors {
					failed = true
				}
			}
			if failed {
				return fmt.Errorf("lint found blocking findings")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "Apply the mechanical outcome-language rewrite first")
	cmd.Flags().StringVar(&stepID, "step", "", "Lint a single step by id")
	return cmd
}
