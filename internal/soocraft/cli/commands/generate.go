package commands

import (
	"fmt"
	"os"

	"github.com/outcome-tools/soocraft/internal/soocraft/draft"
	"github.com/spf13/cobra"
)

func GenerateCmd() *cobra.Command {
	var accept bool
	var promptOnly bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the SOO draft (or print the prompt)",
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

			if promptOnly {
				app.Pipeline.Client = nil
			}
			out := app.Pipeline.Generate(cmd.Context())
			switch out.Mode {
			case draft.ModePromptOnly:
				fmt.Fprintln(cmd.OutOrStdout(), out.Prompt)
				return nil
			case draft.ModeFailed:
				fmt.Fprintln(cmd.ErrOrStderr(), "generation failed; the prompt below works with any model:")
				fmt.Fprintln(cmd.OutOrStdout(), out.Prompt)
				return out.Err
			}

			fmt.Fprintln(cmd.OutOrStdout(), out.Draft)
			if out.Lint != nil && len(out.Lint.Findings) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "lint: %d error(s), %d warning(s) in the generated text\n",
					out.Lint.ErrorCount, out.Lint.WarnCount)
			}
			if accept {
				app.Pipeline.Accept(out.Draft)
				fmt.Fprintln(cmd.ErrOrStderr(), "draft accepted into the session")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&accept, "accept", false, "Store the generated draft in the session")
	cmd.Flags().BoolVar(&promptOnly, "prompt", false, "Print the prompt instead of calling the endpoint")
	return cmd
}

func ReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Generate critical review questions for the draft",
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

			if err := app.Pipeline.GenerateReviewQuestions(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.Store.Get("soo_output", "review_questions", ""))
			return nil
		},
	}
	return cmd
}
