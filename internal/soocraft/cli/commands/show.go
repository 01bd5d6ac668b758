package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/outcome-tools/soocraft/internal/soocraft/answers"
	"github.com/spf13/cobra"
)

func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [step]",
		Short: "Show the session's answers, optionally for one step",
		Args:  cobra.MaximumNArgs(1),
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

			for _, step := range app.Bundle.Flow.Steps {
				if len(args) == 1 && step.ID != args[0] {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", step.Title, step.ID)
				values := app.Store.All()
				for _, field := range step.Field {
					v, ok := values[answers.Key(step.ID, field.ID)]
					if !ok {
						continue
					}
					text := fmt.Sprintf("%v", v)
					if strings.Contains(text, "\n") {
						fmt.Fprintf(cmd.OutOrStdout(), "  %s:\n%s\n", field.ID, indent(text, 4))
					} else {
						fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", field.ID, text)
					}
				}
			}
			return nil
		},
	}
	return cmd
}

func indent(text string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}
