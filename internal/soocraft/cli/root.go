// Package cli wires the cobra command tree. Running soocraft with no
// subcommand opens the wizard.
package cli

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/outcome-tools/soocraft/internal/soocraft/cli/commands"
	"github.com/outcome-tools/soocraft/internal/soocraft/project"
	"github.com/outcome-tools/soocraft/internal/soocraft/tui"
)

func Execute() error {
	return NewRoot().Execute()
}

var runTUI = func(app *commands.App) error {
	m := tui.New(app.Flow, app.Store, app.Pipeline, project.ExportsDir(app.Root), app.Config.Timeout())
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   "soocraft",
		Short: "Guided Statement of Objectives authoring",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			app, err := commands.OpenApp(cwd)
			if err != nil {
				return err
			}
			defer app.Close()
			return runTUI(app)
		},
	}
	root.AddCommand(
		commands.LintCmd(),
		commands.GenerateCmd(),
		commands.ReviewCmd(),
		commands.ShowCmd(),
		commands.ExportCmd(),
		commands.ImportCmd(),
		commands.BundleCmd(),
		commands.AuditCmd(),
		commands.ServeCmd(),
		commands.ResetCmd(),
	)
	return root
}
