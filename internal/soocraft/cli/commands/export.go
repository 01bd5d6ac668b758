package commands

import (
	"fmt"
	"os"

	"github.com/outcome-tools/soocraft/internal/soocraft/audit"
	"github.com/outcome-tools/soocraft/internal/soocraft/export"
	"github.com/outcome-tools/soocraft/internal/soocraft/project"
	"github.com/spf13/cobra"
)

func ExportCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the answers snapshot (inputs.yml)",
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

			raw, err := export.MarshalSnapshot(export.Snapshot(app.Store, audit.WizardVersion))
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(raw)
				return err
			}
			if err := os.WriteFile(outPath, raw, 0o644); err != nil {
				return err
			}
			app.Log.RecordEvent("inputs_exported", map[string]any{"path": outPath})
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func ImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <inputs.yml>",
		Short: "Merge a previously exported snapshot into the session",
		Args:  cobra.ExactArgs(1),
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

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := export.Restore(app.Store, raw); err != nil {
				return err
			}
			app.Log.RecordEvent("inputs_imported", map[string]any{"path": args[0]})
			fmt.Fprintln(cmd.ErrOrStderr(), "answers merged; existing answers not present in the file were kept")
			return nil
		},
	}
	return cmd
}

func BundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Write the full deliverable bundle (zip)",
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

			path, err := export.WriteBundle(project.ExportsDir(root), app.Store, app.Log,
				app.Pipeline.PromptsText(), audit.WizardVersion)
			if err != nil {
				return err
			}
			app.Log.RecordEvent("bundle_exported", map[string]any{"path": path})
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	return cmd
}
