package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func AuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Print the session audit trail as JSON",
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

			raw, err := app.Log.ExportJSON()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(raw, '\n'))
			return err
		},
	}
	return cmd
}

func ResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear every answer and the audit trail",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			root, err := os.Getwd()
			if err != nil {
				return err
			}
			app, err := OpenApp(root)
			if err != nil {
				return err
			}
			defer app.Close()

			app.Store.Reset()
			app.Log.Reset()
			fmt.Fprintln(cmd.ErrOrStderr(), "session cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}
