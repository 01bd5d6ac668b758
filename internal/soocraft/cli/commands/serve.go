package commands

import (
	"fmt"
	"os"

	"github.com/outcome-tools/soocraft/internal/soocraft/server"
	"github.com/spf13/cobra"
)

func ServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the companion API (local-only)",
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

			if addr == "" {
				addr = app.Config.ListenAddr
			}
			srv := server.New(app.Bundle.Flow, app.Store, app.Linter, app.Log)
			srv.Prompts = app.Pipeline.PromptsText
			fmt.Fprintf(cmd.OutOrStdout(), "soocraft API listening on %s\n", addr)
			return srv.ListenAndServe(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP bind address (default from config)")
	cmd.SetOut(os.Stdout)
	return cmd
}
