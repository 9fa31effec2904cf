package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/paiflow/app"
	"github.com/kbukum/paiflow/version"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if cfg.Version == "" {
				cfg.Version = version.Version
			}
			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			return a.Serve(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port, overriding server.port")
	return cmd
}
