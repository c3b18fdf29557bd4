package main

import (
	"github.com/spf13/cobra"

	"github.com/lumina-ai/lumina/config"
	srv "github.com/lumina-ai/lumina/internal/server"
)

func serveCMD() *cobra.Command {
	var cfgPath string
	var listen string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			if listen != "" {
				cfg.General.Listen = listen
			}
			return srv.Run(cfg)
		},
	}
	serve.Flags().StringVar(&listen, "addr", "", "listen address (overrides config)")
	serve.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return serve
}
