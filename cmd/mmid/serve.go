package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/polzovatel/mmid-page-model/internal/browser"
	"github.com/polzovatel/mmid-page-model/internal/server"
	"github.com/polzovatel/mmid-page-model/internal/snapshot"
	"github.com/polzovatel/mmid-page-model/internal/tools"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		cfg     server.Config
		storage string
		start   string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start an MCP server driving one browser page",
		Long: `Start a Model Context Protocol (MCP) server whose tools navigate a browser
page, tag its interactive elements and act on them by identifier.

Supported transports:
  stdio             Standard I/O (default)
  streamable-http   Streamable HTTP transport

Examples:
  mmid serve
  mmid serve --transport streamable-http --port 8080 --url https://example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			launcher, err := browser.NewLauncher(ctx, a.cfg.BrowserOptions(), a.logger.With().Str("comp", "browser").Logger())
			if err != nil {
				return err
			}
			defer launcher.Close()

			ctrl, err := launcher.NewController(ctx, storage)
			if err != nil {
				return err
			}
			defer ctrl.Close(context.Background())

			if start != "" {
				if err := ctrl.Navigate(ctx, start); err != nil {
					return err
				}
			}
			live := snapshot.NewLivePage(ctrl.Page(), a.logger.With().Str("comp", "snapshot").Logger())
			toolbox := tools.New(ctrl, a.svc, live, a.logger.With().Str("comp", "tools").Logger())
			return server.New(toolbox, a.logger.With().Str("comp", "mcp").Logger()).Serve(cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.Transport, "transport", "stdio", "Transport: stdio, streamable-http")
	cmd.Flags().IntVar(&cfg.Port, "port", 8080, "HTTP port for streamable-http transport")
	cmd.Flags().StringVar(&storage, "storage", "", "Load browser storage state from this file")
	cmd.Flags().StringVar(&start, "url", "", "Open this URL before serving")
	return cmd
}
