package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treesplit/pkg/cache"
	"github.com/matzehuels/treesplit/pkg/server"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr         string
		maxBodyBytes int64
		noCache      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the partition API over HTTP",
		Long: `Serve the partition API over HTTP.

Routes:
  GET  /healthz         build information
  GET  /v1/palettes     built-in palettes
  POST /v1/partition    {"weights": [...], "rect": {...}, "max_depth": n}
  POST /v1/render       pipeline options, ?format=svg|png|pdf|json|dxf

The server stops gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") && c.Config.Server.Addr != "" {
				addr = c.Config.Server.Addr
			}
			if !cmd.Flags().Changed("max-body-bytes") && c.Config.Server.MaxBodyBytes > 0 {
				maxBodyBytes = c.Config.Server.MaxBodyBytes
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			srv := server.New(server.Config{
				Addr:         addr,
				MaxBodyBytes: maxBodyBytes,
				Runner:       runner,
				Logger:       c.Logger,
			})

			backend := c.Config.Cache.Backend
			if noCache {
				backend = cache.BackendNone
			} else if backend == "" {
				backend = cache.BackendFile
			}
			printKeyValue("Address", StyleLink.Render("http://"+srv.Addr()))
			printKeyValue("Cache", backend)
			printNewline()

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().Int64Var(&maxBodyBytes, "max-body-bytes", 0, "request body limit in bytes (default 8 MiB)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
