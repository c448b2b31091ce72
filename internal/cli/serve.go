package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/internal/server"
)

// serveCommand creates the serve command, which exposes the graph over
// HTTP and pushes updates to editor panels over WebSocket.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the commit graph to editor panels",
		Long: `Serve starts an HTTP server exposing the commit graph and lane layout
as JSON, plus a WebSocket that pushes fresh results whenever the
repository changes. Change detection watches the .git directory and
falls back to polling HEAD.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			svc, err := c.newService(ctx, noCache)
			if err != nil {
				return err
			}

			if addr == "" {
				addr = c.Config.Server.Addr
			}
			srv := server.New(svc, server.Options{
				Addr:         addr,
				PollInterval: c.Config.Server.PollInterval.Std(),
				Logger:       c.Logger,
			})

			printInfo("Serving %s", StyleHighlight.Render(svc.Repo().Root()))
			printDetail("http://%s/api/graph", addr)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the durable snapshot cache")

	return cmd
}
