package cli

import (
	"errors"
	"net"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tempomaze/pkg/cache"
	"github.com/matzehuels/tempomaze/pkg/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the drawing, plan and scene API over HTTP",
		Long: `Serve the drawing, plan and scene API over HTTP.

Artifacts are cached in Redis when a redis_url is configured
(TEMPOMAZE_REDIS_URL), otherwise in the file cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache, cache.NewScopedKeyer(nil, "api:"))
			if err != nil {
				return err
			}
			defer runner.Close()

			addr = orDefault(addr, c.Config.Server.Addr)
			srv := server.New(runner, server.Options{
				Defaults: c.pipelineOptions(),
				Logger:   c.Logger,
			})
			printInfo("Listening on %s", StyleHighlight.Render(addr))
			printNextStep("Try", "curl -s http://localhost"+portOf(addr)+"/healthz")
			err = srv.ListenAndServe(ctx, addr)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}

func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return ":" + port
	}
	return ""
}
