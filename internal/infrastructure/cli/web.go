package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskforce/internal/infrastructure/web"
)

var webAddr string

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the browser UI",
	Long: `Serve the browser UI. The page talks to this process over a
WebSocket; this process talks to the backend configured by backend.url.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appState.cfg
		if webAddr != "" {
			cfg.Web.Addr = webAddr
		}
		ctrl, err := newController()
		if err != nil {
			return err
		}
		server := web.NewServer(cfg.Web.Addr, ctrl, appState.logger.Named("web"))

		ctx, stop := interruptible(cmd.Context())
		defer stop()

		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s browser UI on %s (backend %s)\n",
			color.GreenString("Serving"), cfg.Web.Addr, cfg.Backend.URL)
		return server.Run(ctx)
	},
}

func init() {
	webCmd.Flags().StringVar(&webAddr, "addr", "", "Listen address (overrides web.addr)")
	RootCmd.AddCommand(webCmd)
}
