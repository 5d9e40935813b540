package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/uyouii/zeta-algorithms/config"
	"github.com/uyouii/zeta-algorithms/server"
	"github.com/uyouii/zeta-algorithms/utils"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var configPath, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the zeta test over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if err := utils.InitLogger(cfg.Logging.Level); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return server.NewServer(cfg).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Config file (default: ./.zeta.yaml if present)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	return cmd
}
