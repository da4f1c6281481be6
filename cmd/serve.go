package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/relampo/relampo-yml-editor-sub000/api/rest"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/logger"
)

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the editor REST API",
	Example: `  relampo-editor serve
  relampo-editor serve --address :9090 --config editor.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddress, "address", "a", "", "listen address (overrides server.address)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	serverCfg := rest.ConfigFrom(cfg)
	if serveAddress != "" {
		serverCfg.Address = serveAddress
	}

	log := logger.Named("rest")
	server, err := rest.NewServer(serverCfg, log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting editor API",
		zap.String("address", serverCfg.Address),
		zap.Int("max_sessions", serverCfg.MaxSessions))
	if err := server.StartWithContext(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

