package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/uiforge/internal/config"
	"github.com/conneroisu/uiforge/internal/logging"
	"github.com/conneroisu/uiforge/internal/renderer"
	"github.com/conneroisu/uiforge/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the workspace server",
	Long: `Start the workspace server: chat, version history and live preview in
the browser. Changes are pushed to open pages over a websocket.

Examples:
  uiforge serve                     # http://localhost:8080
  uiforge serve --port 3000 --open  # custom port, open the browser`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", config.DefaultPort, "port to listen on")
	serveCmd.Flags().String("host", config.DefaultHost, "host to bind to")
	serveCmd.Flags().Bool("open", false, "open the browser after start")
	serveCmd.Flags().String("mode", "", "initial view mode (preview, source)")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.open", serveCmd.Flags().Lookup("open"))
	_ = viper.BindPFlag("preview.default_mode", serveCmd.Flags().Lookup("mode"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if viper.ConfigFileUsed() != "" {
		config.Watch(func(cfg *config.Config) {
			if level, err := logging.ParseLevel(cfg.Log.Level); err == nil {
				a.logger.SetLevel(level)
				a.logger.Info(context.Background(), "Configuration reloaded", "log_level", level.String())
			}
		}, func(err error) {
			a.logger.Warn(context.Background(), err, "Ignoring invalid configuration change")
		})
	}

	mode, err := renderer.ParseMode(a.cfg.Preview.DefaultMode)
	if err != nil {
		return err
	}
	lr := renderer.New(
		renderer.WithMode(mode),
		renderer.WithSanitize(a.cfg.Preview.Sanitize),
		renderer.WithCopyAck(a.cfg.Preview.CopyAck),
		renderer.WithClipboard(&renderer.MemoryClipboard{}),
		renderer.WithLogger(a.logger),
	)

	srv := server.New(a.cfg, a.orch, lr, a.logger)
	fmt.Fprintf(cmd.OutOrStdout(), "uiforge workspace at http://%s\n", srv.Addr())

	return srv.Start(ctx)
}
