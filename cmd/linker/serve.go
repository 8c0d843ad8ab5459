package linker

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/semtab/linker/pkg/config"
	"github.com/semtab/linker/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the annotation HTTP server",
	Long: `Start the HTTP server exposing annotation over a REST API.

The server provides endpoints for:
- Annotating a single table
- Fetching stored annotations
- Health checks`,
	RunE: runServe,
}

var (
	serveHost      string
	servePort      int
	serveMode      string
	serveGenerator string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (overrides config)")
	serveCmd.Flags().StringVar(&serveMode, "mode", "", "server mode (debug, release, test)")
	serveCmd.Flags().StringVar(&serveGenerator, "generator", "es-lookup", "candidate generator")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveMode != "" {
		cfg.Server.Mode = serveMode
	}
	log := newLogger(cfg)

	annotator, st, err := newAnnotator(cfg, log, serveGenerator, 1)
	if err != nil {
		return err
	}

	srv := server.New(cfg, annotator, st)
	srv.Setup()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	log.Info("server started", "host", cfg.Server.Host, "port", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}
