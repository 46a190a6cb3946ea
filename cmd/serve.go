package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photobook/internal/ai"
	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/photobook"
	"github.com/kozaktomas/photobook/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the photobook API server.
Uploaded photos are composed into books which can then be edited through
the intent, gesture and undo/redo endpoints. Books are stored in the
database named by DATABASE_URL (SQLite by default).`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (defaults to WEB_PORT or 8080)")
	serveCmd.Flags().String("host", "", "Host to bind to (defaults to WEB_HOST or 0.0.0.0)")
	serveCmd.Flags().Bool("memory", false, "Keep books in memory only")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if port := mustGetInt(cmd, "port"); port > 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider, err := ai.NewProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	if provider != nil {
		fmt.Printf("Narrative enrichment enabled (%s)\n", provider.Name())
	}

	if err := os.MkdirAll(cfg.Web.MediaDir, 0o755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}

	var server *web.Server
	builder := photobook.New(cfg, provider)
	if mustGetBool(cmd, "memory") {
		fmt.Println("Books are kept in memory only")
		server = web.NewServer(cfg, builder, nil)
	} else {
		store, closer, err := openStorage(ctx, cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer closer.Close()
		server = web.NewServer(cfg, builder, store)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting photobook server on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
