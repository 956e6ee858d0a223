package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Serve command
var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the short link HTTP server",
	Args:    cobra.NoArgs,
	PreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			port, _ := cmd.Flags().GetInt("port")
			shorty.SetPort(port)
		}
		if cmd.Flags().Changed("not-found") {
			cfg.NotFoundURL, _ = cmd.Flags().GetString("not-found")
		}
		if cfg.AppEnv == "production" {
			gin.SetMode(gin.ReleaseMode)
		}

		// Create the server
		srv := shorty.NewServer()

		// Handle graceful shutdown
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		// Start the server in a goroutine
		serveErr := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		fmt.Printf("Shorty server started at %s\n", srv.BaseURL())
		fmt.Printf("Press Ctrl+C to stop the server\n")

		// Wait for interrupt signal or a failed listener
		select {
		case <-stop:
		case err, ok := <-serveErr:
			if ok {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		}

		// Shutdown gracefully with timeout
		fmt.Println("\nShutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}

		fmt.Println("Server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on (overrides config)")
	serveCmd.Flags().String("not-found", "", "URL to redirect to when a shortcode is not found (optional)")
}
