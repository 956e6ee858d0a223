package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bkarpinos/shorty/internal/app"
	"github.com/bkarpinos/shorty/internal/config"
	"github.com/bkarpinos/shorty/internal/logging"
	"github.com/bkarpinos/shorty/internal/session"
)

var (
	configDir string // Directory containing config.yaml
	cfg       *config.Config
	logger    *zap.Logger
	shorty    *app.App
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shorty",
	Short: "A URL shortener with click analytics",
	Long: `Shorty creates short links that expire after a validity window and
counts every successful redirect. For example:

shorty add https://docs.google.com/... -s docs -v 60
shorty serve
open http://localhost:8080/docs`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	closeApp()
	if err != nil {
		os.Exit(1)
	}
}

// closeApp releases the store opened by setup, if any
func closeApp() {
	if shorty == nil {
		return
	}
	if err := shorty.Close(); err != nil && logger != nil {
		logger.Warn("closing storage", zap.Error(err))
	}
	shorty = nil
}

// setup loads config and wires the application before any command runs
func setup(cmd *cobra.Command, args []string) error {
	closeApp()

	var err error
	cfg, err = config.Load(configDir)
	if err != nil {
		return err
	}

	logger, err = logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return err
	}

	shorty, err = app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	return nil
}

// requireSession gates link commands behind registration
func requireSession(cmd *cobra.Command, args []string) error {
	if err := setup(cmd, args); err != nil {
		return err
	}
	if _, err := shorty.Sessions.Current(); err != nil {
		if errors.Is(err, session.ErrUnregistered) {
			return errors.New("not registered: run `shorty register` first")
		}
		return err
	}
	return nil
}

func init() {
	defaultDir, err := config.DefaultDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", defaultDir, "Directory holding config.yaml")

	rootCmd.AddCommand(registerCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(addCmd, listCmd, openCmd, serveCmd)
	rootCmd.AddCommand(configCmd)
}
