package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bkarpinos/shorty/internal/config"
)

// Config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage shorty configuration",
}

// Set storage directory command
var setStorageDirCmd = &cobra.Command{
	Use:   "storage-dir [path]",
	Short: "Set the directory to store links and the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.SetStorageDir(configDir, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Storage directory set to: %s\n", path)
		fmt.Println("Restart the application for changes to take effect.")
		return nil
	},
}

// View config command
var viewConfigCmd = &cobra.Command{
	Use:   "view",
	Short: "View current configuration",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configDir)
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Config directory: %s\n", cfg.Dir)
		fmt.Printf("Storage directory: %s\n", cfg.StorageDir)
		fmt.Printf("Storage driver: %s\n", cfg.StorageDriver)
		if cfg.File != "" {
			fmt.Printf("Config file: %s\n", cfg.File)
		} else {
			fmt.Printf("Config file: not found (using defaults)\n")
		}

		fmt.Println("\nAll settings:")
		settings := cfg.Settings()
		keys := make([]string, 0, len(settings))
		for k := range settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if k == "session_secret" {
				fmt.Printf("  %s: (hidden)\n", k)
				continue
			}
			fmt.Printf("  %s: %v\n", k, settings[k])
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(setStorageDirCmd, viewConfigCmd)
}
