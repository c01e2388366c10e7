package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/photosweep/pkg/photosweep/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage photosweep configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/photosweep/config.yaml (if set)
  2. ~/.config/photosweep/config.yaml

Environment variables can override config file settings using the PHOTOSWEEP_ prefix:
  PHOTOSWEEP_LIBRARY=~/Photos
  PHOTOSWEEP_LARGE_FILES_MINIMUM_SIZE_MB=25
  PHOTOSWEEP_TRASH_ENABLED=false`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// envOverrides lists the environment variables config show reports.
var envOverrides = []string{
	"library",
	"exclude",
	"large_files.minimum_size_mb",
	"cache.enabled",
	"cache.path",
	"manifest.enabled",
	"manifest.path",
	"manifest.retention_days",
	"trash.enabled",
	"output.format",
	"output.sort_by",
	"watch.debounce",
	"logging.level",
}

// envName returns the environment variable that overrides key.
func envName(key string) string {
	return config.EnvPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// runConfigShow displays the current configuration.
func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Printf("Config file: %s\n\n", configFile)
	} else {
		fmt.Println("Config file: (using defaults, no file found)")
		fmt.Println()
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("library:                      %s\n", cfg.Library)
	fmt.Printf("exclude:                      %v\n", cfg.Exclude)
	fmt.Printf("large_files.minimum_size_mb:  %g (effective %s)\n", cfg.LargeFiles.MinimumSizeMB, formatThreshold(cfg.Threshold()))
	fmt.Printf("cache.enabled:                %t\n", cfg.Cache.Enabled)
	fmt.Printf("cache.path:                   %s\n", cfg.Cache.Path)
	fmt.Printf("manifest.enabled:             %t\n", cfg.Manifest.Enabled)
	fmt.Printf("manifest.path:                %s\n", cfg.Manifest.Path)
	fmt.Printf("manifest.retention:           %d days\n", cfg.Manifest.RetentionDays)
	fmt.Printf("trash.enabled:                %t\n", cfg.Trash.Enabled)
	fmt.Printf("output.format:                %s\n", cfg.Output.Format)
	fmt.Printf("output.sort_by:               %s\n", cfg.Output.SortBy)
	fmt.Printf("watch.debounce:               %s\n", cfg.WatchDebounce())
	fmt.Printf("logging.level:                %s\n", cfg.Logging.Level)

	fmt.Println("\nEnvironment Overrides:")
	fmt.Println("----------------------")
	anyOverrides := false
	for _, key := range envOverrides {
		name := envName(key)
		if val := os.Getenv(name); val != "" {
			fmt.Printf("%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Println("(none)")
	}

	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(_ *cobra.Command, _ []string) error {
	path := config.ConfigPath()

	created, err := config.WriteDefault(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if !created {
		printInfo("Config file already exists: %s", path)
		return nil
	}

	printInfo("Created default config file: %s", path)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(_ *cobra.Command, _ []string) error {
	path := config.ConfigPath()
	if used := viper.ConfigFileUsed(); used != "" {
		path = used
	}

	fmt.Println(path)

	if _, err := os.Stat(path); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (will use defaults)")
	}

	return nil
}
