package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/photosweep/pkg/photosweep/config"
	"github.com/jamesainslie/photosweep/pkg/photosweep/logging"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "photosweep [library]",
		Short: "Find photos and videos worth deleting",
		Long: `Photosweep analyzes a photo and video library and helps you reclaim space.

It finds likely duplicates, large files, screenshots and bursts of similar
photos, and can delete a selection of them in one step.

Examples:
  photosweep                       # Storage summary of the configured library
  photosweep ~/Pictures            # Summary of a specific library
  photosweep duplicates            # List duplicate groups
  photosweep large --min-size-mb 50
  photosweep clean duplicates -d   # Preview a cleanup
  photosweep -o json bursts        # JSON output
  photosweep history               # View deletion history`,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: initializeLogging,
		RunE:              runScan,
		SilenceUsage:      true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/photosweep/config.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (pretty, plain, json, yaml)")
	rootCmd.PersistentFlags().StringSliceP("exclude", "e", nil, "exclude patterns (can be specified multiple times)")
	rootCmd.PersistentFlags().String("sort", "", "file ordering (newest, oldest, largest, smallest)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
	rootCmd.PersistentFlags().Bool("no-cache", false, "bypass the metadata cache")

	// Bind flags to viper
	_ = viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("exclude", rootCmd.PersistentFlags().Lookup("exclude"))
	_ = viper.BindPFlag("output.sort_by", rootCmd.PersistentFlags().Lookup("sort"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("no_cache", rootCmd.PersistentFlags().Lookup("no-cache"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	config.Configure(viper.GetViper(), cfgFile)
	if err := config.ReadInConfig(viper.GetViper()); err != nil {
		printError("%v", err)
	}
}

// initializeLogging starts file logging for every command. Verbose mode
// mirrors debug output to stderr.
func initializeLogging(_ *cobra.Command, _ []string) error {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return err
	}

	opts, err := cfg.LoggingOptions()
	if err != nil {
		return err
	}
	if getVerbose() {
		opts.ConsoleLevel = "debug"
	}

	if err := logging.Init(opts); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()

	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		return err
	}
	return nil
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
