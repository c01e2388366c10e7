package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/photosweep/pkg/photosweep/analysis"
)

var scanCmd = &cobra.Command{
	Use:   "scan [library]",
	Short: "Show the storage breakdown of a library",
	Long: `Load the library and print photo and video counts and sizes.

Each scan is recorded in the history when the manifest is enabled.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

var duplicatesCmd = &cobra.Command{
	Use:     "duplicates [library]",
	Aliases: []string{"dupes"},
	Short:   "List groups of likely duplicates",
	Long: `List items that share a capture time and pixel dimensions.

This is a metadata heuristic, not a content comparison: unrelated items taken
in the same instant at the same resolution are reported as duplicates.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCategory(analysis.CategoryDuplicates),
}

var largeCmd = &cobra.Command{
	Use:   "large [library]",
	Short: "List files at or above the size threshold",
	Long: `List photos and videos whose size is at least the threshold.

The threshold is set in megabytes (1 MB = 1,048,576 bytes), between 5 and 100
in steps of 5. Other values are snapped into that range.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCategory(analysis.CategoryLarge),
}

var burstsCmd = &cobra.Command{
	Use:     "bursts [library]",
	Aliases: []string{"similar"},
	Short:   "List bursts of photos taken within seconds of each other",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runCategory(analysis.CategorySimilar),
}

var screenshotsCmd = &cobra.Command{
	Use:   "screenshots [library]",
	Short: "List screenshots",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCategory(analysis.CategoryScreenshots),
}

func init() {
	largeCmd.Flags().Float64("min-size-mb", 0, "size threshold in MB (default from config, 10)")
	_ = viper.BindPFlag("large_files.minimum_size_mb", largeCmd.Flags().Lookup("min-size-mb"))

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(duplicatesCmd)
	rootCmd.AddCommand(largeCmd)
	rootCmd.AddCommand(burstsCmd)
	rootCmd.AddCommand(screenshotsCmd)
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// runScan prints the storage summary.
func runScan(_ *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	lib, err := openLibrary(ctx, args)
	if err != nil {
		return err
	}
	defer func() { _ = lib.Close() }()

	snap := lib.catalog.Snapshot()
	report := summaryReport(lib.root, snap, time.Since(start))
	for _, walkErr := range lib.store.WalkErrors() {
		report.Warnings = append(report.Warnings, walkErr.Error())
	}

	if lib.manifest != nil {
		if entry, err := lib.manifest.LogScan(snap.Stats()); err != nil {
			printVerbose("Failed to record scan: %v", err)
		} else {
			printVerbose("Recorded scan %s", entry.ID)
		}
	}

	return render(os.Stdout, lib.cfg.Output.Format, report)
}

// runCategory returns a handler that lists what category finds.
func runCategory(category analysis.Category) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		start := time.Now()
		lib, err := openLibrary(ctx, args)
		if err != nil {
			return err
		}
		defer func() { _ = lib.Close() }()

		sortBy, err := sortOrder(lib.cfg.Output.SortBy)
		if err != nil {
			return err
		}

		threshold := lib.cfg.Threshold()
		if category == analysis.CategoryLarge && !analysis.Threshold(lib.cfg.LargeFiles.MinimumSizeMB).Valid() {
			printVerbose("Threshold %g MB adjusted to %s", lib.cfg.LargeFiles.MinimumSizeMB, formatThreshold(threshold))
		}

		found := analyze(category, lib.catalog.Snapshot(), threshold)
		report := found.report(lib.root, nil, sortBy)
		report.Elapsed = time.Since(start)

		return render(os.Stdout, lib.cfg.Output.Format, report)
	}
}

// describeCategory is the one-line hint printed after an empty result.
func describeCategory(category analysis.Category) string {
	return fmt.Sprintf("No %s found.", category)
}
