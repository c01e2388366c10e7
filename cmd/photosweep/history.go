package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/photosweep/pkg/photosweep/config"
	"github.com/jamesainslie/photosweep/pkg/photosweep/manifest"
	"github.com/jamesainslie/photosweep/pkg/photosweep/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	Long: `View the history of scan and delete operations.

The manifest stores a record of every scan and deletion performed by
photosweep, including which items were deleted.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a specific operation",
	Long:  `Display detailed information about a specific operation by its ID.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove history entries older than the retention period.`,
	RunE:  runHistoryClean,
}

var (
	historyLimit int
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getManifest returns a manifest instance with the configured directory.
func getManifest() (*manifest.Manifest, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	path := cfg.Manifest.Path
	if path == "" {
		path = config.DefaultManifestPath()
	}
	m, err := manifest.New(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize manifest: %w", err)
	}
	return m, cfg, nil
}

// runHistory lists recent operations.
func runHistory(_ *cobra.Command, _ []string) error {
	m, _, err := getManifest()
	if err != nil {
		return err
	}

	entries, err := m.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No history entries found.")
		printInfo("Run 'photosweep scan' to record a library summary.")
		return nil
	}

	fmt.Printf("\n%-36s  %-19s  %-6s  %-8s  %-12s\n", "ID", "TIME", "TYPE", "ITEMS", "SIZE")
	fmt.Println(strings.Repeat("-", 88))

	for _, entry := range entries {
		fmt.Printf("%-36s  %-19s  %-6s  %-8d  %-12s\n",
			truncateString(entry.ID, 36),
			entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
			entry.Operation,
			entry.Summary.TotalItems,
			types.FormatSize(entry.Summary.TotalBytes),
		)
	}

	fmt.Println(strings.Repeat("-", 88))
	fmt.Printf("\nShowing %d entries. Use --limit to see more.\n", len(entries))
	fmt.Println("Use 'photosweep history show <id>' for details on a specific entry.")

	return nil
}

// runHistoryShow displays details of a specific operation.
func runHistoryShow(_ *cobra.Command, args []string) error {
	m, _, err := getManifest()
	if err != nil {
		return err
	}

	entry, err := m.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	fmt.Println("\nOperation Details")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("ID:         %s\n", entry.ID)
	fmt.Printf("Timestamp:  %s\n", entry.Timestamp.Local().Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Operation:  %s\n", entry.Operation)
	if entry.Library != "" {
		fmt.Printf("Library:    %s\n", entry.Library)
	}
	fmt.Printf("Photos:     %d\n", entry.Summary.Photos)
	fmt.Printf("Videos:     %d\n", entry.Summary.Videos)
	fmt.Printf("Total Size: %s\n", types.FormatSize(entry.Summary.TotalBytes))

	if len(entry.Items) > 0 {
		fmt.Println("\nItems:")
		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("%-12s  %-6s  %s\n", "SIZE", "KIND", "ID")
		fmt.Println(strings.Repeat("-", 60))

		limit := min(len(entry.Items), 50)
		for _, item := range entry.Items[:limit] {
			fmt.Printf("%-12s  %-6s  %s\n", types.FormatSize(item.Size), item.Kind, item.ID)
		}

		if len(entry.Items) > limit {
			fmt.Printf("\n... and %d more items\n", len(entry.Items)-limit)
		}
	}

	return nil
}

// runHistoryClean removes old history entries.
func runHistoryClean(_ *cobra.Command, _ []string) error {
	m, cfg, err := getManifest()
	if err != nil {
		return err
	}

	retentionDays := cfg.Manifest.RetentionDays
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}

	printInfo("Cleaning history entries older than %d days...", retentionDays)

	removed, err := m.Cleanup(retentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	printInfo("Removed %d entries.", removed)
	return nil
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
