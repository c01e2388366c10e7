package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/photosweep/pkg/photosweep/catalog"
	"github.com/jamesainslie/photosweep/pkg/photosweep/types"
	"github.com/jamesainslie/photosweep/pkg/photosweep/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [library]",
	Short: "Reload the library whenever it changes",
	Long: `Load the library, then watch it for changes and print an updated summary
after each reload. Changes are debounced (watch.debounce, default 2s).

Press Ctrl+C to stop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// runWatch keeps the catalog in step with the library until interrupted.
func runWatch(_ *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	lib, err := openLibrary(ctx, args)
	if err != nil {
		return err
	}
	defer func() { _ = lib.Close() }()

	printSummaryLine(lib.catalog.Snapshot())

	w, err := watcher.New(lib.loader, watcher.Options{
		Debounce: lib.cfg.WatchDebounce(),
		OnReload: func(result catalog.LoadResult, err error) {
			if err != nil {
				printError("reload failed: %v", err)
				return
			}
			if result.Applied {
				printSummaryLine(lib.catalog.Snapshot())
			}
		},
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if err := w.Watch(lib.root); err != nil {
		return err
	}

	printInfo("Watching %s (%d directories). Press Ctrl+C to stop.", lib.root, w.Watched())
	w.Run(ctx)
	return nil
}

func printSummaryLine(snap *catalog.Snapshot) {
	stats := snap.Stats()
	printInfo("[%s] %d photos, %d videos, %s",
		time.Now().Format("15:04:05"),
		stats.Photos,
		stats.Videos,
		types.FormatSize(stats.TotalBytes),
	)
}
