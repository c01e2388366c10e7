package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/photosweep/pkg/photosweep/analysis"
	"github.com/jamesainslie/photosweep/pkg/photosweep/deletion"
	"github.com/jamesainslie/photosweep/pkg/photosweep/types"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <category> [library]",
	Short: "Delete what a category finds",
	Long: `Select and delete items from one category.

For duplicates and bursts the first item of every group is kept and the rest
are selected. For large files and screenshots every item is selected.

Categories: duplicates, large, screenshots, similar (alias: bursts).

Deleted files go to the system trash unless trash.enabled is false or
--permanent is given. Every deletion is recorded in the history.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runClean,
}

var (
	cleanDryRun    bool
	cleanYes       bool
	cleanPermanent bool
	cleanMinSizeMB float64
)

func init() {
	cleanCmd.Flags().BoolVarP(&cleanDryRun, "dry-run", "d", false, "preview the selection without deleting")
	cleanCmd.Flags().BoolVarP(&cleanYes, "yes", "y", false, "do not ask for confirmation")
	cleanCmd.Flags().BoolVar(&cleanPermanent, "permanent", false, "delete permanently instead of moving to the trash")
	cleanCmd.Flags().Float64Var(&cleanMinSizeMB, "min-size-mb", 0, "size threshold in MB for the large category")

	rootCmd.AddCommand(cleanCmd)
}

// runClean selects and deletes the items of one category.
func runClean(cmd *cobra.Command, args []string) error {
	category, err := analysis.ParseCategory(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if cleanPermanent {
		viper.Set("trash.enabled", false)
	}

	start := time.Now()
	lib, err := openLibrary(ctx, args[1:])
	if err != nil {
		return err
	}
	defer func() { _ = lib.Close() }()

	threshold := lib.cfg.Threshold()
	if cmd.Flags().Changed("min-size-mb") {
		threshold = analysis.ClampThreshold(cleanMinSizeMB)
	}

	sortBy, err := sortOrder(lib.cfg.Output.SortBy)
	if err != nil {
		return err
	}

	found := analyze(category, lib.catalog.Snapshot(), threshold)
	if found.empty() {
		printInfo("%s", describeCategory(category))
		return nil
	}

	sel := found.selectForDeletion()
	report := found.report(lib.root, sel, sortBy)
	report.DryRun = cleanDryRun

	if !cleanDryRun && !cleanYes {
		if err := render(os.Stdout, lib.cfg.Output.Format, report); err != nil {
			return err
		}
		ok, err := confirm(os.Stdin, os.Stdout, fmt.Sprintf("Delete %d items (%s)?", sel.Count(), types.FormatSize(sel.CachedSize())))
		if err != nil {
			return err
		}
		if !ok {
			printInfo("Aborted.")
			return nil
		}
	}

	if !lib.cfg.Trash.Enabled {
		printVerbose("Trash disabled, deleting permanently")
	}

	coordinator := deletion.New(lib.store, deletion.Options{
		Recorder: lib.recorder(),
		DryRun:   cleanDryRun,
	})

	result, err := coordinator.Apply(ctx, sel, lib.catalog)
	if err != nil {
		var delErr *deletion.Error
		if errors.As(err, &delErr) {
			return fmt.Errorf("nothing was removed from the catalog: %w", err)
		}
		return err
	}

	if !result.DryRun {
		report.Deleted = result.Count
	}
	report.Selected = result.Count
	report.SelectedBytes = result.Bytes
	report.Elapsed = time.Since(start)

	if cleanDryRun || cleanYes {
		return render(os.Stdout, lib.cfg.Output.Format, report)
	}

	printInfo("Deleted %d items, freed %s.", result.Count, types.FormatSize(result.Bytes))
	return nil
}

// confirm asks question on w and reads a yes/no answer from r. Anything
// other than y or yes is a no.
func confirm(r io.Reader, w io.Writer, question string) (bool, error) {
	if _, err := fmt.Fprintf(w, "%s [y/N] ", question); err != nil {
		return false, err
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
