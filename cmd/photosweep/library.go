package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/jamesainslie/photosweep/pkg/photosweep/catalog"
	"github.com/jamesainslie/photosweep/pkg/photosweep/config"
	"github.com/jamesainslie/photosweep/pkg/photosweep/deletion"
	"github.com/jamesainslie/photosweep/pkg/photosweep/manifest"
	"github.com/jamesainslie/photosweep/pkg/photosweep/mediastore/fsstore"
)

// library is an opened media library with its loaded catalog.
type library struct {
	cfg      *config.Config
	root     string
	store    *fsstore.Store
	catalog  *catalog.Catalog
	loader   *catalog.Loader
	manifest *manifest.Manifest // nil when disabled
}

// loadConfig decodes the global viper state.
func loadConfig() (*config.Config, error) {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// resolveLibrary picks the library root: the argument when given,
// otherwise the configured library.
func resolveLibrary(cfg *config.Config, args []string) (string, error) {
	path := cfg.Library
	if len(args) > 0 && args[0] != "" {
		path = args[0]
	}
	if path == "" {
		return "", errors.New("no library configured; pass a path or set library in the config file")
	}

	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path: %w", err)
	}
	absPath, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	return absPath, nil
}

// openLibrary opens the store for the selected library and loads the
// catalog from it.
func openLibrary(ctx context.Context, args []string) (*library, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	root, err := resolveLibrary(cfg, args)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("library does not exist: %s", root)
		}
		return nil, fmt.Errorf("cannot access library: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library is not a directory: %s", root)
	}

	opts := fsstore.Options{
		Root:     root,
		Exclude:  cfg.Exclude,
		UseTrash: cfg.Trash.Enabled,
	}
	if cfg.Cache.Enabled && !viper.GetBool("no_cache") {
		opts.CachePath = cfg.Cache.Path
	}

	store, err := fsstore.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}

	lib := &library{
		cfg:     cfg,
		root:    root,
		store:   store,
		catalog: catalog.New(),
	}
	lib.loader = catalog.NewLoader(lib.catalog, store)

	if cfg.Manifest.Enabled {
		m, err := manifest.New(cfg.Manifest.Path)
		if err != nil {
			printVerbose("Manifest disabled: %v", err)
		} else {
			lib.manifest = m.WithLibrary(root)
		}
	}

	printVerbose("Loading library %s", root)
	result, err := lib.loader.Load(ctx)
	if err != nil {
		_ = store.Close()
		var authErr *catalog.AuthorizationError
		if errors.As(err, &authErr) {
			return nil, fmt.Errorf("cannot read library %s: access is %s", root, authErr.State)
		}
		return nil, fmt.Errorf("failed to load library: %w", err)
	}
	printVerbose("Loaded %d items in %s", result.Records, result.Elapsed)

	for _, walkErr := range store.WalkErrors() {
		printVerbose("skipped: %v", walkErr)
	}

	return lib, nil
}

// Close releases the store.
func (l *library) Close() error {
	return l.store.Close()
}

// recorder returns the deletion recorder, or nil when the manifest is
// disabled.
func (l *library) recorder() deletion.Recorder {
	if l.manifest == nil {
		return nil
	}
	return l.manifest
}
