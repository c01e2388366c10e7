package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/jamesainslie/photosweep/pkg/photosweep/analysis"
	"github.com/jamesainslie/photosweep/pkg/photosweep/logging"
	"github.com/jamesainslie/photosweep/pkg/photosweep/types"
)

// AppName names the XDG subdirectories and the environment prefix.
const AppName = "photosweep"

// EnvPrefix prefixes environment overrides, e.g. PHOTOSWEEP_LIBRARY.
const EnvPrefix = "PHOTOSWEEP"

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// Config represents the application configuration.
type Config struct {
	Library string   `mapstructure:"library"`
	Exclude []string `mapstructure:"exclude"`

	LargeFiles struct {
		MinimumSizeMB float64 `mapstructure:"minimum_size_mb"`
	} `mapstructure:"large_files"`

	Cache struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"cache"`

	Manifest struct {
		Enabled       bool   `mapstructure:"enabled"`
		Path          string `mapstructure:"path"`
		RetentionDays int    `mapstructure:"retention_days"`
	} `mapstructure:"manifest"`

	Trash struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"trash"`

	Output struct {
		Format string `mapstructure:"format"`
		SortBy string `mapstructure:"sort_by"`
	} `mapstructure:"output"`

	Watch struct {
		Debounce string `mapstructure:"debounce"`
	} `mapstructure:"watch"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("library", DefaultLibrary)
	v.SetDefault("exclude", DefaultExclusions)
	v.SetDefault("large_files.minimum_size_mb", DefaultMinimumSizeMB)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", DefaultCachePath())

	v.SetDefault("manifest.enabled", true)
	v.SetDefault("manifest.path", DefaultManifestPath())
	v.SetDefault("manifest.retention_days", DefaultRetentionDays)

	v.SetDefault("trash.enabled", true)

	v.SetDefault("output.format", DefaultOutputFormat)
	v.SetDefault("output.sort_by", DefaultSortBy)

	v.SetDefault("watch.debounce", DefaultWatchDebounce)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means logging.DefaultLogPath
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", DefaultComponentLevels)
}

// Configure points v at the config file and environment. An explicit
// file overrides the search path.
func Configure(v *viper.Viper, file string) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", AppName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
}

// ReadInConfig reads the configured file. A missing file in the search
// path is not an error.
func ReadInConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - file, when non-empty
//   - $XDG_CONFIG_HOME/photosweep/config.yaml
//   - $HOME/.config/photosweep/config.yaml
//
// Environment variables are prefixed with PHOTOSWEEP_
// (e.g., PHOTOSWEEP_LARGE_FILES_MINIMUM_SIZE_MB).
func Load(file string) (*Config, error) {
	v := viper.New()
	Configure(v, file)
	if err := ReadInConfig(v); err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper decodes v into a Config and expands ~ in paths.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, p := range []*string{&cfg.Library, &cfg.Cache.Path, &cfg.Manifest.Path, &cfg.Logging.Path} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return nil, err
		}
		*p = expanded
	}

	return &cfg, nil
}

// Threshold returns the configured large-file bound, snapped into the
// supported range.
func (c *Config) Threshold() analysis.Threshold {
	return analysis.ClampThreshold(c.LargeFiles.MinimumSizeMB)
}

// WatchDebounce parses watch.debounce, falling back to the default.
func (c *Config) WatchDebounce() time.Duration {
	if d, err := time.ParseDuration(c.Watch.Debounce); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultWatchDebounce)
	return d
}

// LoggingOptions converts the logging section for logging.Init.
func (c *Config) LoggingOptions() (logging.Config, error) {
	out := logging.Config{
		Level:      c.Logging.Level,
		Path:       c.Logging.Path,
		Components: c.Logging.Components,
		Rotation: logging.RotationConfig{
			MaxAge:     c.Logging.Rotation.MaxAge,
			MaxBackups: c.Logging.Rotation.MaxBackups,
			Daily:      c.Logging.Rotation.Daily,
		},
	}

	if c.Logging.Rotation.MaxSize != "" {
		size, err := types.ParseSize(c.Logging.Rotation.MaxSize)
		if err != nil {
			return logging.Config{}, fmt.Errorf("invalid logging.rotation.max_size: %w", err)
		}
		out.Rotation.MaxSize = size
	}

	return out, nil
}

// ConfigDir returns $XDG_CONFIG_HOME/photosweep.
func ConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, AppName)
	}
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ConfigPath returns the default config file path.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DataDir returns $XDG_DATA_HOME/photosweep/ for the manifest.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// CacheDir returns $XDG_CACHE_HOME/photosweep/ for the metadata cache.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// DefaultManifestPath returns the default manifest directory.
func DefaultManifestPath() string {
	return filepath.Join(DataDir(), "manifest")
}

// DefaultCachePath returns the default metadata cache directory.
func DefaultCachePath() string {
	return filepath.Join(CacheDir(), "metadata")
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	if err := os.MkdirAll(ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// WriteDefault writes a default config file to path, or ConfigPath() when
// path is empty. It returns false without touching an existing file.
func WriteDefault(path string) (bool, error) {
	if path == "" {
		path = ConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	var components strings.Builder
	for _, name := range []string{"catalog", "deletion", "fsstore", "watcher"} {
		fmt.Fprintf(&components, "    %s: %s\n", name, DefaultComponentLevels[name])
	}

	defaultConfig := fmt.Sprintf(`# photosweep configuration

# Media library directory to analyze
library: %s

# Glob patterns skipped while enumerating the library
exclude:
  - "**/.*"
  - "**/.thumbnails/**"
  - "**/@eaDir/**"

large_files:
  # Large-file threshold in MB (5 to 100, step 5)
  minimum_size_mb: %g

# Metadata cache, keyed by path and validated by size and mtime
cache:
  enabled: true
  path: %s

# Deletion history
manifest:
  enabled: true
  path: %s
  retention_days: %d

# Move deleted media to the system trash instead of removing it
trash:
  enabled: true

output:
  # pretty, plain, json or yaml
  format: %s
  # newest, oldest, largest or smallest
  sort_by: %s

watch:
  debounce: %s

logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means $XDG_STATE_HOME/photosweep/photosweep.log)
  path: ""
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
  components:
%s`, DefaultLibrary, DefaultMinimumSizeMB, DefaultCachePath(), DefaultManifestPath(),
		DefaultRetentionDays, DefaultOutputFormat, DefaultSortBy, DefaultWatchDebounce, components.String())

	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return false, fmt.Errorf("failed to write default config: %w", err)
	}

	return true, nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}
