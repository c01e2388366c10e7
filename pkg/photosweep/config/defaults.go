// Package config provides configuration management for photosweep.
package config

// Default configuration values for photosweep.
const (
	// DefaultLibrary is the library directory used when none is configured.
	DefaultLibrary = "~/Pictures"

	// DefaultMinimumSizeMB is the default large-file threshold.
	DefaultMinimumSizeMB = 10.0

	// DefaultRetentionDays is the default number of days to retain manifests.
	DefaultRetentionDays = 30

	// DefaultOutputFormat is the report format used when none is given.
	DefaultOutputFormat = "pretty"

	// DefaultSortBy orders file listings.
	DefaultSortBy = "largest"

	// DefaultWatchDebounce is how long the watcher waits for library
	// changes to settle before reloading.
	DefaultWatchDebounce = "2s"
)

// DefaultExclusions are glob patterns skipped when enumerating a library.
var DefaultExclusions = []string{
	"**/.*",
	"**/.thumbnails/**",
	"**/@eaDir/**",
}

// DefaultComponentLevels are the per-component log levels written into a
// fresh config file.
var DefaultComponentLevels = map[string]string{
	"catalog":  "info",
	"deletion": "info",
	"fsstore":  "info",
	"watcher":  "warn",
}
