package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultCurseHost     = "clientupdate-v6.cursecdn.com"
	DefaultGameID        = 432
	DefaultFeedRevision  = "v10"
	DefaultFileHost      = "https://minecraft.curseforge.com"
	DefaultUserAgent     = "CurseClient/7.1 (Microsoft Windows NT 6.1.7601 Service Pack 1) CurseClient/7.1.6018.41463"
	DefaultCacheDir      = "cache"
	DefaultBundleSection = "Modpacks"
	DefaultLogFile       = "curse-catalog.log"
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultHTTPRetries   = 3
)

// Config holds all configuration for the application.
// Values are loaded by Viper from a config file and/or environment variables.
type Config struct {
	CurseHost        string        `mapstructure:"CURSE_HOST"`          // Snapshot feed host, no scheme
	GameID           int           `mapstructure:"CURSE_GAME_ID"`       // 432 is Minecraft
	FeedRevision     string        `mapstructure:"CURSE_FEED_REVISION"` // Path segment before the tier file
	FileHost         string        `mapstructure:"FILE_HOST"`
	UserAgent        string        `mapstructure:"USERAGENT"`
	CacheDir         string        `mapstructure:"CACHE_DIR"`
	BundleSection    string        `mapstructure:"BUNDLE_SECTION"` // Section whose files carry a manifest.json
	LogFile          string        `mapstructure:"LOG_FILE"`
	HTTPTimeout      time.Duration `mapstructure:"HTTP_TIMEOUT"` // Go duration, e.g. 30s
	HTTPRetries      int           `mapstructure:"HTTP_RETRIES"` // An explicit 0 disables retries
	KeepOldSnapshots bool          `mapstructure:"KEEP_OLD_SNAPSHOTS"`

	// Derived from CacheDir, never read from the environment.
	DatabaseDir  string `mapstructure:"-"`
	FilesDir     string `mapstructure:"-"`
	DatabasePath string `mapstructure:"-"`
}

var envKeys = []string{
	"CURSE_HOST",
	"CURSE_GAME_ID",
	"CURSE_FEED_REVISION",
	"FILE_HOST",
	"USERAGENT",
	"CACHE_DIR",
	"BUNDLE_SECTION",
	"LOG_FILE",
	"HTTP_TIMEOUT",
	"HTTP_RETRIES",
	"KEEP_OLD_SNAPSHOTS",
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)   // Path to look for the config file in
	viper.SetConfigName(".env") // Name of config file (without extension)
	viper.SetConfigType("env")  // REQUIRED if the config file does not have the extension in the name

	vipErr := viper.ReadInConfig()
	if _, ok := vipErr.(viper.ConfigFileNotFoundError); ok {
		slog.Info("Config file (.env) not found, relying on environment variables.")
	} else if vipErr != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vipErr)
	}

	// Bind environment variables automatically.
	// Viper will check for an environment variable matching the key name (e.g., CURSE_HOST)
	viper.AutomaticEnv()

	// Explicit binds so Unmarshal sees keys that only exist in the environment
	for _, key := range envKeys {
		if err := viper.BindEnv(key); err != nil {
			slog.Warn("Unable to bind env var", "key", key, "error", err)
		}
	}

	// Unmarshal the config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", err)
	}

	// Viper doesn't handle bool defaults from env well, read the raw value.
	config.KeepOldSnapshots = parseBool("KEEP_OLD_SNAPSHOTS", viper.GetString("KEEP_OLD_SNAPSHOTS"))

	// --- Post-unmarshal processing and defaults ---
	processConfigDefaults(&config)

	if err := validateAndEnsureDirectories(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}

func parseBool(key, raw string) bool {
	if raw == "" {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("Invalid boolean value, defaulting to false", "key", key, "value", raw, "error", err)
		return false
	}
	return v
}

// processConfigDefaults fills in every unset field.
func processConfigDefaults(config *Config) {
	if config.CurseHost == "" {
		config.CurseHost = DefaultCurseHost
	}
	if config.GameID == 0 {
		config.GameID = DefaultGameID
	}
	if config.FeedRevision == "" {
		config.FeedRevision = DefaultFeedRevision
	}
	if config.FileHost == "" {
		config.FileHost = DefaultFileHost
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.CacheDir == "" {
		config.CacheDir = DefaultCacheDir
	}
	if config.BundleSection == "" {
		config.BundleSection = DefaultBundleSection
	}
	if config.LogFile == "" {
		config.LogFile = DefaultLogFile
	}
	if config.HTTPTimeout <= 0 {
		config.HTTPTimeout = DefaultHTTPTimeout
	}
	if config.HTTPRetries < 0 {
		config.HTTPRetries = 0 // Negative means no retries
	} else if config.HTTPRetries == 0 && !viper.IsSet("HTTP_RETRIES") {
		config.HTTPRetries = DefaultHTTPRetries
	}
}

// validateAndEnsureDirectories derives the cache layout from CacheDir and
// creates the directories.
func validateAndEnsureDirectories(config *Config) error {
	if config.CacheDir == "" {
		slog.Error("CACHE_DIR is not set")
		return fmt.Errorf("CACHE_DIR is required")
	}

	config.DatabaseDir = filepath.Join(config.CacheDir, "database")
	config.FilesDir = filepath.Join(config.CacheDir, "files")
	config.DatabasePath = filepath.Join(config.CacheDir, "catalog.db") // Snapshot and file metadata

	for _, dir := range []string{config.CacheDir, config.DatabaseDir, config.FilesDir} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			slog.Info("Cache directory does not exist, creating it", "path", dir)
			if err := os.MkdirAll(dir, 0755); err != nil {
				slog.Error("Failed to create cache directory", "path", dir, "error", err)
				return err
			}
		} else if err != nil {
			slog.Error("Failed to check cache directory", "path", dir, "error", err)
			return err
		}
	}

	return nil
}
