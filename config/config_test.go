package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestProcessConfigDefaults(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		viper.Reset()
		cfg := Config{}
		processConfigDefaults(&cfg)

		if cfg.CurseHost != DefaultCurseHost {
			t.Errorf("Expected CurseHost to be %s, got %s", DefaultCurseHost, cfg.CurseHost)
		}
		if cfg.GameID != 432 {
			t.Errorf("Expected GameID to be 432, got %d", cfg.GameID)
		}
		if cfg.FeedRevision != "v10" {
			t.Errorf("Expected FeedRevision to be v10, got %s", cfg.FeedRevision)
		}
		if cfg.BundleSection != "Modpacks" {
			t.Errorf("Expected BundleSection to be Modpacks, got %s", cfg.BundleSection)
		}
		if cfg.UserAgent == "" {
			t.Error("Expected UserAgent to have a default value")
		}
		if cfg.HTTPTimeout != 30*time.Second {
			t.Errorf("Expected HTTPTimeout to be 30s, got %s", cfg.HTTPTimeout)
		}
		if cfg.HTTPRetries != DefaultHTTPRetries {
			t.Errorf("Expected HTTPRetries to be %d, got %d", DefaultHTTPRetries, cfg.HTTPRetries)
		}
	})

	t.Run("respects existing values", func(t *testing.T) {
		viper.Reset()
		cfg := Config{
			CurseHost:     "mirror.example.com",
			FeedRevision:  "v11",
			UserAgent:     "custom-agent",
			BundleSection: "Bundles",
			HTTPTimeout:   time.Second,
			HTTPRetries:   7,
		}
		processConfigDefaults(&cfg)

		if cfg.CurseHost != "mirror.example.com" {
			t.Errorf("Expected CurseHost to stay mirror.example.com, got %s", cfg.CurseHost)
		}
		if cfg.FeedRevision != "v11" {
			t.Errorf("Expected FeedRevision to stay v11, got %s", cfg.FeedRevision)
		}
		if cfg.UserAgent != "custom-agent" {
			t.Errorf("Expected UserAgent to stay custom-agent, got %s", cfg.UserAgent)
		}
		if cfg.BundleSection != "Bundles" {
			t.Errorf("Expected BundleSection to stay Bundles, got %s", cfg.BundleSection)
		}
		if cfg.HTTPTimeout != time.Second {
			t.Errorf("Expected HTTPTimeout to stay 1s, got %s", cfg.HTTPTimeout)
		}
		if cfg.HTTPRetries != 7 {
			t.Errorf("Expected HTTPRetries to stay 7, got %d", cfg.HTTPRetries)
		}
	})

	t.Run("negative retries clamp to zero", func(t *testing.T) {
		viper.Reset()
		cfg := Config{HTTPRetries: -2}
		processConfigDefaults(&cfg)
		if cfg.HTTPRetries != 0 {
			t.Errorf("Expected HTTPRetries to be 0, got %d", cfg.HTTPRetries)
		}
	})
}

func TestValidateAndEnsureDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("missing cache dir", func(t *testing.T) {
		cfg := Config{CacheDir: ""}
		err := validateAndEnsureDirectories(&cfg)
		if err == nil {
			t.Error("Expected error for missing CacheDir")
		}
	})

	t.Run("creates directories", func(t *testing.T) {
		cacheDir := filepath.Join(tmpDir, "cache")
		cfg := Config{CacheDir: cacheDir}
		err := validateAndEnsureDirectories(&cfg)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		subDirs := []string{"database", "files"}
		for _, sub := range subDirs {
			path := filepath.Join(cacheDir, sub)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				t.Errorf("Directory %s was not created", sub)
			}
		}
		if cfg.DatabasePath != filepath.Join(cacheDir, "catalog.db") {
			t.Errorf("Unexpected DatabasePath %s", cfg.DatabasePath)
		}
	})
}

func TestLoadConfigFromEnv(t *testing.T) {
	viper.Reset()
	cacheDir := filepath.Join(t.TempDir(), "c")
	t.Setenv("CACHE_DIR", cacheDir)
	t.Setenv("CURSE_GAME_ID", "8")
	t.Setenv("KEEP_OLD_SNAPSHOTS", "true")
	t.Setenv("HTTP_TIMEOUT", "5s")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.CacheDir != cacheDir {
		t.Errorf("Expected CacheDir %s, got %s", cacheDir, cfg.CacheDir)
	}
	if cfg.GameID != 8 {
		t.Errorf("Expected GameID 8, got %d", cfg.GameID)
	}
	if !cfg.KeepOldSnapshots {
		t.Error("Expected KeepOldSnapshots to be true")
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("Expected HTTPTimeout 5s, got %s", cfg.HTTPTimeout)
	}
	if cfg.CurseHost != DefaultCurseHost {
		t.Errorf("Expected default CurseHost, got %s", cfg.CurseHost)
	}
}
