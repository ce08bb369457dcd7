// Package cache keeps downloaded snapshots and project files on disk and
// tracks them in the SQLite database.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"curse-catalog/config"
	"curse-catalog/feed"
)

// Paths is the on-disk layout of the cache.
//
//	<Root>/database/<tier>.json.zst          current snapshots
//	<Root>/database/archive/<tier>-<v>.json.zst  superseded snapshots
//	<Root>/files/<projectID>/<fileID>/<name> project files
//	<Root>/catalog.db                        metadata
type Paths struct {
	Root     string
	Database string
	Files    string
	Metadata string
}

// DefaultPaths returns the standard layout rooted at root.
func DefaultPaths(root string) Paths {
	return Paths{
		Root:     root,
		Database: filepath.Join(root, "database"),
		Files:    filepath.Join(root, "files"),
		Metadata: filepath.Join(root, "catalog.db"),
	}
}

// PathsFromConfig returns the layout derived by the config loader.
func PathsFromConfig(cfg config.Config) Paths {
	p := DefaultPaths(cfg.CacheDir)
	if cfg.DatabaseDir != "" {
		p.Database = cfg.DatabaseDir
	}
	if cfg.FilesDir != "" {
		p.Files = cfg.FilesDir
	}
	if cfg.DatabasePath != "" {
		p.Metadata = cfg.DatabasePath
	}
	return p
}

// Ensure creates every directory of the layout.
func (p Paths) Ensure() error {
	for _, dir := range []string{p.Root, p.Database, p.Archive(), p.Files} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache directory '%s': %w", dir, err)
		}
	}
	return nil
}

// Archive is the directory holding superseded snapshots.
func (p Paths) Archive() string {
	return filepath.Join(p.Database, "archive")
}

// Snapshot returns the path of the current snapshot of tier.
func (p Paths) Snapshot(tier feed.Tier) string {
	return filepath.Join(p.Database, tier.Filename()+".zst")
}

// ArchivedSnapshot returns the archive path of tier at version.
func (p Paths) ArchivedSnapshot(tier feed.Tier, version int64) string {
	return filepath.Join(p.Archive(), fmt.Sprintf("%s-%d.json.zst", tier, version))
}

// FileDir returns the directory holding fileID of projectID.
func (p Paths) FileDir(projectID, fileID int) string {
	return filepath.Join(p.Files, strconv.Itoa(projectID), strconv.Itoa(fileID))
}
