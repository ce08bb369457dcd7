package db

import (
	"time"

	"gorm.io/gorm"
)

// Snapshot represents the cached copy of one snapshot tier
type Snapshot struct {
	gorm.Model
	Tier      string    `gorm:"uniqueIndex"` // complete, weekly, daily or hourly
	Version   int64     // Feed timestamp of the cached snapshot
	Path      string    // zstd-compressed JSON on disk
	Checksum  string    // xxh3 of the uncompressed JSON
	Size      int64     // Uncompressed size in bytes
	Records   int       // Number of records in the snapshot
	FetchedAt time.Time // When the snapshot was downloaded
}

// SnapshotVersion represents an archived, superseded snapshot of a tier
type SnapshotVersion struct {
	gorm.Model
	Tier        string `gorm:"index"` // References Snapshot.Tier
	Version     int64
	Checksum    string
	Size        int64
	Records     int
	ArchivePath string // Path to the archived file
}

// Artifact represents a downloaded project file in the file cache
type Artifact struct {
	gorm.Model
	ProjectID int    `gorm:"index"`
	FileID    int    `gorm:"uniqueIndex"`
	Slug      string // Project slug at download time
	FileName  string // Name discovered from the download URL
	Path      string // Location inside the file cache
	Checksum  string // xxh3 of the file contents
	Size      int64
}
