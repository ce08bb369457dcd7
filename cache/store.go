package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"curse-catalog/catalog"
	"curse-catalog/db"
	"curse-catalog/feed"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Downloader fetches project files. *feed.Client satisfies it.
type Downloader interface {
	FileURL(slug string, fileID int) string
	DownloadFile(ctx context.Context, url, dir string) (string, error)
}

// Store is the snapshot and file cache.
type Store struct {
	Paths            Paths
	KeepOldSnapshots bool

	db  *gorm.DB
	dl  Downloader
	log *zap.SugaredLogger

	enc *zstd.Encoder
	dec *zstd.Decoder

	// mu serialises metadata writes.
	mu sync.Mutex
}

// NewStore returns a Store over paths, recording metadata in conn. dl may be
// nil, in which case Fetch only serves files already on disk.
func NewStore(paths Paths, conn *gorm.DB, dl Downloader, log *zap.SugaredLogger) (*Store, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if err := paths.Ensure(); err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &Store{
		Paths: paths,
		db:    conn,
		dl:    dl,
		log:   log,
		enc:   enc,
		dec:   dec,
	}, nil
}

// Close releases the codec resources.
func (s *Store) Close() {
	s.enc.Close()
	s.dec.Close()
}

// Checksum returns the hex xxh3 digest used for cache integrity.
func Checksum(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}

// SnapshotPath returns where the current snapshot of tier is stored.
func (s *Store) SnapshotPath(tier feed.Tier) string {
	return s.Paths.Snapshot(tier)
}

// HasSnapshot reports whether tier has a cached snapshot on disk.
func (s *Store) HasSnapshot(tier feed.Tier) bool {
	_, err := os.Stat(s.SnapshotPath(tier))
	return err == nil
}

// CachedVersion returns the version of the cached snapshot of tier.
func (s *Store) CachedVersion(tier feed.Tier) (int64, bool) {
	row, err := s.snapshotRow(tier)
	if err != nil || !s.HasSnapshot(tier) {
		return 0, false
	}
	return row.Version, true
}

func (s *Store) snapshotRow(tier feed.Tier) (*db.Snapshot, error) {
	var row db.Snapshot
	err := s.db.Where("tier = ?", tier.String()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, tier)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot %s: %w", tier, err)
	}
	return &row, nil
}

// SaveSnapshot validates and stores the JSON document of tier at version,
// replacing the current one. With KeepOldSnapshots the replaced snapshot is
// moved to the archive.
func (s *Store) SaveSnapshot(tier feed.Tier, version int64, data []byte) error {
	cat, err := catalog.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("refusing to cache %s snapshot %d: %w", tier, version, err)
	}

	log := s.log.With(zap.String("tier", tier.String()), zap.Int64("version", version))

	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.snapshotRow(tier)
	if errors.Is(err, ErrNoSnapshot) {
		row = &db.Snapshot{Tier: tier.String()}
	} else if err != nil {
		return err
	}

	if s.KeepOldSnapshots && row.ID != 0 && s.HasSnapshot(tier) {
		if err := s.archive(tier, row); err != nil {
			log.Warnw("Failed to archive previous snapshot", zap.Error(err))
		}
	}

	path := s.SnapshotPath(tier)
	if err := writeFileAtomic(path, s.enc.EncodeAll(data, nil)); err != nil {
		return err
	}

	row.Version = version
	row.Path = path
	row.Checksum = Checksum(data)
	row.Size = int64(len(data))
	row.Records = cat.Len()
	row.FetchedAt = time.Now()

	if err := s.db.Save(row).Error; err != nil {
		return fmt.Errorf("failed to save snapshot metadata: %w", err)
	}

	log.Infow("Cached snapshot", zap.Int("records", row.Records), zap.Int64("size", row.Size))
	return nil
}

func (s *Store) archive(tier feed.Tier, row *db.Snapshot) error {
	archivePath := s.Paths.ArchivedSnapshot(tier, row.Version)
	if err := os.Rename(s.SnapshotPath(tier), archivePath); err != nil {
		return fmt.Errorf("failed to move snapshot to archive: %w", err)
	}

	history := db.SnapshotVersion{
		Tier:        row.Tier,
		Version:     row.Version,
		Checksum:    row.Checksum,
		Size:        row.Size,
		Records:     row.Records,
		ArchivePath: archivePath,
	}
	if err := s.db.Create(&history).Error; err != nil {
		return fmt.Errorf("failed to record archived snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot returns the decompressed, checksum-verified JSON of tier.
func (s *Store) ReadSnapshot(tier feed.Tier) ([]byte, error) {
	row, err := s.snapshotRow(tier)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.SnapshotPath(tier))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s file missing", ErrNoSnapshot, tier)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read %s snapshot: %w", tier, err)
	}

	data, err := s.dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s snapshot: %w", tier, err)
	}

	if sum := Checksum(data); sum != row.Checksum {
		return nil, fmt.Errorf("%w: %s has %s, expected %s", ErrChecksum, tier, sum, row.Checksum)
	}
	return data, nil
}

// LoadSnapshot decodes the cached snapshot of tier into an indexed catalog.
func (s *Store) LoadSnapshot(tier feed.Tier, opts ...catalog.Option) (*catalog.Catalog, error) {
	data, err := s.ReadSnapshot(tier)
	if err != nil {
		return nil, err
	}
	return catalog.Decode(bytes.NewReader(data), opts...)
}

// History returns the archived versions of tier, newest first.
func (s *Store) History(tier feed.Tier) ([]db.SnapshotVersion, error) {
	var versions []db.SnapshotVersion
	err := s.db.Where("tier = ?", tier.String()).Order("id DESC").Find(&versions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot history: %w", err)
	}
	return versions, nil
}

// Rollback replaces the current snapshot of tier with the most recently
// archived one and returns the restored version. The replaced snapshot is
// discarded.
func (s *Store) Rollback(tier feed.Tier) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var previous db.SnapshotVersion
	err := s.db.Where("tier = ?", tier.String()).Order("id DESC").First(&previous).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: %s", ErrNoArchive, tier)
	} else if err != nil {
		return 0, fmt.Errorf("failed to query snapshot history: %w", err)
	}

	log := s.log.With(zap.String("tier", tier.String()), zap.Int64("version", previous.Version))

	if previous.ArchivePath == "" {
		return 0, fmt.Errorf("%w: %s version %d has no archive path", ErrNoArchive, tier, previous.Version)
	}
	if _, err := os.Stat(previous.ArchivePath); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrNoArchive, err)
	}

	row, err := s.snapshotRow(tier)
	if errors.Is(err, ErrNoSnapshot) {
		row = &db.Snapshot{Tier: tier.String()}
	} else if err != nil {
		return 0, err
	}

	path := s.SnapshotPath(tier)
	log.Infow("Restoring archived snapshot", zap.String("archive_path", previous.ArchivePath))
	if err := os.Rename(previous.ArchivePath, path); err != nil {
		return 0, fmt.Errorf("failed to restore archive: %w", err)
	}

	row.Version = previous.Version
	row.Path = path
	row.Checksum = previous.Checksum
	row.Size = previous.Size
	row.Records = previous.Records
	row.FetchedAt = time.Now()
	if err := s.db.Save(row).Error; err != nil {
		return 0, fmt.Errorf("failed to update snapshot metadata: %w", err)
	}

	if err := s.db.Delete(&previous).Error; err != nil {
		log.Warnw("Failed to delete history record", zap.Error(err))
	}

	log.Infow("Rollback successful")
	return previous.Version, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for '%s': %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write '%s': %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close '%s': %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move '%s' into place: %w", tmpName, err)
	}
	return nil
}
