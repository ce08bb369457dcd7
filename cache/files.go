package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"curse-catalog/catalog"
	"curse-catalog/db"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func isArchive(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".jar" || ext == ".zip"
}

// findArchive returns the first .jar or .zip in dir.
func findArchive(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() && isArchive(e.Name()) {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}

// Fetch returns the bytes of fileID of owner, downloading it into the file
// cache unless it is already there.
func (s *Store) Fetch(ctx context.Context, owner *catalog.Record, fileID int) ([]byte, bool) {
	log := s.log.With(zap.Int("project_id", owner.ID), zap.Int("file_id", fileID))

	if art, err := s.Artifact(fileID); err == nil {
		if data, err := os.ReadFile(art.Path); err == nil {
			log.Debugw("Serving cached file", zap.String("path", art.Path))
			return data, true
		}
		log.Infow("Cached file missing on disk, refetching", zap.String("path", art.Path))
	}

	dir := s.Paths.FileDir(owner.ID, fileID)
	path, ok := findArchive(dir)
	if !ok {
		if s.dl == nil {
			log.Debugw("File not cached and no downloader configured")
			return nil, false
		}

		var err error
		path, err = s.dl.DownloadFile(ctx, s.dl.FileURL(owner.Slug(), fileID), dir)
		if err != nil {
			log.Warnw("Failed to download file", zap.Error(err))
			return nil, false
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warnw("Failed to read cached file", zap.String("path", path), zap.Error(err))
		return nil, false
	}

	if err := s.register(owner.ID, fileID, owner.Slug(), path, data); err != nil {
		log.Warnw("Failed to record cached file", zap.Error(err))
	}
	return data, true
}

// Artifact returns the metadata row of a cached file.
func (s *Store) Artifact(fileID int) (*db.Artifact, error) {
	var art db.Artifact
	if err := s.db.Where("file_id = ?", fileID).First(&art).Error; err != nil {
		return nil, err
	}
	return &art, nil
}

func (s *Store) register(projectID, fileID int, slug, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var art db.Artifact
	err := s.db.Where("file_id = ?", fileID).First(&art).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	art.ProjectID = projectID
	art.FileID = fileID
	if slug != "" {
		art.Slug = slug
	}
	art.FileName = filepath.Base(path)
	art.Path = path
	art.Checksum = Checksum(data)
	art.Size = int64(len(data))

	return s.db.Save(&art).Error
}

// Scan walks the file cache and records every file that has no metadata row
// yet. Files outside the <projectID>/<fileID>/ layout are ignored. It returns
// the number of files registered.
func (s *Store) Scan() (int, error) {
	s.log.Info("Scanning file cache...")

	registered := 0
	err := filepath.WalkDir(s.Paths.Files, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isArchive(d.Name()) {
			return nil
		}

		projectID, fileID, ok := s.idsFromPath(path)
		if !ok {
			s.log.Debugw("Skipping file outside cache layout", zap.String("path", path))
			return nil
		}

		var count int64
		if err := s.db.Model(&db.Artifact{}).Where("file_id = ?", fileID).Count(&count).Error; err != nil {
			s.log.Warnw("Failed to look up file, skipping", zap.String("path", path), zap.Error(err))
			return nil
		}
		if count > 0 {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			s.log.Warnw("Failed to read file", zap.String("path", path), zap.Error(err))
			return nil
		}

		if err := s.register(projectID, fileID, "", path, data); err != nil {
			s.log.Errorw("Failed to record file", zap.String("path", path), zap.Error(err))
			return nil
		}
		s.log.Infow("Registered cached file", zap.Int("project_id", projectID), zap.Int("file_id", fileID))
		registered++
		return nil
	})
	if err != nil {
		return registered, fmt.Errorf("failed to scan '%s': %w", s.Paths.Files, err)
	}
	return registered, nil
}

func (s *Store) idsFromPath(path string) (projectID, fileID int, ok bool) {
	rel, err := filepath.Rel(s.Paths.Files, path)
	if err != nil {
		return 0, 0, false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 3 {
		return 0, 0, false
	}
	projectID, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	fileID, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return projectID, fileID, true
}
