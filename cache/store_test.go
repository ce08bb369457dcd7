package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"curse-catalog/catalog"
	"curse-catalog/db"
	"curse-catalog/feed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	snapshotV100 = `{"timestamp":100,"data":[{"Id":1,"Name":"Alpha"},{"Id":2,"Name":"Beta"}]}`
	snapshotV200 = `{"timestamp":200,"data":[{"Id":1,"Name":"Alpha 2"}]}`
)

type fakeDownloader struct {
	calls   atomic.Int32
	content []byte
	name    string
	err     error
}

func (f *fakeDownloader) FileURL(slug string, fileID int) string {
	return "https://files.test/projects/" + slug
}

func (f *fakeDownloader) DownloadFile(_ context.Context, _ string, dir string) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, f.name)
	return path, os.WriteFile(path, f.content, 0644)
}

func newTestStore(t *testing.T, dl Downloader) *Store {
	t.Helper()
	root := t.TempDir()
	paths := DefaultPaths(root)

	conn, err := db.Open(paths.Metadata)
	require.NoError(t, err)

	s, err := NewStore(paths, conn, dl, nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestDefaultPaths(t *testing.T) {
	p := DefaultPaths("cache")
	assert.Equal(t, filepath.Join("cache", "database"), p.Database)
	assert.Equal(t, filepath.Join("cache", "files"), p.Files)
	assert.Equal(t, filepath.Join("cache", "catalog.db"), p.Metadata)
	assert.Equal(t, filepath.Join("cache", "database", "weekly.json.zst"), p.Snapshot(feed.Weekly))
	assert.Equal(t, filepath.Join("cache", "files", "12", "34"), p.FileDir(12, 34))
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	s := newTestStore(t, nil)

	assert.False(t, s.HasSnapshot(feed.Complete))
	_, ok := s.CachedVersion(feed.Complete)
	assert.False(t, ok)

	require.NoError(t, s.SaveSnapshot(feed.Complete, 100, []byte(snapshotV100)))

	assert.True(t, s.HasSnapshot(feed.Complete))
	v, ok := s.CachedVersion(feed.Complete)
	require.True(t, ok)
	assert.Equal(t, int64(100), v)

	cat, err := s.LoadSnapshot(feed.Complete)
	require.NoError(t, err)
	assert.Equal(t, int64(100), cat.Timestamp())
	assert.Equal(t, 2, cat.Len())

	raw, err := s.ReadSnapshot(feed.Complete)
	require.NoError(t, err)
	assert.JSONEq(t, snapshotV100, string(raw))
}

func TestSaveSnapshotRejectsMalformed(t *testing.T) {
	s := newTestStore(t, nil)
	err := s.SaveSnapshot(feed.Daily, 5, []byte("{not json"))
	assert.ErrorIs(t, err, catalog.ErrFormat)
	assert.False(t, s.HasSnapshot(feed.Daily))
}

func TestLoadSnapshotMissing(t *testing.T) {
	s := newTestStore(t, nil)
	_, err := s.LoadSnapshot(feed.Hourly)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestLoadSnapshotChecksumMismatch(t *testing.T) {
	s := newTestStore(t, nil)
	require.NoError(t, s.SaveSnapshot(feed.Weekly, 100, []byte(snapshotV100)))

	// Replace the payload behind the store's back.
	require.NoError(t, os.WriteFile(s.SnapshotPath(feed.Weekly), s.enc.EncodeAll([]byte(snapshotV200), nil), 0644))

	_, err := s.LoadSnapshot(feed.Weekly)
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestSaveSnapshotReplacesWithoutArchive(t *testing.T) {
	s := newTestStore(t, nil)
	require.NoError(t, s.SaveSnapshot(feed.Complete, 100, []byte(snapshotV100)))
	require.NoError(t, s.SaveSnapshot(feed.Complete, 200, []byte(snapshotV200)))

	v, _ := s.CachedVersion(feed.Complete)
	assert.Equal(t, int64(200), v)

	history, err := s.History(feed.Complete)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = s.Rollback(feed.Complete)
	assert.ErrorIs(t, err, ErrNoArchive)
}

func TestRollback(t *testing.T) {
	s := newTestStore(t, nil)
	s.KeepOldSnapshots = true

	require.NoError(t, s.SaveSnapshot(feed.Complete, 100, []byte(snapshotV100)))
	require.NoError(t, s.SaveSnapshot(feed.Complete, 200, []byte(snapshotV200)))

	history, err := s.History(feed.Complete)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(100), history[0].Version)
	assert.FileExists(t, history[0].ArchivePath)

	restored, err := s.Rollback(feed.Complete)
	require.NoError(t, err)
	assert.Equal(t, int64(100), restored)

	cat, err := s.LoadSnapshot(feed.Complete)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())

	history, err = s.History(feed.Complete)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func bundleRecord() *catalog.Record {
	return &catalog.Record{
		ID:         77,
		Name:       "Pack",
		WebSiteURL: "https://minecraft.curseforge.com/projects/the-pack/",
	}
}

func TestFetchDownloadsOnce(t *testing.T) {
	dl := &fakeDownloader{content: []byte("zip bytes"), name: "pack-1.0.zip"}
	s := newTestStore(t, dl)
	rec := bundleRecord()

	data, ok := s.Fetch(context.Background(), rec, 500)
	require.True(t, ok)
	assert.Equal(t, "zip bytes", string(data))

	data, ok = s.Fetch(context.Background(), rec, 500)
	require.True(t, ok)
	assert.Equal(t, "zip bytes", string(data))
	assert.Equal(t, int32(1), dl.calls.Load())

	art, err := s.Artifact(500)
	require.NoError(t, err)
	assert.Equal(t, 77, art.ProjectID)
	assert.Equal(t, "the-pack", art.Slug)
	assert.Equal(t, "pack-1.0.zip", art.FileName)
	assert.Equal(t, Checksum([]byte("zip bytes")), art.Checksum)
}

func TestFetchReusesFileOnDisk(t *testing.T) {
	dl := &fakeDownloader{err: errors.New("offline")}
	s := newTestStore(t, dl)

	dir := s.Paths.FileDir(77, 501)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pack.zip"), []byte("local"), 0644))

	data, ok := s.Fetch(context.Background(), bundleRecord(), 501)
	require.True(t, ok)
	assert.Equal(t, "local", string(data))
	assert.Equal(t, int32(0), dl.calls.Load())
}

func TestFetchUnavailable(t *testing.T) {
	s := newTestStore(t, &fakeDownloader{err: errors.New("offline")})
	_, ok := s.Fetch(context.Background(), bundleRecord(), 502)
	assert.False(t, ok)

	s = newTestStore(t, nil)
	_, ok = s.Fetch(context.Background(), bundleRecord(), 502)
	assert.False(t, ok)
}

func TestScan(t *testing.T) {
	s := newTestStore(t, nil)

	write := func(rel, content string) {
		path := filepath.Join(s.Paths.Files, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	write("10/100/a.jar", "a")
	write("10/101/b.ZIP", "b")
	write("10/102/readme.txt", "ignored")
	write("stray.jar", "ignored")
	write("x/103/c.jar", "ignored")

	n, err := s.Scan()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	art, err := s.Artifact(101)
	require.NoError(t, err)
	assert.Equal(t, 10, art.ProjectID)
	assert.Equal(t, "b.ZIP", art.FileName)

	n, err = s.Scan()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScanSkipsOnLookupError(t *testing.T) {
	s := newTestStore(t, nil)

	path := filepath.Join(s.Paths.Files, "10", "100", "a.jar")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	// Fail only the existence count; the lookups and writes of register still work.
	err := s.db.Callback().Query().Before("gorm:query").Register("test:fail_count", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*int64); ok {
			tx.AddError(errors.New("database is locked"))
		}
	})
	require.NoError(t, err)

	n, err := s.Scan()
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.db.Callback().Query().Remove("test:fail_count"))
	_, err = s.Artifact(100)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
