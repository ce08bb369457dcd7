// Package bundle reads entries out of bundle archives.
package bundle

import (
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

// maxEntrySize caps how much of a single entry is read into memory.
const maxEntrySize = 16 << 20

// Reader extracts named entries from zip archives held in memory.
type Reader struct {
	log *zap.SugaredLogger
}

// NewReader returns a Reader. A nil logger discards output.
func NewReader(log *zap.SugaredLogger) *Reader {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Reader{log: log}
}

// ReadEntry returns the contents of the entry whose path matches name,
// ignoring case. When several entries match, the last one wins. It reports
// false if the archive cannot be opened, has no such entry, or the entry is
// larger than maxEntrySize.
func (r *Reader) ReadEntry(archive []byte, name string) ([]byte, bool) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		r.log.Warnw("Failed to open archive", zap.Int("size", len(archive)), zap.Error(err))
		return nil, false
	}

	var match *zip.File
	for _, f := range zr.File {
		if strings.EqualFold(f.Name, name) {
			match = f
		}
	}
	if match == nil {
		return nil, false
	}

	rc, err := match.Open()
	if err != nil {
		r.log.Warnw("Failed to open archive entry", zap.String("entry", match.Name), zap.Error(err))
		return nil, false
	}
	defer rc.Close()

	// One byte past the limit tells an oversized entry from one that fits.
	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		r.log.Warnw("Failed to read archive entry", zap.String("entry", match.Name), zap.Error(err))
		return nil, false
	}
	if len(data) > maxEntrySize {
		r.log.Warnw("Archive entry too large", zap.String("entry", match.Name), zap.Int("limit", maxEntrySize))
		return nil, false
	}
	return data, true
}

// Entries lists the entry names of archive.
func (r *Reader) Entries(archive []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names, nil
}
