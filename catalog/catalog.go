// Package catalog indexes and queries a mod catalog snapshot.
//
// A Catalog is built from one snapshot, optionally merged with fresher
// snapshot tiers, and then explicitly indexed with Reindex. Indexing is never
// implicit so that several tiers can be merged before paying for it once.
// After that the catalog is meant to be read: lookups by section, category,
// game version and file id, and filter pipelines built from Filter values.
package catalog

import (
	"fmt"
	"io"
	"slices"
	"sync"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Catalog owns a snapshot and the index derived from it.
//
// Merge and Reindex build their new state before swapping it in under a
// write lock, so readers never see a half-built index. Callers are still
// expected to finish merging and indexing before sharing the catalog.
type Catalog struct {
	mu    sync.RWMutex
	snap  *Snapshot
	index *Index

	log           *zap.SugaredLogger
	bundleSection string
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger used for merge and index diagnostics.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Catalog) {
		if log != nil {
			c.log = log
		}
	}
}

// WithBundleSection overrides the section name identifying bundles.
func WithBundleSection(section string) Option {
	return func(c *Catalog) {
		if section != "" {
			c.bundleSection = section
		}
	}
}

// Open creates an unindexed catalog from records.
func Open(records []*Record, timestamp int64, opts ...Option) *Catalog {
	return newCatalog(&Snapshot{Timestamp: timestamp, Data: records}, opts)
}

// Decode reads a snapshot document and returns it as an unindexed catalog.
// Malformed input yields an error wrapping ErrFormat.
func Decode(r io.Reader, opts ...Option) (*Catalog, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: snapshot: %w", ErrFormat, err)
	}
	return newCatalog(&snap, opts), nil
}

func newCatalog(snap *Snapshot, opts []Option) *Catalog {
	c := &Catalog{
		snap:          snap,
		index:         BuildIndex(nil),
		log:           zap.NewNop().Sugar(),
		bundleSection: DefaultBundleSection,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timestamp returns the snapshot version of the catalog.
func (c *Catalog) Timestamp() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Timestamp
}

// Snapshot returns the catalog's current snapshot. The returned value must
// not be modified.
func (c *Catalog) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Merge overlays other onto the catalog if other is newer. It reports
// whether anything changed. The index is left as is until the next Reindex.
func (c *Catalog) Merge(other *Catalog) bool {
	if other == nil || other == c {
		return false
	}
	incoming := other.Snapshot()

	c.mu.Lock()
	defer c.mu.Unlock()

	merged, changed := Merge(c.snap, incoming)
	if !changed {
		c.log.Debugw("Skipped merge of older snapshot",
			zap.Int64("timestamp", c.snap.Timestamp),
			zap.Int64("incoming", incoming.Timestamp),
		)
		return false
	}
	c.log.Infow("Merged snapshot",
		zap.Int64("from", c.snap.Timestamp),
		zap.Int64("to", merged.Timestamp),
		zap.Int("records", len(merged.Data)),
	)
	c.snap = merged
	return true
}

// Reindex rebuilds every lookup table from the current records.
func (c *Catalog) Reindex() {
	c.mu.RLock()
	records := c.snap.Data
	c.mu.RUnlock()

	idx := BuildIndex(records)

	c.mu.Lock()
	c.index = idx
	c.mu.Unlock()

	c.log.Infow("Indexed catalog",
		zap.Int("records", len(records)),
		zap.Int("sections", len(idx.sections)),
		zap.Int("categories", len(idx.categories)),
		zap.Int("versions", len(idx.versions)),
		zap.Int("files", len(idx.files)),
	)
}

func (c *Catalog) state() (*Snapshot, *Index) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap, c.index
}

// Records returns all records in catalog order.
func (c *Catalog) Records() []*Record {
	snap, _ := c.state()
	return slices.Clone(snap.Data)
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	snap, _ := c.state()
	return len(snap.Data)
}

// Sections returns the sorted section names.
func (c *Catalog) Sections() []string {
	_, idx := c.state()
	return slices.Clone(idx.Sections())
}

// Categories returns the sorted category names.
func (c *Catalog) Categories() []string {
	_, idx := c.state()
	return slices.Clone(idx.Categories())
}

// Versions returns the game versions in the order they were first seen.
func (c *Catalog) Versions() []string {
	_, idx := c.state()
	return slices.Clone(idx.Versions())
}

// SortedVersions returns the game versions ordered by CompareVersions.
func (c *Catalog) SortedVersions() []string {
	_, idx := c.state()
	return SortVersions(idx.Versions())
}

// BySection returns the records in section, or nil if it is unknown.
func (c *Catalog) BySection(section string) []*Record {
	_, idx := c.state()
	return slices.Clone(idx.BySection(section))
}

// ByCategory returns the records in category, ignoring case. Each record is
// listed at most once, even if category is both its primary category and one
// of its listed categories.
func (c *Catalog) ByCategory(category string) []*Record {
	_, idx := c.state()
	return slices.Clone(idx.ByCategory(category))
}

// ByVersion returns the records with a file for version.
func (c *Catalog) ByVersion(version string) []*Record {
	_, idx := c.state()
	return slices.Clone(idx.ByVersion(version))
}

// Record returns the record with the given id.
func (c *Catalog) Record(id int) (*Record, bool) {
	snap, _ := c.state()
	for _, r := range snap.Data {
		if r != nil && r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// OwnerID returns the id of the record owning fileID.
func (c *Catalog) OwnerID(fileID int) (int, bool) {
	_, idx := c.state()
	return idx.Owner(fileID)
}

// OwnerOf returns the record owning fileID.
func (c *Catalog) OwnerOf(fileID int) (*Record, bool) {
	id, ok := c.OwnerID(fileID)
	if !ok {
		return nil, false
	}
	return c.Record(id)
}

// Slug returns the URL slug of the record with the given id.
func (c *Catalog) Slug(id int) (string, bool) {
	r, ok := c.Record(id)
	if !ok {
		return "", false
	}
	return r.Slug(), true
}

// BundleSection returns the section name that marks bundles.
func (c *Catalog) BundleSection() string { return c.bundleSection }

// Apply narrows current with f. A nil current stands for every record. The
// result preserves the order of current and is never nil.
func (c *Catalog) Apply(f Filter, current []*Record) []*Record {
	snap, idx := c.state()
	return f.apply(idx, snap.Data, current)
}

// FilterAll applies filters left to right starting from base, or from every
// record when base is nil. The result does not depend on the order of the
// filters.
func (c *Catalog) FilterAll(filters []Filter, base []*Record) []*Record {
	snap, idx := c.state()
	out := base
	if out == nil {
		out = slices.Clone(snap.Data)
		if out == nil {
			out = []*Record{}
		}
	}
	for _, f := range filters {
		out = f.apply(idx, snap.Data, out)
	}
	return out
}
