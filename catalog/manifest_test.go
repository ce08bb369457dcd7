package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArtifacts struct {
	data  map[int][]byte
	calls []int
}

func (f *fakeArtifacts) Fetch(_ context.Context, owner *Record, fileID int) ([]byte, bool) {
	f.calls = append(f.calls, owner.ID)
	b, ok := f.data[fileID]
	return b, ok
}

// fakeEntries treats the archive bytes as the manifest itself unless they
// equal "empty".
type fakeEntries struct{ asked []string }

func (f *fakeEntries) ReadEntry(archive []byte, name string) ([]byte, bool) {
	f.asked = append(f.asked, name)
	if string(archive) == "empty" {
		return nil, false
	}
	return archive, true
}

const manifestJSON = `{
  "minecraft": {"version": "1.10.2", "modLoaders": [{"id": "forge-12.18.3.2185", "primary": true}]},
  "manifestType": "minecraftModpack",
  "manifestVersion": 1,
  "name": "SkyFactory 3",
  "version": "3.0.6",
  "author": "Bacon_Donut",
  "projectID": 225550,
  "files": [
    {"projectID": 32274, "fileID": 2300000, "required": true},
    {"projectID": 238222, "fileID": 2345678, "required": false}
  ],
  "overrides": "overrides"
}`

func bundleCatalog() *Catalog {
	c := Open([]*Record{
		newRecord(1, "journeymap", inSection("Mods"), withFile(10, "1.10.2")),
		newRecord(2, "skyfactory", inSection("Modpacks"), withFile(20, "1.10.2"), withFile(21, "1.10.2"), withFile(22, "1.10.2")),
		newRecord(3, "odd-pack", inSection("modpacks"), withFile(30, "1.10.2")),
	}, 1)
	c.Reindex()
	return c
}

func TestResolveManifest(t *testing.T) {
	c := bundleCatalog()
	artifacts := &fakeArtifacts{data: map[int][]byte{20: []byte(manifestJSON)}}
	entries := &fakeEntries{}

	m, ok, err := c.ResolveManifest(context.Background(), 20, artifacts, entries)

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "SkyFactory 3", m.Name)
	assert.Equal(t, "3.0.6", m.Version)
	assert.Equal(t, "Bacon_Donut", m.Author)
	assert.Equal(t, 225550, m.ProjectID)
	assert.Equal(t, "1.10.2", m.Minecraft.Version)
	require.Len(t, m.Files, 2)
	assert.Equal(t, ManifestFile{ProjectID: 32274, FileID: 2300000, Required: true}, m.Files[0])
	assert.False(t, m.Files[1].Required)
	assert.Equal(t, []int{2}, artifacts.calls)
	assert.Equal(t, []string{ManifestEntryName}, entries.asked)
}

func TestResolveManifestNotBundle(t *testing.T) {
	c := bundleCatalog()

	for _, fileID := range []int{10, 30} {
		artifacts := &fakeArtifacts{}
		_, ok, err := c.ResolveManifest(context.Background(), fileID, artifacts, &fakeEntries{})

		assert.False(t, ok)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotBundle))
		var nb *NotBundleError
		require.True(t, errors.As(err, &nb))
		assert.Equal(t, fileID, nb.FileID)
		assert.Empty(t, artifacts.calls, "nothing is fetched for a usage error")
	}
}

func TestResolveManifestAbsence(t *testing.T) {
	c := bundleCatalog()
	artifacts := &fakeArtifacts{data: map[int][]byte{21: []byte("empty")}}

	tests := []struct {
		name   string
		fileID int
	}{
		{"unknown file", 999},
		{"archive unavailable", 22},
		{"no manifest entry", 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok, err := c.ResolveManifest(context.Background(), tt.fileID, artifacts, &fakeEntries{})
			assert.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, m)
		})
	}
}

func TestResolveManifestMalformed(t *testing.T) {
	c := bundleCatalog()
	artifacts := &fakeArtifacts{data: map[int][]byte{20: []byte(`{"name": 5`)}}

	_, ok, err := c.ResolveManifest(context.Background(), 20, artifacts, &fakeEntries{})

	assert.False(t, ok)
	assert.True(t, errors.Is(err, ErrFormat))
}

func TestResolveManifestCustomBundleSection(t *testing.T) {
	c := Open([]*Record{newRecord(1, "pack", inSection("Bundles"), withFile(10, "1.0"))}, 1, WithBundleSection("Bundles"))
	c.Reindex()
	artifacts := &fakeArtifacts{data: map[int][]byte{10: []byte(manifestJSON)}}

	_, ok, err := c.ResolveManifest(context.Background(), 10, artifacts, &fakeEntries{})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Bundles", c.BundleSection())
}
