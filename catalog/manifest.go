package catalog

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
)

// ManifestEntryName is the archive entry holding a bundle's manifest. Entry
// names are matched without regard to case.
const ManifestEntryName = "manifest.json"

// Manifest describes the contents of a bundle archive.
type Manifest struct {
	Minecraft       ManifestMinecraft `json:"minecraft"`
	ManifestType    string            `json:"manifestType"`
	ManifestVersion int               `json:"manifestVersion"`
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Author          string            `json:"author"`
	ProjectID       int               `json:"projectID"`
	Files           []ManifestFile    `json:"files"`
	Overrides       string            `json:"overrides"`
}

// ManifestMinecraft is the game version and loader a bundle targets.
type ManifestMinecraft struct {
	Version    string      `json:"version"`
	ModLoaders []ModLoader `json:"modLoaders"`
}

type ModLoader struct {
	ID      string `json:"id"`
	Primary bool   `json:"primary"`
}

// ManifestFile is one file a bundle pulls in.
type ManifestFile struct {
	ProjectID int  `json:"projectID"`
	FileID    int  `json:"fileID"`
	Required  bool `json:"required"`
}

// ParseManifest decodes a manifest document.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest: %w", ErrFormat, err)
	}
	return &m, nil
}

// Artifacts retrieves the archive bytes of a record's file. ok is false when
// the file could not be obtained.
type Artifacts interface {
	Fetch(ctx context.Context, owner *Record, fileID int) (data []byte, ok bool)
}

// EntryReader extracts a named entry from archive bytes. ok is false when
// there is no such entry or the archive is unreadable.
type EntryReader interface {
	ReadEntry(archive []byte, name string) (data []byte, ok bool)
}

// ResolveManifest finds the bundle owning fileID, retrieves its archive and
// returns the parsed manifest. ok is false when the file id is unknown, the
// archive cannot be fetched or it has no manifest entry.
//
// A file owned by a record outside the bundle section yields a
// *NotBundleError; a manifest that fails to decode yields an ErrFormat error.
func (c *Catalog) ResolveManifest(ctx context.Context, fileID int, artifacts Artifacts, entries EntryReader) (*Manifest, bool, error) {
	owner, ok := c.OwnerOf(fileID)
	if !ok {
		c.log.Debugw("No owner for file", "file_id", fileID)
		return nil, false, nil
	}

	if owner.Section() != c.bundleSection {
		return nil, false, &NotBundleError{FileID: fileID, ProjectID: owner.ID, Section: owner.Section()}
	}

	archive, ok := artifacts.Fetch(ctx, owner, fileID)
	if !ok {
		c.log.Warnw("Bundle archive unavailable", "project_id", owner.ID, "file_id", fileID)
		return nil, false, nil
	}

	raw, ok := entries.ReadEntry(archive, ManifestEntryName)
	if !ok {
		c.log.Infow("Bundle has no manifest", "project_id", owner.ID, "file_id", fileID)
		return nil, false, nil
	}

	m, err := ParseManifest(raw)
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}
