package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"curse-catalog/catalog"
)

type stubArtifacts map[int][]byte

func (s stubArtifacts) Fetch(_ context.Context, _ *catalog.Record, fileID int) ([]byte, bool) {
	data, ok := s[fileID]
	return data, ok
}

type stubEntries struct{}

func (stubEntries) ReadEntry(archive []byte, name string) ([]byte, bool) {
	if len(archive) == 0 {
		return nil, false
	}
	return archive, true
}

func TestPrintOwner(t *testing.T) {
	cat := browseCatalog()

	var buf bytes.Buffer
	if err := printOwner(&buf, cat, 20); err != nil {
		t.Fatalf("printOwner failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "2\tBotania") {
		t.Errorf("unexpected owner line %q", buf.String())
	}

	err := printOwner(&buf, cat, 999)
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPrintManifest(t *testing.T) {
	cat := browseCatalog()
	artifacts := stubArtifacts{
		30: []byte(`{"name":"Big Pack","version":"1.0","author":"someone",
			"minecraft":{"version":"1.12.2"},
			"files":[{"projectID":2,"fileID":20,"required":true},{"projectID":99,"fileID":5,"required":false}]}`),
	}

	var buf bytes.Buffer
	if err := printManifest(context.Background(), &buf, cat, 30, artifacts, stubEntries{}); err != nil {
		t.Fatalf("printManifest failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Big Pack 1.0 by someone (Minecraft 1.12.2)") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "Botania") {
		t.Errorf("known project should be named:\n%s", out)
	}
	if !strings.Contains(out, "? (optional)") {
		t.Errorf("unknown optional project should be marked:\n%s", out)
	}
}

func TestPrintManifestErrors(t *testing.T) {
	cat := browseCatalog()
	var buf bytes.Buffer

	err := printManifest(context.Background(), &buf, cat, 10, stubArtifacts{}, stubEntries{})
	if !errors.Is(err, catalog.ErrNotBundle) {
		t.Errorf("file of a mod should be rejected, got %v", err)
	}

	err = printManifest(context.Background(), &buf, cat, 30, stubArtifacts{}, stubEntries{})
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("missing archive should be not found, got %v", err)
	}
}
