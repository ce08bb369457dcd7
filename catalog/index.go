package catalog

import (
	"slices"
	"strings"
)

// Index holds the lookup tables derived from a record list. It is built in
// one pass by BuildIndex and never updated afterwards.
type Index struct {
	sections   []string
	categories []string
	versions   []string

	bySection  *group
	byCategory *group
	byVersion  *group

	// file id -> owning record id
	files map[int]int
}

// group is an ordered multimap from key to records with O(1) membership.
type group struct {
	lists   map[string][]*Record
	members map[string]map[*Record]struct{}
}

func newGroup() *group {
	return &group{
		lists:   make(map[string][]*Record),
		members: make(map[string]map[*Record]struct{}),
	}
}

// add appends r under key unless the pair is already present. It reports
// whether key was new.
func (g *group) add(key string, r *Record) bool {
	set, ok := g.members[key]
	if !ok {
		set = make(map[*Record]struct{})
		g.members[key] = set
	}
	if _, dup := set[r]; dup {
		return false
	}
	set[r] = struct{}{}
	g.lists[key] = append(g.lists[key], r)
	return !ok
}

func (g *group) get(key string) []*Record {
	return g.lists[key]
}

func (g *group) has(key string, r *Record) bool {
	_, ok := g.members[key][r]
	return ok
}

func (g *group) known(key string) bool {
	_, ok := g.members[key]
	return ok
}

// BuildIndex categorizes records by section, category and game version and
// maps every file id to its owning record. Missing optional fields are
// skipped.
func BuildIndex(records []*Record) *Index {
	idx := &Index{
		bySection:  newGroup(),
		byCategory: newGroup(),
		byVersion:  newGroup(),
		files:      make(map[int]int),
	}

	seenCategory := make(map[string]struct{})

	for _, r := range records {
		if r == nil {
			continue
		}

		if section := r.Section(); section != "" {
			if idx.bySection.add(section, r) {
				idx.sections = append(idx.sections, section)
			}
		}

		for _, stub := range r.GameVersionLatestFiles {
			if stub.GameVersion == "" {
				continue
			}
			idx.addVersion(stub.GameVersion, r)
			idx.files[stub.ProjectFileID] = r.ID
		}

		for _, f := range r.LatestFiles {
			for _, v := range f.GameVersion {
				idx.addVersion(v, r)
			}
			idx.files[f.ID] = r.ID
		}

		if r.PrimaryCategoryName != "" {
			idx.addCategory(r.PrimaryCategoryName, r, seenCategory)
		}
		for _, c := range r.Categories {
			if c.Name != "" {
				idx.addCategory(c.Name, r, seenCategory)
			}
		}
	}

	slices.Sort(idx.sections)
	slices.Sort(idx.categories)

	return idx
}

func (idx *Index) addVersion(v string, r *Record) {
	if idx.byVersion.add(v, r) {
		idx.versions = append(idx.versions, v)
	}
}

func (idx *Index) addCategory(name string, r *Record, seen map[string]struct{}) {
	if _, ok := seen[name]; !ok {
		seen[name] = struct{}{}
		idx.categories = append(idx.categories, name)
	}
	idx.byCategory.add(strings.ToLower(name), r)
}

// Sections returns the section names in sorted order.
func (idx *Index) Sections() []string { return idx.sections }

// Categories returns the category names, as spelled in the data, in sorted order.
func (idx *Index) Categories() []string { return idx.categories }

// Versions returns the game versions in the order they were first seen.
func (idx *Index) Versions() []string { return idx.versions }

// BySection returns the records of a section in catalog order.
func (idx *Index) BySection(section string) []*Record {
	return idx.bySection.get(section)
}

// ByCategory returns the records of a category. The lookup ignores case.
// A record appears once per category even when it names the category both as
// its primary category and in its category list.
func (idx *Index) ByCategory(category string) []*Record {
	return idx.byCategory.get(strings.ToLower(category))
}

// ByVersion returns the records having at least one file for version.
func (idx *Index) ByVersion(version string) []*Record {
	return idx.byVersion.get(version)
}

// Owner returns the id of the record owning fileID.
func (idx *Index) Owner(fileID int) (int, bool) {
	id, ok := idx.files[fileID]
	return id, ok
}

// FileCount returns the number of file ids known to the index.
func (idx *Index) FileCount() int { return len(idx.files) }
