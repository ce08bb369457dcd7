package catalog

import (
	"fmt"
	"strings"
)

// FilterKind selects what a Filter matches on.
type FilterKind int

const (
	FilterCategory FilterKind = iota + 1
	FilterSection
	FilterVersion
	FilterName
	FilterAuthor
)

func (k FilterKind) String() string {
	switch k {
	case FilterCategory:
		return "category"
	case FilterSection:
		return "section"
	case FilterVersion:
		return "version"
	case FilterName:
		return "name"
	case FilterAuthor:
		return "author"
	default:
		return fmt.Sprintf("FilterKind(%d)", int(k))
	}
}

// Filter is an immutable (kind, value) predicate over records.
//
// Section, category and version filters are exact index lookups (category
// ignores case) and match nothing when the value is empty. Name and author
// filters are case-insensitive substring matches.
type Filter struct {
	kind  FilterKind
	value string
}

// ByCategory matches records listing category as primary or secondary category.
func ByCategory(category string) Filter { return Filter{kind: FilterCategory, value: category} }

// BySection matches records in section.
func BySection(section string) Filter { return Filter{kind: FilterSection, value: section} }

// ByVersion matches records with a file for the game version.
func ByVersion(version string) Filter { return Filter{kind: FilterVersion, value: version} }

// ByName matches records whose name contains name.
func ByName(name string) Filter { return Filter{kind: FilterName, value: name} }

// ByAuthor matches records whose primary or additional author contains name.
func ByAuthor(name string) Filter { return Filter{kind: FilterAuthor, value: name} }

func (f Filter) Kind() FilterKind { return f.kind }
func (f Filter) Value() string    { return f.value }

func (f Filter) String() string {
	return fmt.Sprintf("%s=%q", f.kind, f.value)
}

// apply narrows current to the records matching f. A nil current means all
// records. The result is never nil, so an empty stage stays empty when fed
// into the next one.
func (f Filter) apply(idx *Index, all, current []*Record) []*Record {
	if current == nil {
		current = all
	}

	switch f.kind {
	case FilterSection:
		return intersect(idx.bySection, f.value, current)
	case FilterCategory:
		return intersect(idx.byCategory, strings.ToLower(f.value), current)
	case FilterVersion:
		return intersect(idx.byVersion, f.value, current)
	case FilterName:
		needle := strings.ToLower(f.value)
		return keep(current, func(r *Record) bool {
			return strings.Contains(strings.ToLower(r.Name), needle)
		})
	case FilterAuthor:
		needle := strings.ToLower(f.value)
		return keep(current, func(r *Record) bool {
			return r.hasAuthor(needle)
		})
	default:
		return append([]*Record{}, current...)
	}
}

func intersect(g *group, key string, current []*Record) []*Record {
	out := []*Record{}
	if key == "" || !g.known(key) {
		return out
	}
	for _, r := range current {
		if g.has(key, r) {
			out = append(out, r)
		}
	}
	return out
}

func keep(current []*Record, pred func(*Record) bool) []*Record {
	out := []*Record{}
	for _, r := range current {
		if r != nil && pred(r) {
			out = append(out, r)
		}
	}
	return out
}
