package catalog

import (
	"slices"
	"strconv"
	"strings"
)

// CompareVersions orders game version strings for display. It returns a
// negative number when a sorts before b, zero when they are identical and a
// positive number otherwise.
//
// Versions starting with "beta" (any case) sort before all other versions.
// Otherwise both strings are split on '.', '-' and '|' and compared
// component by component: integers numerically, "snapshot" as -1 and any
// other text or missing component as 0. Numerically equal versions fall back
// to a plain string comparison, so the order is total.
func CompareVersions(a, b string) int {
	al, bl := strings.ToLower(a), strings.ToLower(b)

	aBeta, bBeta := strings.HasPrefix(al, "beta"), strings.HasPrefix(bl, "beta")
	if aBeta && !bBeta {
		return -1
	}
	if !aBeta && bBeta {
		return 1
	}

	ap, bp := splitVersion(al), splitVersion(bl)
	n := max(len(ap), len(bp))
	for i := 0; i < n; i++ {
		av, bv := componentValue(ap, i), componentValue(bp, i)
		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}

	return strings.Compare(a, b)
}

// SortVersions returns a sorted copy of versions.
func SortVersions(versions []string) []string {
	out := slices.Clone(versions)
	slices.SortStableFunc(out, CompareVersions)
	return out
}

func isVersionSeparator(r rune) bool {
	return r == '.' || r == '-' || r == '|'
}

// splitVersion splits on separators keeping empty inner components and
// dropping trailing empty ones.
func splitVersion(s string) []string {
	if s == "" {
		return []string{""}
	}

	var parts []string
	start := 0
	for i, r := range s {
		if isVersionSeparator(r) {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])

	end := len(parts)
	for end > 0 && parts[end-1] == "" {
		end--
	}
	return parts[:end]
}

func componentValue(parts []string, i int) int64 {
	if i >= len(parts) {
		return 0
	}
	p := parts[i]
	if v, err := strconv.ParseInt(p, 10, 32); err == nil {
		return v
	}
	if p == "snapshot" {
		return -1
	}
	return 0
}
