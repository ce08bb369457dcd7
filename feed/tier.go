package feed

import (
	"fmt"
	"strings"
)

// Tier is one of the four snapshot files the feed publishes. The complete
// tier holds the whole catalog; the others hold recent changes only and are
// merged on top of it.
type Tier int

const (
	Complete Tier = iota
	Weekly
	Daily
	Hourly
)

var tierNames = [...]string{"complete", "weekly", "daily", "hourly"}

// Tiers returns every tier in merge order, oldest data first.
func Tiers() []Tier {
	return []Tier{Complete, Weekly, Daily, Hourly}
}

// String returns the lower-case name used in feed URLs and file names.
func (t Tier) String() string {
	if t < Complete || t > Hourly {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierNames[t]
}

// Filename returns the name of the decompressed snapshot document.
func (t Tier) Filename() string {
	return t.String() + ".json"
}

// ParseTier parses a tier name, ignoring case.
func ParseTier(s string) (Tier, error) {
	for i, name := range tierNames {
		if strings.EqualFold(s, name) {
			return Tier(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// Endpoint locates a game's snapshot feed.
type Endpoint struct {
	Host     string
	GameID   int
	Revision string
}

func (e Endpoint) base(t Tier) string {
	return fmt.Sprintf("http://%s/feed/addons/%d/%s/%s.json.bz2", e.Host, e.GameID, e.Revision, t)
}

// QueryURL returns the URL whose body is the latest version of tier.
func (e Endpoint) QueryURL(t Tier) string {
	return e.base(t) + ".txt"
}

// DownloadURL returns the URL of the bzip2-compressed snapshot of tier at version.
func (e Endpoint) DownloadURL(t Tier, version int64) string {
	return fmt.Sprintf("%s?t=%d", e.base(t), version)
}
