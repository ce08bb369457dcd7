package catalog

import "strings"

// DefaultBundleSection is the section name that marks a record as a modpack.
const DefaultBundleSection = "Modpacks"

// Record is one catalog entry (a "project"), as found in the snapshot's data array.
type Record struct {
	ID                     int              `json:"Id"`
	Name                   string           `json:"Name"`
	Summary                string           `json:"Summary"`
	WebSiteURL             string           `json:"WebSiteURL"`
	GameID                 int              `json:"GameId"`
	DefaultFileID          int              `json:"DefaultFileId"`
	DownloadCount          float64          `json:"DownloadCount"`
	PopularityScore        float64          `json:"PopularityScore"`
	Status                 int              `json:"Status"`
	IsFeatured             int              `json:"IsFeatured"`
	AvatarURL              string           `json:"AvatarUrl"`
	PrimaryAuthorName      string           `json:"PrimaryAuthorName"`
	Authors                []Author         `json:"Authors"`
	PrimaryCategoryName    string           `json:"PrimaryCategoryName"`
	Categories             []Category       `json:"Categories"`
	CategorySection        *CategorySection `json:"CategorySection"`
	LatestFiles            []File           `json:"LatestFiles"`
	GameVersionLatestFiles []FileStub       `json:"GameVersionLatestFiles"`
}

// Author is an additional author of a record.
type Author struct {
	Name string `json:"Name"`
	URL  string `json:"Url"`
}

// Category is a secondary category of a record.
type Category struct {
	ID   int    `json:"Id"`
	Name string `json:"Name"`
	URL  string `json:"URL"`
}

// CategorySection is the coarse classification of a record, e.g. "Mods" or "Modpacks".
type CategorySection struct {
	ID          int    `json:"ID"`
	GameID      int    `json:"GameID"`
	Name        string `json:"Name"`
	PackageType int    `json:"PackageType"`
	Path        string `json:"Path"`
}

// File is a fully detailed file entry of a record.
type File struct {
	ID                 int      `json:"Id"`
	FileName           string   `json:"FileName"`
	FileNameOnDisk     string   `json:"FileNameOnDisk"`
	FileDate           string   `json:"FileDate"`
	ReleaseType        int      `json:"ReleaseType"`
	FileStatus         int      `json:"FileStatus"`
	DownloadURL        string   `json:"DownloadURL"`
	IsAlternate        bool     `json:"IsAlternate"`
	AlternateFileID    int      `json:"AlternateFileId"`
	IsAvailable        bool     `json:"IsAvailable"`
	PackageFingerprint int64    `json:"PackageFingerprint"`
	GameVersion        []string `json:"GameVersion"`
}

// FileStub is the latest file of a record for a single game version.
// An empty GameVersion means the field was absent on the wire.
type FileStub struct {
	GameVersion     string `json:"GameVesion"`
	ProjectFileID   int    `json:"ProjectFileID"`
	ProjectFileName string `json:"ProjectFileName"`
	FileType        int    `json:"FileType"`
}

// Section returns the record's section name, or "" when it has none.
func (r *Record) Section() string {
	if r.CategorySection == nil {
		return ""
	}
	return r.CategorySection.Name
}

// Slug returns the short name used in site URLs: the last path segment of
// WebSiteURL after trailing slashes are removed.
func (r *Record) Slug() string {
	return slugFromURL(r.WebSiteURL)
}

func slugFromURL(u string) string {
	u = strings.TrimRight(u, "/")
	if pos := strings.LastIndexByte(u, '/'); pos >= 0 {
		return u[pos+1:]
	}
	return u
}

// hasAuthor reports whether needle occurs, ignoring case, in the primary
// author or any additional author name. needle must already be lower-cased.
func (r *Record) hasAuthor(needle string) bool {
	if strings.Contains(strings.ToLower(r.PrimaryAuthorName), needle) {
		return true
	}
	for _, a := range r.Authors {
		if strings.Contains(strings.ToLower(a.Name), needle) {
			return true
		}
	}
	return false
}
