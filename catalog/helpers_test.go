package catalog

type recordOption func(*Record)

func newRecord(id int, name string, opts ...recordOption) *Record {
	r := &Record{
		ID:         id,
		Name:       name,
		WebSiteURL: "https://minecraft.curseforge.com/projects/" + name,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func inSection(name string) recordOption {
	return func(r *Record) { r.CategorySection = &CategorySection{Name: name} }
}

func withPrimaryCategory(name string) recordOption {
	return func(r *Record) { r.PrimaryCategoryName = name }
}

func withCategories(names ...string) recordOption {
	return func(r *Record) {
		for _, n := range names {
			r.Categories = append(r.Categories, Category{Name: n})
		}
	}
}

func withFile(id int, versions ...string) recordOption {
	return func(r *Record) { r.LatestFiles = append(r.LatestFiles, File{ID: id, GameVersion: versions}) }
}

func withStub(fileID int, version string) recordOption {
	return func(r *Record) {
		r.GameVersionLatestFiles = append(r.GameVersionLatestFiles, FileStub{GameVersion: version, ProjectFileID: fileID})
	}
}

func withAuthors(primary string, others ...string) recordOption {
	return func(r *Record) {
		r.PrimaryAuthorName = primary
		for _, o := range others {
			r.Authors = append(r.Authors, Author{Name: o})
		}
	}
}

func ids(records []*Record) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}
