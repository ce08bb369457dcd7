package catalog

// Snapshot is the wire shape of one catalog file.
type Snapshot struct {
	Timestamp int64     `json:"timestamp"`
	Data      []*Record `json:"data"`
}

// Merge overlays incoming onto base. When incoming is nil or not newer than
// base, base is returned unchanged and changed is false.
//
// Otherwise the result starts from base's records; each incoming record
// replaces the base record with the same id in place, or is appended when
// there is none. The result carries incoming's timestamp. Neither input is
// modified.
func Merge(base, incoming *Snapshot) (merged *Snapshot, changed bool) {
	if base == nil {
		base = &Snapshot{}
	}
	if incoming == nil || incoming.Timestamp <= base.Timestamp {
		return base, false
	}

	data := make([]*Record, len(base.Data), len(base.Data)+len(incoming.Data))
	copy(data, base.Data)

	pos := make(map[int]int, len(data))
	for i, r := range data {
		if r == nil {
			continue
		}
		if _, seen := pos[r.ID]; !seen {
			pos[r.ID] = i
		}
	}

	for _, r := range incoming.Data {
		if r == nil {
			continue
		}
		if i, ok := pos[r.ID]; ok {
			data[i] = r
			continue
		}
		pos[r.ID] = len(data)
		data = append(data, r)
	}

	return &Snapshot{Timestamp: incoming.Timestamp, Data: data}, true
}
