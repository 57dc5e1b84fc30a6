package branches

import (
	"sort"

	"bankinfo/internal"
)

// Index maps identity keys to the first record seen with that key.
type Index struct {
	ByKey   map[string]internal.BranchRecord
	Dropped int
}

func BuildIndex(records []internal.BranchRecord) *Index {
	idx := &Index{ByKey: make(map[string]internal.BranchRecord, len(records))}
	for _, r := range records {
		key := r.Key()
		if _, exists := idx.ByKey[key]; exists {
			idx.Dropped++
			continue
		}
		idx.ByKey[key] = r
	}
	return idx
}

// SortedKeys returns the keys in byte-wise lexicographic order.
func (idx *Index) SortedKeys() []string {
	keys := make([]string, 0, len(idx.ByKey))
	for k := range idx.ByKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (idx *Index) Sorted() []internal.BranchRecord {
	keys := idx.SortedKeys()
	out := make([]internal.BranchRecord, 0, len(keys))
	for _, k := range keys {
		out = append(out, idx.ByKey[k])
	}
	return out
}
