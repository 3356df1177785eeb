package encode

import "hash/fnv"

// stringUniquer deduplicates string cells by content: the first write of a
// given string records the absolute buffer offset of its encoded cell;
// later writes of identical content reuse that offset via a pointer
// instead of re-embedding the bytes. Unlike a bounded cache, every string
// written in one encoding session must stay referenceable for the
// session's lifetime, so the table is an unbounded append-only map.
type stringUniquer struct {
	enabled bool
	byHash  map[uint64][]uniqueEntry
}

type uniqueEntry struct {
	content string
	offset  int
}

func newStringUniquer(enabled bool) *stringUniquer {
	return &stringUniquer{enabled: enabled, byHash: make(map[uint64][]uniqueEntry)}
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s)) //nolint:errcheck // fnv hash.Write never errors
	return h.Sum64()
}

// lookup returns the offset of an earlier identical string's cell, if any.
func (u *stringUniquer) lookup(s string) (int, bool) {
	if !u.enabled {
		return 0, false
	}
	for _, e := range u.byHash[hashString(s)] {
		if e.content == s {
			return e.offset, true
		}
	}
	return 0, false
}

// record remembers that s's cell was written out-of-line at offset.
func (u *stringUniquer) record(s string, offset int) {
	if !u.enabled {
		return
	}
	h := hashString(s)
	u.byHash[h] = append(u.byHash[h], uniqueEntry{content: s, offset: offset})
}

// reset discards all recorded strings, as Encoder.Reset requires.
func (u *stringUniquer) reset() {
	u.byHash = make(map[uint64][]uniqueEntry)
}
