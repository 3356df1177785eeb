package weft

import "github.com/arnelofgren/weft/internal/wire"

// Map is a read-only view of a TagMap Value's key/value pairs. Pairs are
// stored sorted: shared-key integer codes first (ascending by code), then
// literal string keys (byte-lexicographic). The zero Map has length 0.
type Map struct {
	v  Value
	ch wire.ContainerHeader
}

// Len returns the number of key/value pairs.
func (m Map) Len() int {
	if m.v.buf == nil {
		return 0
	}
	return m.ch.Count / 2
}

func (m Map) slotValue(pairIndex, slotInPair int) (Value, error) {
	slotOff := m.v.off + m.ch.SlotOffset(2*pairIndex+slotInPair)
	return resolveSlot(m.v.buf, slotOff, m.ch.Width)
}

// keyAt decodes the key string for pair i, resolving a shared-key integer
// code through the pair's owning Scope if necessary.
func (m Map) keyAt(i int) (string, bool) {
	kv, err := m.slotValue(i, 0)
	if err != nil {
		return "", false
	}
	switch kv.Kind() {
	case KindString:
		return kv.AsString(), true
	case KindInt:
		scope, ok := Containing(kv.buf, kv.off)
		if !ok || scope.SharedKeys() == nil {
			return "", false
		}
		return scope.SharedKeys().Decode(int(kv.AsInt64()))
	default:
		return "", false
	}
}

// Get looks up key, returning the undefined Value on a miss. Lookup is
// two-phase: if key is itself a
// code in the map's shared-key table, the integer-coded partition is
// searched first; failing that (or if key was never interned), the
// string-coded partition is searched by its literal bytes. This mirrors
// how EndDictionary ordered the pairs, so either phase alone would miss
// keys living in the other partition.
func (m Map) Get(key string) Value {
	if code, ok := m.sharedKeyCode(key); ok {
		if i, found := m.searchIntCode(code); found {
			return m.valueAt(i)
		}
	}
	if i, found := m.searchString(key); found {
		return m.valueAt(i)
	}
	return undefinedValue
}

// sharedKeyCode looks up key's shared-key code, if any, via the Scope
// owning this map's bytes.
func (m Map) sharedKeyCode(key string) (int, bool) {
	scope, ok := Containing(m.v.buf, m.v.off)
	if !ok || scope.SharedKeys() == nil {
		return 0, false
	}
	return scope.SharedKeys().Encode(key)
}

// searchIntCode binary-searches the integer-coded prefix of the sorted
// pair array for a key slot decoding to exactly code.
func (m Map) searchIntCode(code int) (int, bool) {
	lo, hi := 0, m.Len()
	for lo < hi {
		mid := (lo + hi) / 2
		kv, err := m.slotValue(mid, 0)
		if err != nil {
			return 0, false
		}
		if kv.Kind() != KindInt {
			hi = mid
			continue
		}
		switch v := kv.AsInt64(); {
		case v < int64(code):
			lo = mid + 1
		case v > int64(code):
			hi = mid
		default:
			return mid, true
		}
	}
	return 0, false
}

// searchString binary-searches the string-coded suffix of the sorted pair
// array for a literal key equal to key, skipping past the integer-coded
// prefix without decoding it.
func (m Map) searchString(key string) (int, bool) {
	lo, hi := 0, m.Len()
	for lo < hi {
		mid := (lo + hi) / 2
		kv, err := m.slotValue(mid, 0)
		if err != nil {
			return 0, false
		}
		if kv.Kind() == KindInt {
			lo = mid + 1
			continue
		}
		switch k := kv.AsString(); {
		case k < key:
			lo = mid + 1
		case k > key:
			hi = mid
		default:
			return mid, true
		}
	}
	return 0, false
}

// valueAt returns the value half of pair i, or the undefined Value if it
// cannot be resolved.
func (m Map) valueAt(i int) Value {
	v, err := m.slotValue(i, 1)
	if err != nil {
		return undefinedValue
	}
	return v
}

// Range calls f for each key/value pair in sorted-key order, stopping
// early if f returns false.
func (m Map) Range(f func(key string, v Value) bool) {
	for i := 0; i < m.Len(); i++ {
		k, ok := m.keyAt(i)
		if !ok {
			continue
		}
		v, err := m.slotValue(i, 1)
		if err != nil {
			continue
		}
		if !f(k, v) {
			return
		}
	}
}

// Count is an alias for Len.
func (m Map) Count() int { return m.Len() }

// Empty reports whether m has no pairs.
func (m Map) Empty() bool { return m.Len() == 0 }

// PrecomputedKey is a key string wrapped for repeated lookups against maps
// that share a Scope and SharedKeys table. It does not currently cache a
// resolved shared-key code: a Map's owning Scope (and hence its
// SharedKeys table) is only known once Get actually runs, so there is
// nothing cheaper to precompute across different maps than the string
// itself. It exists as the named handle the format's own API convention
// expects, and is the natural place to add that caching if a future
// caller always looks the same key up against the same Scope.
type PrecomputedKey struct {
	key string
}

// NewPrecomputedKey wraps key for repeated lookups via Map.GetP.
func NewPrecomputedKey(key string) *PrecomputedKey {
	return &PrecomputedKey{key: key}
}

// String returns the underlying key string.
func (pk *PrecomputedKey) String() string { return pk.key }

// GetP looks up pk, equivalent to m.Get(pk.String()).
func (m Map) GetP(pk *PrecomputedKey) Value {
	return m.Get(pk.key)
}

// Iterator returns a pull-style iterator over m's pairs, as an alternative
// to Range for callers that want to drive iteration themselves.
func (m Map) Iterator() *MapIterator {
	return &MapIterator{m: m, i: -1}
}

// MapIterator is a pull-style cursor over a Map's sorted key/value pairs.
type MapIterator struct {
	m Map
	i int
}

// Next advances to the next pair and reports whether one exists.
func (it *MapIterator) Next() bool {
	it.i++
	return it.i < it.m.Len()
}

// Key returns the current pair's key, as a one-element Value (matching the
// format's "keys are Values too" convention) rather than a bare string.
// See KeyString for the common case of wanting the string directly.
func (it *MapIterator) Key() Value {
	kv, err := it.m.slotValue(it.i, 0)
	if err != nil {
		return undefinedValue
	}
	return kv
}

// KeyString returns the current pair's key, decoded to a string.
func (it *MapIterator) KeyString() string {
	k, _ := it.m.keyAt(it.i)
	return k
}

// Value returns the current pair's value.
func (it *MapIterator) Value() Value {
	v, err := it.m.slotValue(it.i, 1)
	if err != nil {
		return undefinedValue
	}
	return v
}
