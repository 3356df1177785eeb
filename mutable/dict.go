package mutable

import (
	"sort"

	"github.com/arnelofgren/weft"
)

type dictSlot struct {
	key  string
	imm  weft.Value
	arr  *MutableArray
	dict *MutableDict
}

func (s dictSlot) toValue() Value {
	switch {
	case s.arr != nil:
		return Value{arr: s.arr}
	case s.dict != nil:
		return Value{dict: s.dict}
	default:
		return immValue(s.imm)
	}
}

// MutableDict is a copy-on-write overlay over an optional immutable source
// map, keeping its pairs sorted byte-wise by key string (unlike the binary
// format, shared-key-coded keys are not placed first).
type MutableDict struct {
	source       weft.Value
	haveSource   bool
	flags        CopyFlags
	slots        []dictSlot // sorted by key
	materialized bool
	dirty        bool
}

// NewMutableDict returns an empty MutableDict with no source.
func NewMutableDict() *MutableDict {
	return &MutableDict{materialized: true}
}

// NewMutableDictFromSource returns a MutableDict overlaying src, whose
// pairs are not copied until the dict is first read or edited.
func NewMutableDictFromSource(src weft.Value, flags CopyFlags) *MutableDict {
	return &MutableDict{source: src, haveSource: true, flags: flags}
}

func (md *MutableDict) ensureMaterialized() {
	if md.materialized {
		return
	}
	md.materialized = true
	if !md.haveSource {
		return
	}
	m := md.source.AsMap()
	md.slots = make([]dictSlot, 0, m.Len())
	m.Range(func(key string, v weft.Value) bool {
		md.slots = append(md.slots, md.materializeSlot(key, v))
		return true
	})
	sort.Slice(md.slots, func(i, j int) bool { return md.slots[i].key < md.slots[j].key })
}

// materializeSlot is MutableArray.materializeSlot's counterpart for a
// dict's key/value pairs.
func (md *MutableDict) materializeSlot(key string, v weft.Value) dictSlot {
	if !md.flags.Deep {
		return dictSlot{key: key, imm: v}
	}
	switch v.Kind() {
	case weft.KindArray:
		child := NewMutableArrayFromSource(v, md.flags)
		child.ensureMaterialized()
		return dictSlot{key: key, arr: child}
	case weft.KindMap:
		child := NewMutableDictFromSource(v, md.flags)
		child.ensureMaterialized()
		return dictSlot{key: key, dict: child}
	default:
		return dictSlot{key: key, imm: v}
	}
}

func (md *MutableDict) find(key string) (int, bool) {
	i := sort.Search(len(md.slots), func(i int) bool { return md.slots[i].key >= key })
	if i < len(md.slots) && md.slots[i].key == key {
		return i, true
	}
	return i, false
}

// Len returns the current number of pairs.
func (md *MutableDict) Len() int {
	md.ensureMaterialized()
	return len(md.slots)
}

// Empty reports whether md has no pairs.
func (md *MutableDict) Empty() bool { return md.Len() == 0 }

// Get returns the value for key, or the undefined Value on a miss.
func (md *MutableDict) Get(key string) Value {
	md.ensureMaterialized()
	i, ok := md.find(key)
	if !ok {
		return Value{}
	}
	return md.slots[i].toValue()
}

// Set inserts or overwrites key with an immutable value.
func (md *MutableDict) Set(key string, v weft.Value) {
	md.ensureMaterialized()
	i, ok := md.find(key)
	if ok {
		md.slots[i] = dictSlot{key: key, imm: v}
	} else {
		md.slots = append(md.slots, dictSlot{})
		copy(md.slots[i+1:], md.slots[i:])
		md.slots[i] = dictSlot{key: key, imm: v}
	}
	md.dirty = true
}

// Remove deletes key, if present.
func (md *MutableDict) Remove(key string) {
	md.ensureMaterialized()
	i, ok := md.find(key)
	if !ok {
		return
	}
	md.slots = append(md.slots[:i], md.slots[i+1:]...)
	md.dirty = true
}

// RemoveAll empties the dict.
func (md *MutableDict) RemoveAll() {
	md.materialized = true
	md.slots = nil
	md.dirty = true
}

// GetMutableArray returns key's value as a *MutableArray, materializing
// one if that slot is not already a mutable array. Returns nil if key is
// absent or the slot holds something other than an array.
func (md *MutableDict) GetMutableArray(key string) *MutableArray {
	md.ensureMaterialized()
	i, ok := md.find(key)
	if !ok {
		return nil
	}
	s := &md.slots[i]
	if s.arr != nil {
		return s.arr
	}
	if s.dict != nil {
		return nil
	}
	if s.imm.Kind() != weft.KindArray {
		return nil
	}
	child := NewMutableArrayFromSource(s.imm, md.flags)
	*s = dictSlot{key: key, arr: child}
	return child
}

// GetMutableDict is GetMutableArray's counterpart for map-valued pairs.
func (md *MutableDict) GetMutableDict(key string) *MutableDict {
	md.ensureMaterialized()
	i, ok := md.find(key)
	if !ok {
		return nil
	}
	s := &md.slots[i]
	if s.dict != nil {
		return s.dict
	}
	if s.arr != nil {
		return nil
	}
	if s.imm.Kind() != weft.KindMap {
		return nil
	}
	child := NewMutableDictFromSource(s.imm, md.flags)
	*s = dictSlot{key: key, dict: child}
	return child
}

// Range calls f for each key/value pair in sorted-key order, stopping
// early if f returns false.
func (md *MutableDict) Range(f func(key string, v Value) bool) {
	md.ensureMaterialized()
	for _, s := range md.slots {
		if !f(s.key, s.toValue()) {
			return
		}
	}
}

// IsChanged reports whether md or any materialized child has been edited
// since construction.
func (md *MutableDict) IsChanged() bool {
	if md.dirty {
		return true
	}
	for _, s := range md.slots {
		if s.arr != nil && s.arr.IsChanged() {
			return true
		}
		if s.dict != nil && s.dict.IsChanged() {
			return true
		}
	}
	return false
}

// Source returns the immutable map md overlays, and false if md has no
// source (it was created fresh with NewMutableDict).
func (md *MutableDict) Source() (weft.Value, bool) {
	return md.source, md.haveSource
}
