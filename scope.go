package weft

import (
	"sort"
	"sync"
	"unsafe"

	"github.com/arnelofgren/weft/sharedkeys"
)

// Scope is a byte range together with the out-of-band state needed to
// interpret values inside it: an optional shared-keys table for decoding
// interned map keys, and an optional extern destination: a second byte
// range, conceptually contiguous immediately before this one, that
// back-pointers may resolve into when their target offset falls below zero.
//
// A Value never stores a pointer to its Scope (see the package doc comment
// on avoiding per-Value back-pointers); instead Scopes register themselves
// in a process-wide, address-keyed registry, and Containing recovers the
// owning Scope for a Value only when one is actually needed: decoding a
// shared key, or resolving an extern pointer.
type Scope struct {
	data       []byte
	sharedKeys *sharedkeys.Table
	extern     []byte // extern destination, or nil
}

// NewScope registers and returns a Scope over data. sharedKeys may be nil
// (no key interning in this range). extern may be nil (no extern
// destination); when non-nil it must itself belong to an already-registered
// Scope, since resolving into it will need that Scope's shared keys too.
//
// NewScope panics with a *RegistryError if data's range cannot be
// reconciled with what is already registered (see ErrScopeOverlap,
// ErrScopeMismatch), a condition the registry cannot safely continue from,
// rather than one a caller could meaningfully recover from.
func NewScope(data []byte, sharedKeys *sharedkeys.Table, extern []byte) *Scope {
	s := &Scope{data: data, sharedKeys: sharedKeys, extern: extern}
	registerScope(s)
	return s
}

// NewSubScope registers a Scope over a sub-range of an already-registered
// parent's data, inheriting the parent's shared keys and extern destination
// unless overridden. Sub-scopes exist so a value tree embedded inside a
// larger buffer (e.g. one document stored as a blob inside another) can be
// looked up and decoded independently of its parent.
func NewSubScope(parent *Scope, data []byte, sharedKeys *sharedkeys.Table, extern []byte) *Scope {
	if sharedKeys == nil {
		sharedKeys = parent.sharedKeys
	}
	if extern == nil {
		extern = parent.extern
	}
	return NewScope(data, sharedKeys, extern)
}

// Close deregisters s. After Close, lookups through Containing for
// addresses within s's range will no longer find it. s's data must not be
// reused or mutated afterward if it might overlap a future Scope's range.
func (s *Scope) Close() {
	deregisterScope(s)
}

// SharedKeys returns s's shared-key table, or nil if it has none.
func (s *Scope) SharedKeys() *sharedkeys.Table { return s.sharedKeys }

// Data returns the byte range s owns.
func (s *Scope) Data() []byte { return s.data }

// resolveExternOffset maps a negative data-relative offset (one that fell
// before the start of s.data when a back-pointer was followed) into an
// offset within s.extern. The extern range is defined as conceptually
// ending exactly where s.data begins, so offset -1 is the last byte of
// extern, -len(extern) is its first.
func (s *Scope) resolveExternOffset(dataRelativeOffset int) (externOff int, ok bool) {
	if s.extern == nil {
		return 0, false
	}
	externOff = len(s.extern) + dataRelativeOffset
	if externOff < 0 || externOff >= len(s.extern) {
		return 0, false
	}
	return externOff, true
}

// --- process-wide registry -------------------------------------------------

type scopeEntry struct {
	start uintptr
	end   uintptr
	scope *Scope
}

var (
	registryMu  sync.Mutex
	registrySlc []scopeEntry // sorted ascending by end
)

func addrRange(data []byte) (start, end uintptr) {
	if len(data) == 0 {
		// Zero-length ranges can't be looked up by address (there is no
		// &data[0]); give them a degenerate, never-matching range.
		return 0, 0
	}
	start = uintptr(unsafe.Pointer(&data[0]))
	end = start + uintptr(len(data))
	return start, end
}

func rangesDisjoint(aStart, aEnd, bStart, bEnd uintptr) bool {
	return aEnd <= bStart || bEnd <= aStart
}

func rangeNested(aStart, aEnd, bStart, bEnd uintptr) bool {
	return (aStart <= bStart && bEnd <= aEnd) || (bStart <= aStart && aEnd <= bEnd)
}

func registerScope(s *Scope) {
	start, end := addrRange(s.data)

	registryMu.Lock()
	defer registryMu.Unlock()

	for i := range registrySlc {
		e := &registrySlc[i]
		if rangesDisjoint(start, end, e.start, e.end) {
			continue
		}
		if start == e.start && end == e.end {
			if !sameScopeConfig(s, e.scope) {
				panic(&RegistryError{Err: ErrScopeMismatch})
			}
			continue // idempotent duplicate registration, allowed
		}
		if !rangeNested(start, end, e.start, e.end) {
			panic(&RegistryError{Err: ErrScopeOverlap})
		}
		// strictly nested (sub-scope or ancestor), allowed
	}

	idx := sort.Search(len(registrySlc), func(i int) bool { return registrySlc[i].end >= end })
	entry := scopeEntry{start: start, end: end, scope: s}
	registrySlc = append(registrySlc, scopeEntry{})
	copy(registrySlc[idx+1:], registrySlc[idx:])
	registrySlc[idx] = entry
}

func sameScopeConfig(a, b *Scope) bool {
	return a.sharedKeys == b.sharedKeys && sameBytesIdentity(a.extern, b.extern)
}

func sameBytesIdentity(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}

func deregisterScope(s *Scope) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for i := range registrySlc {
		if registrySlc[i].scope == s {
			registrySlc = append(registrySlc[:i], registrySlc[i+1:]...)
			return
		}
	}
}

// Containing returns the most specific registered Scope whose byte range
// contains the address of buf[off], or false if no registered Scope covers
// it. When multiple nested Scopes overlap that address, the one with the
// smallest end offset (necessarily the innermost) is returned: the search
// walks the end-sorted registry forward from the first entry ending after
// the address and stops at the first one that starts at or before it.
func Containing(buf []byte, off int) (*Scope, bool) {
	if off < 0 || off >= len(buf) {
		return nil, false
	}
	p := uintptr(unsafe.Pointer(&buf[off]))

	registryMu.Lock()
	defer registryMu.Unlock()
	i := sort.Search(len(registrySlc), func(i int) bool { return registrySlc[i].end > p })
	for ; i < len(registrySlc); i++ {
		if e := registrySlc[i]; p >= e.start {
			return e.scope, true
		}
	}
	return nil, false
}
