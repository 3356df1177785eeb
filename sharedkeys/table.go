// Package sharedkeys implements an append-only, bidirectional table mapping
// short, identifier-like map keys to small integers. A document encoder can
// write a key once as the integer code instead of repeating the full string
// on every map that uses it; a decoder resolves the code back to the string
// by consulting the same table, recovered for a given Value through the
// weft package's Scope registry.
//
// The table is deliberately small and simple: a single RWMutex guards
// both directions, safe for concurrent readers with single-writer use.
package sharedkeys

import "sync"

// MaxCount is the largest number of keys a single table may hold. Once full,
// EncodeAndAdd stops admitting new keys and callers must fall back to
// writing the literal string.
const MaxCount = 2048

// MaxKeyLen is the longest string (in UTF-8 bytes) eligible for interning.
const MaxKeyLen = 16

// Eligible reports whether s is short enough and drawn entirely from the
// format's frozen interning alphabet, [A-Za-z0-9_./$-]. This set is fixed:
// it must stay stable across readers and writers, since a code's meaning
// depends on both sides agreeing on which strings are ever assigned one.
// Ineligible keys are always written out literally and never occupy a slot
// in the table.
func Eligible(s string) bool {
	if len(s) == 0 || len(s) > MaxKeyLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isEligibleByte(s[i]) {
			return false
		}
	}
	return true
}

func isEligibleByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z':
		return true
	case b >= 'a' && b <= 'z':
		return true
	case b >= '0' && b <= '9':
		return true
	case b == '_' || b == '.' || b == '/' || b == '$' || b == '-':
		return true
	default:
		return false
	}
}

// Table is a shared-keys dictionary: strings on one side, their assigned
// codes (0-based, assignment order) on the other.
type Table struct {
	mu     sync.RWMutex
	byCode []string
	byName map[string]int
}

// New returns an empty Table.
func New() *Table {
	return &Table{byName: make(map[string]int)}
}

// FromState rebuilds a Table from a previously captured State, preserving
// code assignment order (code i is keys[i]).
func FromState(keys []string) *Table {
	t := &Table{
		byCode: append([]string(nil), keys...),
		byName: make(map[string]int, len(keys)),
	}
	for i, k := range keys {
		t.byName[k] = i
	}
	return t
}

// State returns a snapshot of the table's keys in code order, suitable for
// persisting alongside a document and later restoring via FromState.
func (t *Table) State() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.byCode...)
}

// Count returns the number of keys currently interned.
func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byCode)
}

// Encode looks up s's code without adding it. ok is false if s has never
// been interned.
func (t *Table) Encode(s string) (code int, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	code, ok = t.byName[s]
	return code, ok
}

// EncodeAndAdd looks up s's code, interning it first if it is eligible,
// not already present, and the table has room. ok is false when s could
// not be encoded as a code at all (ineligible or table full); callers
// should fall back to writing s as a literal string in that case.
func (t *Table) EncodeAndAdd(s string) (code int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if code, ok := t.byName[s]; ok {
		return code, true
	}
	if !Eligible(s) || len(t.byCode) >= MaxCount {
		return 0, false
	}
	code = len(t.byCode)
	t.byCode = append(t.byCode, s)
	t.byName[s] = code
	return code, true
}

// Decode returns the string for code, or ok=false if code is out of range.
func (t *Table) Decode(code int) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if code < 0 || code >= len(t.byCode) {
		return "", false
	}
	return t.byCode[code], true
}
