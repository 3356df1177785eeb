package weft

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultMaxDepth is the nesting depth at which a DeepIterator gives up
// rather than continue descending: protection against a pathologically
// (or maliciously) deep document.
const DefaultMaxDepth = 1000

const initialStackCapacity = 256

// PathComponent is one step of a DeepIterator's path to the current
// value: either a map key or an array index.
type PathComponent struct {
	Key     string
	Index   int
	IsIndex bool
}

// String renders c the way PathString joins it onto its predecessor: a key
// on its own, an index as "[n]".
func (c PathComponent) String() string {
	if c.IsIndex {
		return "[" + strconv.Itoa(c.Index) + "]"
	}
	return c.Key
}

// DeepIterator walks a value tree in pre-order (a container is visited
// before its children). It uses an explicit, pre-allocated stack of pending
// frames rather than native recursion, so traversing a deeply nested
// document cannot overflow the call stack; MaxDepth additionally bounds how
// deep it is willing to go at all.
type DeepIterator struct {
	MaxDepth int

	stack        []iterFrame
	cur          Value
	curPath      []PathComponent
	lastChildren int // entries pushed onto stack for cur, for SkipChildren
	err          error
}

type iterFrame struct {
	v    Value
	path []PathComponent
}

// NewDeepIterator returns an iterator starting at root, with MaxDepth set
// to DefaultMaxDepth. root itself is the first value Next will yield, at
// depth 0 with an empty path.
func NewDeepIterator(root Value) *DeepIterator {
	it := &DeepIterator{MaxDepth: DefaultMaxDepth}
	it.stack = make([]iterFrame, 0, initialStackCapacity)
	it.stack = append(it.stack, iterFrame{v: root})
	return it
}

// Next advances to the next value in pre-order and reports whether one was
// available. It returns false both at the end of a well-formed traversal
// and after MaxDepth is exceeded; use Err to distinguish the two.
func (it *DeepIterator) Next() bool {
	if it.err != nil || len(it.stack) == 0 {
		return false
	}
	n := len(it.stack)
	frame := it.stack[n-1]
	it.stack = it.stack[:n-1]
	it.cur = frame.v
	it.curPath = frame.path
	it.lastChildren = 0

	if len(frame.path) > it.MaxDepth {
		it.err = fmt.Errorf("weft: deep iteration exceeded max depth %d", it.MaxDepth)
		return false
	}

	switch it.cur.Kind() {
	case KindArray:
		a := it.cur.AsArray()
		for i := a.Len() - 1; i >= 0; i-- {
			it.stack = append(it.stack, iterFrame{v: a.Get(i), path: childPath(frame.path, PathComponent{Index: i, IsIndex: true})})
			it.lastChildren++
		}
	case KindMap:
		m := it.cur.AsMap()
		type kv struct {
			key string
			v   Value
		}
		pairs := make([]kv, 0, m.Len())
		m.Range(func(key string, v Value) bool {
			pairs = append(pairs, kv{key, v})
			return true
		})
		for i := len(pairs) - 1; i >= 0; i-- {
			it.stack = append(it.stack, iterFrame{v: pairs[i].v, path: childPath(frame.path, PathComponent{Key: pairs[i].key})})
			it.lastChildren++
		}
	}
	return true
}

// childPath returns a new path slice holding parent's components plus comp,
// without aliasing parent's backing array across siblings.
func childPath(parent []PathComponent, comp PathComponent) []PathComponent {
	p := make([]PathComponent, len(parent)+1)
	copy(p, parent)
	p[len(parent)] = comp
	return p
}

// Value returns the value the most recent call to Next yielded.
func (it *DeepIterator) Value() Value { return it.cur }

// Err returns the error that stopped iteration early (only ever a
// max-depth error today), or nil if iteration ran to completion.
func (it *DeepIterator) Err() error { return it.err }

// Depth returns the nesting depth of the current value: 0 for the root.
func (it *DeepIterator) Depth() int { return len(it.curPath) }

// Key returns the map key leading to the current value, or "" if the
// current value is the root or was reached via an array index.
func (it *DeepIterator) Key() string {
	if len(it.curPath) == 0 {
		return ""
	}
	last := it.curPath[len(it.curPath)-1]
	if last.IsIndex {
		return ""
	}
	return last.Key
}

// Index returns the array index leading to the current value, or -1 if the
// current value is the root or was reached via a map key.
func (it *DeepIterator) Index() int {
	if len(it.curPath) == 0 {
		return -1
	}
	last := it.curPath[len(it.curPath)-1]
	if !last.IsIndex {
		return -1
	}
	return last.Index
}

// Path returns the full sequence of components from the root to the
// current value. The root's path is empty. Callers must not mutate the
// returned slice.
func (it *DeepIterator) Path() []PathComponent { return it.curPath }

// PathString renders the current path as dotted keys with bracketed
// indices: plain keys dotted together ("b.c"), array indices appended
// directly without a dot ("c[0]"). The root's path string is "".
func (it *DeepIterator) PathString() string {
	var sb strings.Builder
	for i, c := range it.curPath {
		if c.IsIndex {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(c.Index))
			sb.WriteByte(']')
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(c.Key)
	}
	return sb.String()
}

// JSONPointer renders the current path as an RFC 6901 JSON Pointer
// ("/c/0"), escaping "~" and "/" within key components. The root's pointer
// is "".
func (it *DeepIterator) JSONPointer() string {
	if len(it.curPath) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, c := range it.curPath {
		sb.WriteByte('/')
		if c.IsIndex {
			sb.WriteString(strconv.Itoa(c.Index))
			continue
		}
		sb.WriteString(escapeJSONPointerToken(c.Key))
	}
	return sb.String()
}

func escapeJSONPointerToken(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	return s
}

// SkipChildren discards the children of the value most recently returned by
// Next, so the iterator moves directly to its next sibling (or its
// ancestor's next sibling). It has no effect if called more than once
// between two Next calls, or if cur has no children.
func (it *DeepIterator) SkipChildren() {
	if it.lastChildren == 0 {
		return
	}
	it.stack = it.stack[:len(it.stack)-it.lastChildren]
	it.lastChildren = 0
}
