package weft

import "strconv"

// KeyPath is a parsed path expression: a sequence of map-key and
// array-index segments, e.g. "addresses[0].city" or "$.addresses[0].city".
// The leading "$" is optional and, when present, is purely cosmetic:
// parsing strips it without attaching any special meaning to "the whole
// document" beyond what an empty path already means.
type KeyPath struct {
	segments []pathSegment
}

type pathSegment struct {
	key     string
	index   int
	isIndex bool
}

// ParseKeyPath parses s according to the grammar:
//
//	path    := ["$"] [segment] {("." segment) | ("[" index "]")}
//	segment := identifier
//	index   := digit+
//
// The first segment may appear with no leading ".". An empty path (or
// just "$") is valid and evaluates to the root value itself.
func ParseKeyPath(s string) (KeyPath, error) {
	i, n := 0, len(s)
	if i < n && s[i] == '$' {
		i++
	}
	var segs []pathSegment
	first := true
	for i < n {
		switch s[i] {
		case '.':
			i++
			start := i
			for i < n && s[i] != '.' && s[i] != '[' {
				i++
			}
			if i == start {
				return KeyPath{}, ErrKeyPathSyntax
			}
			segs = append(segs, pathSegment{key: s[start:i]})
		case '[':
			i++
			start := i
			for i < n && s[i] >= '0' && s[i] <= '9' {
				i++
			}
			if i == start || i >= n || s[i] != ']' {
				return KeyPath{}, ErrKeyPathSyntax
			}
			idx, err := strconv.Atoi(s[start:i])
			if err != nil {
				return KeyPath{}, ErrKeyPathSyntax
			}
			i++ // consume ']'
			segs = append(segs, pathSegment{index: idx, isIndex: true})
		default:
			if !first {
				return KeyPath{}, ErrKeyPathSyntax
			}
			start := i
			for i < n && s[i] != '.' && s[i] != '[' {
				i++
			}
			if i == start {
				return KeyPath{}, ErrKeyPathSyntax
			}
			segs = append(segs, pathSegment{key: s[start:i]})
		}
		first = false
	}
	return KeyPath{segments: segs}, nil
}

// Evaluate walks root according to p, returning the undefined Value as
// soon as any segment misses (a map lacking the key, an array index out of
// range, or a segment applied to a scalar).
func (p KeyPath) Evaluate(root Value) Value {
	cur := root
	for _, seg := range p.segments {
		if seg.isIndex {
			cur = cur.AsArray().Get(seg.index)
		} else {
			cur = cur.AsMap().Get(seg.key)
		}
		if cur.IsUndefined() {
			return undefinedValue
		}
	}
	return cur
}
