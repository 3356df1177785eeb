package encode

import (
	"errors"
	"fmt"

	"github.com/arnelofgren/weft"
	"github.com/arnelofgren/weft/internal/wire"
	"github.com/arnelofgren/weft/mutable"
	"github.com/arnelofgren/weft/sharedkeys"
)

// ErrKeyOutsideDictionary is returned by WriteKey when no dictionary is
// currently open.
var ErrKeyOutsideDictionary = errors.New("encode: WriteKey outside an open dictionary")

// pendingItem is a buffered array element or map key/value, not yet
// committed to the output buffer: either cellBytes holding a fully encoded
// scalar cell waiting to learn whether it will be inlined, or an anchored
// offset for a value that already has a fixed position (a closed nested
// container, a deduplicated string, or raw caller-supplied bytes).
type pendingItem struct {
	cellBytes  []byte
	anchored   bool
	offset     int
	stringBody string // non-empty only for not-yet-anchored string items, for uniquer recording on spill
}

type mapPair struct {
	keyStr   string
	key      pendingItem
	value    pendingItem
	isIntKey bool
	intCode  int
}

type frame struct {
	isMap             bool
	items             []pendingItem // array frames only
	pairs             []mapPair     // map frames only
	pendingKey        *pendingItem
	pendingKeyStr     *string
	pendingKeyIsInt   bool
	pendingKeyIntCode int
}

// Encoder is a streaming builder for weft binary output. It is
// single-threaded per instance and not safe for concurrent use: a small
// struct staging cell bytes behind a sticky-error, must-call-Finish
// lifecycle.
type Encoder struct {
	opts    Options
	buf     []byte
	frames  []frame
	uniquer *stringUniquer
	shared  *sharedkeys.Table

	rootSet    bool
	rootOffset int

	baseLen     int // non-zero once SetBase is called: length of the base document's bytes, for distance accounting
	baseExtern  []byte
	haveBase    bool

	errCode ErrCode
	err     error
}

// New returns an Encoder configured with DefaultOptions.
func New() *Encoder {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions returns an Encoder configured by opts.
func NewWithOptions(opts Options) *Encoder {
	return &Encoder{
		opts:    opts,
		buf:     make([]byte, 0, opts.ReserveSize),
		uniquer: newStringUniquer(opts.UniqueStrings),
	}
}

// Reset clears all staged state, making the Encoder reusable as if newly
// constructed with the same options.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
	e.frames = nil
	e.uniquer.reset()
	if e.opts.UniqueStrings {
		e.uniquer.enabled = true
	}
	e.shared = nil
	e.rootSet = false
	e.rootOffset = 0
	e.haveBase = false
	e.baseLen = 0
	e.baseExtern = nil
	e.errCode = ErrCodeNone
	e.err = nil
}

// SetSharedKeys attaches a shared-key table; eligible string map keys are
// auto-interned against it (holding its writer lock around the add, per
// sharedkeys.Table's own locking).
func (e *Encoder) SetSharedKeys(t *sharedkeys.Table) { e.shared = t }

// SuppressTrailer omits the root-pointer trailer from Finish's output.
func (e *Encoder) SuppressTrailer(suppress bool) { e.opts.SuppressTrailer = suppress }

// SetBase marks the encoder as appending to an already-written document:
// baseData is the full prior byte range, and baseExtern (optional) is its
// extern range. Pointers computed during this encoding session may reach
// back into baseData; the encoder itself never touches baseData's bytes,
// it only offsets its own distance accounting so pointers into the base
// resolve correctly once the two byte ranges are concatenated by the
// caller.
func (e *Encoder) SetBase(baseData []byte, baseExtern []byte) {
	e.haveBase = true
	e.baseLen = len(baseData)
	e.baseExtern = baseExtern
}

// ReuseBaseStrings loads baseData's string cells into the uniquer so new
// writes can back-reference them instead of re-embedding identical
// content. Call after SetBase.
func (e *Encoder) ReuseBaseStrings(baseData []byte) {
	if !e.opts.UniqueStrings {
		return
	}
	doc, err := weft.FromData(baseData, weft.Untrusted, e.shared, e.baseExtern)
	if err != nil {
		return
	}
	it := weft.NewDeepIterator(doc.Root())
	for it.Next() {
		v := it.Value()
		if v.Kind() != weft.KindString {
			continue
		}
		e.uniquer.record(v.AsString(), e.absoluteBaseOffset(v))
	}
	doc.Close()
}

// absoluteBaseOffset converts a Value's offset within baseData into the
// distance accounting used by finalizeContainer: base bytes sit logically
// before e.buf's own bytes, at negative offsets from e.buf's start.
func (e *Encoder) absoluteBaseOffset(v weft.Value) int {
	return -(e.baseLen) + weft.ValueOffset(v)
}

func (e *Encoder) fail(code ErrCode, err error) bool {
	if e.err == nil {
		e.errCode = code
		e.err = err
	}
	return false
}

// Err returns the encoder's sticky error, if any.
func (e *Encoder) Err() error { return e.err }

// ErrorCode returns the encoder's sticky error code.
func (e *Encoder) ErrorCode() ErrCode { return e.errCode }

// ErrorMessage returns the sticky error's message, or "" if none.
func (e *Encoder) ErrorMessage() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

// BytesWritten returns the number of bytes committed to the output buffer
// so far (buffered, not-yet-finalized container contents are not counted
// until their EndArray/EndDictionary call).
func (e *Encoder) BytesWritten() int { return len(e.buf) }

func (e *Encoder) topFrame() *frame {
	return &e.frames[len(e.frames)-1]
}

func (e *Encoder) failed() bool { return e.err != nil }

// emitItem routes a fully-prepared item to wherever it belongs: the
// document root if no container is open, the pending pair if a dictionary
// is waiting on its value, or the current array's item list.
func (e *Encoder) emitItem(it pendingItem) bool {
	if e.failed() {
		return false
	}
	if len(e.frames) == 0 {
		if e.rootSet {
			return e.fail(ErrCodeEncode, ErrMultipleRoots)
		}
		var off int
		if it.anchored {
			off = it.offset
		} else {
			off = len(e.buf)
			e.buf = append(e.buf, it.cellBytes...)
			e.buf = wire.Pad2(e.buf)
			if it.stringBody != "" {
				e.uniquer.record(it.stringBody, off)
			}
		}
		e.rootOffset = off
		e.rootSet = true
		return true
	}
	f := e.topFrame()
	if f.isMap {
		if f.pendingKey == nil {
			return e.fail(ErrCodeEncode, ErrValueWithoutKey)
		}
		f.pairs = append(f.pairs, mapPair{
			keyStr:   *f.pendingKeyStr,
			key:      *f.pendingKey,
			value:    it,
			isIntKey: f.pendingKeyIsInt,
			intCode:  f.pendingKeyIntCode,
		})
		f.pendingKey = nil
		f.pendingKeyStr = nil
		f.pendingKeyIsInt = false
		f.pendingKeyIntCode = 0
		return true
	}
	f.items = append(f.items, it)
	return true
}

// --- scalar writers ---

func (e *Encoder) WriteNull() bool {
	if e.failed() {
		return false
	}
	h := make([]byte, 2)
	wire.PutScalarHeader(h, wire.TagSpecial, wire.SpecialNull)
	return e.emitItem(pendingItem{cellBytes: h})
}

func (e *Encoder) WriteUndefined() bool {
	if e.failed() {
		return false
	}
	h := make([]byte, 2)
	wire.PutScalarHeader(h, wire.TagSpecial, wire.SpecialUndefined)
	return e.emitItem(pendingItem{cellBytes: h})
}

func (e *Encoder) WriteBool(v bool) bool {
	if e.failed() {
		return false
	}
	sub := uint16(wire.SpecialFalse)
	if v {
		sub = wire.SpecialTrue
	}
	h := make([]byte, 2)
	wire.PutScalarHeader(h, wire.TagSpecial, sub)
	return e.emitItem(pendingItem{cellBytes: h})
}

func (e *Encoder) WriteInt(v int64) bool {
	if e.failed() {
		return false
	}
	return e.emitItem(pendingItem{cellBytes: buildIntCell(v, true)})
}

func (e *Encoder) WriteUInt(v uint64) bool {
	if e.failed() {
		return false
	}
	if v <= 1<<63-1 {
		if payload, ok := wire.EncodeShortInt(int64(v)); ok {
			h := make([]byte, 2)
			wire.PutScalarHeader(h, wire.TagShortInt, payload)
			return e.emitItem(pendingItem{cellBytes: h})
		}
	}
	n := wire.MinBytesForUint(v)
	payload := wire.EncodeIntPayload(wire.IntPayload{Signed: false, ByteCount: n})
	h := make([]byte, 2)
	wire.PutScalarHeader(h, wire.TagInt, payload)
	tail := make([]byte, n)
	wire.PutIntBytes(tail, int64(v), n)
	return e.emitItem(pendingItem{cellBytes: append(h, tail...)})
}

func (e *Encoder) WriteFloat(v float32) bool {
	if e.failed() {
		return false
	}
	return e.emitItem(pendingItem{cellBytes: wire.EncodeFloat(nil, float64(v), wire.FloatSingle)})
}

func (e *Encoder) WriteDouble(v float64) bool {
	if e.failed() {
		return false
	}
	return e.emitItem(pendingItem{cellBytes: wire.EncodeFloat(nil, v, wire.FloatDouble)})
}

func (e *Encoder) WriteString(s string) bool {
	if e.failed() {
		return false
	}
	if off, ok := e.uniquer.lookup(s); ok {
		return e.emitItem(pendingItem{anchored: true, offset: off})
	}
	return e.emitItem(pendingItem{cellBytes: wire.EncodeLengthPrefixed(nil, wire.TagString, []byte(s)), stringBody: s})
}

// WriteDateString writes s (an ISO-8601 timestamp, by convention) as a
// plain string cell; the format has no separate date tag, matching how
// asTimestamp parses any string value on read.
func (e *Encoder) WriteDateString(s string) bool { return e.WriteString(s) }

func (e *Encoder) WriteData(data []byte) bool {
	if e.failed() {
		return false
	}
	return e.emitItem(pendingItem{cellBytes: wire.EncodeLengthPrefixed(nil, wire.TagBlob, data)})
}

// WriteRaw appends already-encoded cell bytes verbatim, trusting the
// caller that they form one complete, 2-byte-aligned value cell. It is the
// escape hatch for callers building cells wire.go doesn't otherwise expose
// a writer for.
func (e *Encoder) WriteRaw(cell []byte) bool {
	if e.failed() {
		return false
	}
	off := len(e.buf)
	e.buf = append(e.buf, cell...)
	e.buf = wire.Pad2(e.buf)
	return e.emitItem(pendingItem{anchored: true, offset: off})
}

// WriteValue deep-copies v into the output stream, recursing into arrays
// and maps. Pointers are not shared across documents: every nested value
// is re-emitted through this encoder's own writers.
func (e *Encoder) WriteValue(v weft.Value) bool {
	if e.failed() {
		return false
	}
	switch v.Kind() {
	case weft.KindUndefined:
		return e.WriteUndefined()
	case weft.KindNull:
		return e.WriteNull()
	case weft.KindBool:
		return e.WriteBool(v.AsBool())
	case weft.KindInt:
		if v.IsUnsignedInt() {
			return e.WriteUInt(v.AsUint64())
		}
		return e.WriteInt(v.AsInt64())
	case weft.KindFloat:
		if v.IsSingleFloat() {
			return e.WriteFloat(float32(v.AsFloat64()))
		}
		return e.WriteDouble(v.AsFloat64())
	case weft.KindString:
		return e.WriteString(v.AsString())
	case weft.KindBlob:
		return e.WriteData(v.AsBlob())
	case weft.KindArray:
		a := v.AsArray()
		if !e.BeginArray(a.Len()) {
			return false
		}
		ok := true
		a.Range(func(_ int, elem weft.Value) bool {
			ok = e.WriteValue(elem)
			return ok
		})
		if !ok {
			return false
		}
		return e.EndArray()
	case weft.KindMap:
		m := v.AsMap()
		if !e.BeginDictionary(m.Len()) {
			return false
		}
		ok := true
		m.Range(func(key string, val weft.Value) bool {
			if !e.WriteKey(key) {
				ok = false
				return false
			}
			ok = e.WriteValue(val)
			return ok
		})
		if !ok {
			return false
		}
		return e.EndDictionary()
	default:
		return e.WriteUndefined()
	}
}

// WriteMutable deep-copies a mutable overlay's current state into the
// output stream: edited slots and never-touched source slots are emitted
// alike, so handing a MutableArray/MutableDict to an encoder does not
// freeze it or require resolving it back to a plain weft.Value first. A
// slot that was never materialized for editing is still a plain
// weft.Value under the hood and goes through WriteValue, so when the
// encoder has a base document loaded via SetBase/ReuseBaseStrings, an
// untouched string slot can still back-reference the base instead of
// being re-embedded, the same amendment path an unedited WriteValue call
// already gets.
func (e *Encoder) WriteMutable(v mutable.Value) bool {
	if e.failed() {
		return false
	}
	if arr := v.MutableArray(); arr != nil {
		return e.WriteMutableArray(arr)
	}
	if dict := v.MutableDict(); dict != nil {
		return e.WriteMutableDict(dict)
	}
	imm, _ := v.Immutable()
	return e.WriteValue(imm)
}

// WriteMutableArray writes a's current elements, recursing into any
// element that is itself a materialized mutable array or dict.
func (e *Encoder) WriteMutableArray(a *mutable.MutableArray) bool {
	if e.failed() {
		return false
	}
	if !e.BeginArray(a.Len()) {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if !e.WriteMutable(a.Get(i)) {
			return false
		}
	}
	return e.EndArray()
}

// WriteMutableDict writes d's current pairs, recursing into any value
// that is itself a materialized mutable array or dict.
func (e *Encoder) WriteMutableDict(d *mutable.MutableDict) bool {
	if e.failed() {
		return false
	}
	if !e.BeginDictionary(d.Len()) {
		return false
	}
	ok := true
	d.Range(func(key string, val mutable.Value) bool {
		if !e.WriteKey(key) {
			ok = false
			return false
		}
		ok = e.WriteMutable(val)
		return ok
	})
	if !ok {
		return false
	}
	return e.EndDictionary()
}

// --- containers ---

// BeginArray opens a new array. hint is advisory (reserved capacity).
func (e *Encoder) BeginArray(hint int) bool {
	if e.failed() {
		return false
	}
	f := frame{items: make([]pendingItem, 0, hint)}
	e.frames = append(e.frames, f)
	return true
}

// EndArray closes the most recently opened array.
func (e *Encoder) EndArray() bool {
	if e.failed() {
		return false
	}
	if len(e.frames) == 0 || e.topFrame().isMap {
		return e.fail(ErrCodeEncode, ErrUnbalancedEnd)
	}
	f := e.frames[len(e.frames)-1]
	e.frames = e.frames[:len(e.frames)-1]
	off := e.finalizeContainer(wire.TagArray, f.items, len(f.items))
	return e.emitItem(pendingItem{anchored: true, offset: off})
}

// BeginDictionary opens a new map. hint is advisory (reserved capacity).
func (e *Encoder) BeginDictionary(hint int) bool {
	if e.failed() {
		return false
	}
	f := frame{isMap: true, pairs: make([]mapPair, 0, hint)}
	e.frames = append(e.frames, f)
	return true
}

// EndDictionary closes the most recently opened map. Pairs are sorted
// before the slot array is written: shared-key integer codes sort before
// literal string keys, ascending by code among themselves; literal string
// keys sort byte-lexicographically among themselves. This matches the
// order a reader's lookup expects, since a key eligible for interning may
// sort far from where its string form would fall alphabetically.
func (e *Encoder) EndDictionary() bool {
	if e.failed() {
		return false
	}
	if len(e.frames) == 0 || !e.topFrame().isMap {
		return e.fail(ErrCodeEncode, ErrUnbalancedEnd)
	}
	f := e.frames[len(e.frames)-1]
	e.frames = e.frames[:len(e.frames)-1]
	if f.pendingKey != nil {
		return e.fail(ErrCodeEncode, ErrKeyWithoutValue)
	}
	sortPairs(f.pairs)
	slots := make([]pendingItem, 0, 2*len(f.pairs))
	for _, p := range f.pairs {
		slots = append(slots, p.key, p.value)
	}
	off := e.finalizeContainer(wire.TagMap, slots, len(f.pairs))
	return e.emitItem(pendingItem{anchored: true, offset: off})
}

// pairLess reports whether a sorts before b: integer-coded keys before
// string keys, each group ordered within itself (by code, then by string).
func pairLess(a, b mapPair) bool {
	if a.isIntKey != b.isIntKey {
		return a.isIntKey
	}
	if a.isIntKey {
		return a.intCode < b.intCode
	}
	return a.keyStr < b.keyStr
}

func sortPairs(pairs []mapPair) {
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && pairLess(pairs[j], pairs[j-1]); j-- {
			pairs[j-1], pairs[j] = pairs[j], pairs[j-1]
		}
	}
}

// WriteKey stages a map key; the next writer call supplies its value.
func (e *Encoder) WriteKey(s string) bool {
	if e.failed() {
		return false
	}
	if len(e.frames) == 0 || !e.topFrame().isMap {
		return e.fail(ErrCodeEncode, ErrKeyOutsideDictionary)
	}
	f := e.topFrame()
	if f.pendingKey != nil {
		return e.fail(ErrCodeEncode, ErrKeyWithoutValue)
	}
	item, isInt, code := e.buildKeyItem(s)
	f.pendingKey = &item
	keyCopy := s
	f.pendingKeyStr = &keyCopy
	f.pendingKeyIsInt = isInt
	f.pendingKeyIntCode = code
	return true
}

// WriteKeyValue stages an existing Value's string content as a map key.
func (e *Encoder) WriteKeyValue(v weft.Value) bool { return e.WriteKey(v.AsString()) }

// buildKeyItem encodes s as a map key cell, reporting whether the cell it
// produced is a shared-key integer code (and if so, the code itself) so
// EndDictionary can sort it into the integer-coded partition.
func (e *Encoder) buildKeyItem(s string) (item pendingItem, isInt bool, code int) {
	if e.shared != nil && sharedkeys.Eligible(s) {
		if c, ok := e.shared.EncodeAndAdd(s); ok {
			payload, _ := wire.EncodeShortInt(int64(c))
			h := make([]byte, 2)
			wire.PutScalarHeader(h, wire.TagShortInt, payload)
			return pendingItem{cellBytes: h}, true, c
		}
	}
	if off, ok := e.uniquer.lookup(s); ok {
		return pendingItem{anchored: true, offset: off}, false, 0
	}
	return pendingItem{cellBytes: wire.EncodeLengthPrefixed(nil, wire.TagString, []byte(s)), stringBody: s}, false, 0
}

// --- finalization ---

func buildIntCell(v int64, signed bool) []byte {
	if payload, ok := wire.EncodeShortInt(v); ok {
		h := make([]byte, 2)
		wire.PutScalarHeader(h, wire.TagShortInt, payload)
		return h
	}
	n := wire.MinBytesForInt(v)
	payload := wire.EncodeIntPayload(wire.IntPayload{Signed: signed, ByteCount: n})
	h := make([]byte, 2)
	wire.PutScalarHeader(h, wire.TagInt, payload)
	tail := make([]byte, n)
	wire.PutIntBytes(tail, v, n)
	return append(h, tail...)
}

// finalizeContainer writes tag's container cell (spilling out-of-line any
// item that won't fit inline) to e.buf and returns its absolute offset.
// slots is the full slot list (one per array element, two per map pair);
// count is the header's own count field (slot count for arrays, pair
// count for maps).
func (e *Encoder) finalizeContainer(tag wire.Tag, slots []pendingItem, count int) int {
	if off, ok := e.tryFinalizeContainer(tag, slots, count, wire.Width2); ok {
		return off
	}
	off, _ := e.tryFinalizeContainer(tag, slots, count, wire.Width4)
	return off
}

type resolvedSlot struct {
	inline bool
	bytes  []byte
	offset int
}

func (e *Encoder) tryFinalizeContainer(tag wire.Tag, slots []pendingItem, count int, width wire.SlotWidth) (int, bool) {
	bufStart := len(e.buf)
	slotsStart := len(wire.EncodeContainerHeader(nil, tag, count, width))

	// Uniquer entries for strings spilled during this attempt are held
	// locally and only merged into e.uniquer once the attempt is known to
	// succeed: an aborted width2 attempt truncates e.buf, which would
	// otherwise leave the uniquer pointing at bytes that no longer exist.
	type pendingRecord struct {
		body   string
		offset int
	}
	var pendingRecords []pendingRecord

	resolved := make([]resolvedSlot, len(slots))
	for i, it := range slots {
		if it.anchored {
			resolved[i] = resolvedSlot{offset: it.offset}
			continue
		}
		if wire.FitsInline(len(it.cellBytes), width) {
			resolved[i] = resolvedSlot{inline: true, bytes: it.cellBytes}
			continue
		}
		if it.stringBody != "" && e.uniquer.enabled {
			off, ok := e.uniquer.lookup(it.stringBody)
			for _, r := range pendingRecords {
				if !ok && r.body == it.stringBody {
					off, ok = r.offset, true
				}
			}
			if ok {
				resolved[i] = resolvedSlot{offset: off}
				continue
			}
		}
		off := len(e.buf)
		e.buf = append(e.buf, it.cellBytes...)
		e.buf = wire.Pad2(e.buf)
		if it.stringBody != "" {
			pendingRecords = append(pendingRecords, pendingRecord{body: it.stringBody, offset: off})
		}
		resolved[i] = resolvedSlot{offset: off}
	}

	headerOffset := len(e.buf)
	for i, rs := range resolved {
		if rs.inline {
			continue
		}
		slotAbs := headerOffset + slotsStart + i*int(width)
		distance := slotAbs - rs.offset
		if width == wire.Width2 && distance/2 > 0x7fff {
			e.buf = e.buf[:bufStart]
			return 0, false
		}
	}
	for _, r := range pendingRecords {
		e.uniquer.record(r.body, r.offset)
	}

	e.buf = wire.EncodeContainerHeader(e.buf, tag, count, width)
	for _, rs := range resolved {
		if rs.inline {
			e.buf = append(e.buf, rs.bytes...)
			e.buf = append(e.buf, make([]byte, int(width)-len(rs.bytes))...)
			continue
		}
		slotAbs := len(e.buf)
		distance := slotAbs - rs.offset
		slot := make([]byte, width)
		var err error
		if width == wire.Width2 {
			err = wire.PutNarrowPointer(slot, distance)
		} else {
			err = wire.PutWidePointer(slot, distance)
		}
		if err != nil {
			e.fail(ErrCodeEncode, fmt.Errorf("encode: %w", err))
		}
		e.buf = append(e.buf, slot...)
	}
	return headerOffset, true
}

// --- finish ---

// Finish returns the encoded buffer (with a trailer appended, unless
// SuppressTrailer was set) and clears the Encoder's own buffer so it can
// be reused without double-emitting.
func (e *Encoder) Finish() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if len(e.frames) != 0 {
		return nil, ErrOpenContainer
	}
	if !e.rootSet {
		return nil, ErrNoRoot
	}
	out := e.buf
	if !e.opts.SuppressTrailer {
		var err error
		out, err = wire.EncodeTrailer(out, e.rootOffset)
		if err != nil {
			return nil, fmt.Errorf("encode: %w", err)
		}
	}
	return out, nil
}

// FinishDoc calls Finish and wraps the result in a weft.Doc.
func (e *Encoder) FinishDoc() (*weft.Doc, error) {
	data, err := e.Finish()
	if err != nil {
		return nil, err
	}
	return weft.FromTrustedData(data, e.shared, e.baseExtern)
}
