// Package wire decodes and encodes the binary cell layout described by the
// value format: 2-byte-aligned headers, inline/wide scalars, containers with
// a 2-or-4-byte slot width, and relative back-pointers. It has no notion of
// a Doc, a Scope, or shared keys; those live one layer up, in the weft
// package. wire only knows how to read and write bytes.
package wire

// Tag is the 4-bit primary tag occupying the top nibble of a 2-byte header.
// Values 0-7 are scalar/container tags; values 8-15 (top bit of the nibble
// set) all mean "this header is a pointer", with the remaining 15 bits of
// the 16-bit word holding the offset instead of a tag+payload split.
type Tag byte

const (
	TagShortInt Tag = 0 // 12-bit two's complement signed int, inline
	TagInt      Tag = 1 // 1-8 byte integer, sign flag, payload follows
	TagFloat    Tag = 2 // IEEE754 float or double, payload follows
	TagSpecial  Tag = 3 // null / undefined / false / true
	TagString   Tag = 4 // UTF-8 string
	TagBlob     Tag = 5 // opaque bytes
	TagArray    Tag = 6 // ordered sequence
	TagMap      Tag = 7 // key/value pairs, alternating, sorted by key
)

// Sub-tags for TagSpecial, carried in the low 4 bits of the 12-bit payload.
const (
	SpecialNull      = 0
	SpecialUndefined = 1
	SpecialFalse     = 2
	SpecialTrue      = 3
)

// pointerFlag is bit 15 of a 2-byte (narrow) or bit 31 of a 4-byte (wide)
// pointer cell. When set, the remaining bits (15 narrow / 31 wide) hold the
// target offset in 2-byte units, measured backwards from the slot.
const (
	narrowPointerFlag = uint16(1) << 15
	narrowOffsetMask  = uint16(0x7fff)
	widePointerFlag   = uint32(1) << 31
	wideOffsetMask    = uint32(0x7fffffff)
)

// SlotWidth is the per-container element size: 2 bytes or 4 bytes. Fixed at
// write time for an entire container.
type SlotWidth int

const (
	Width2 SlotWidth = 2
	Width4 SlotWidth = 4
)

// A container header's 12-bit payload is split into a width bit (bit 11)
// and an 11-bit count (bits 0-10). wideCountMarker is the "all ones" sentinel
// in the count field; its presence means the true count follows as a varint
// before the slot array.
const (
	countBits       = 11
	wideCountMarker = (1 << countBits) - 1
	maxInlineCount  = wideCountMarker - 1
	widthBitMask    = 1 << countBits

	headerTagShift    = 12
	headerPayloadMask = 0x0fff
)
