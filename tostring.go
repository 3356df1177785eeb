package weft

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// ToString returns a compact, human-oriented rendering of v. Scalars are
// rendered bare (a string value renders as the string itself, not a quoted
// JSON string); arrays and maps fall back to their JSON form since they
// have no simpler plain-text rendering.
func (v Value) ToString() string {
	switch v.Kind() {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.AsInt64(), 10)
	case KindFloat:
		return strconv.FormatFloat(v.AsFloat64(), 'g', -1, 64)
	case KindString:
		return v.AsString()
	case KindBlob:
		return base64.StdEncoding.EncodeToString(v.AsBlob())
	default:
		return v.ToJSON()
	}
}

// ToJSON renders v as canonical, compact JSON text: object keys always
// double-quoted, no insignificant whitespace.
func (v Value) ToJSON() string {
	var sb strings.Builder
	writeJSON(&sb, v, false)
	return sb.String()
}

// ToJSON5 renders v as lenient JSON5 text: object keys that are
// identifier-like are written unquoted.
func (v Value) ToJSON5() string {
	var sb strings.Builder
	writeJSON(&sb, v, true)
	return sb.String()
}

func writeJSON(sb *strings.Builder, v Value, json5 bool) {
	switch v.Kind() {
	case KindUndefined, KindNull:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(v.ToString())
	case KindInt:
		sb.WriteString(v.ToString())
	case KindFloat:
		sb.WriteString(v.ToString())
	case KindString:
		writeJSONString(sb, v.AsString())
	case KindBlob:
		writeJSONString(sb, v.ToString())
	case KindArray:
		writeJSONArray(sb, v.AsArray(), json5)
	case KindMap:
		writeJSONMap(sb, v.AsMap(), json5)
	}
}

func writeJSONArray(sb *strings.Builder, a Array, json5 bool) {
	sb.WriteByte('[')
	for i := 0; i < a.Len(); i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeJSON(sb, a.Get(i), json5)
	}
	sb.WriteByte(']')
}

func writeJSONMap(sb *strings.Builder, m Map, json5 bool) {
	sb.WriteByte('{')
	first := true
	m.Range(func(key string, v Value) bool {
		if !first {
			sb.WriteByte(',')
		}
		first = false
		if json5 && isBareKey(key) {
			sb.WriteString(key)
		} else {
			writeJSONString(sb, key)
		}
		sb.WriteByte(':')
		writeJSON(sb, v, json5)
		return true
	})
	sb.WriteByte('}')
}

// isBareKey reports whether key can be written as an unquoted JSON5 object
// key: a JS-identifier-shaped string, not digit-led. This can no longer
// reuse sharedkeys.Eligible: that predicate's alphabet also admits ".",
// "/", and "-", none of which are legal inside a bare identifier, so the
// two questions only look alike.
func isBareKey(key string) bool {
	if len(key) == 0 || key[0] >= '0' && key[0] <= '9' {
		return false
	}
	for i := 0; i < len(key); i++ {
		if !isIdentByte(key[i]) {
			return false
		}
	}
	return true
}

func isIdentByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z':
		return true
	case b >= 'a' && b <= 'z':
		return true
	case b >= '0' && b <= '9':
		return true
	case b == '_' || b == '$':
		return true
	default:
		return false
	}
}

func writeJSONString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				sb.WriteString("\\u")
				const hex = "0123456789abcdef"
				sb.WriteByte(hex[(r>>12)&0xf])
				sb.WriteByte(hex[(r>>8)&0xf])
				sb.WriteByte(hex[(r>>4)&0xf])
				sb.WriteByte(hex[r&0xf])
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
}
