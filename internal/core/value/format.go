package value

import (
	"strconv"
	"strings"
)

var ctorNames = map[Kind]string{
	KindVec3:   "Vec3",
	KindVec4:   "Vec4",
	KindAngles: "Ang3",
	KindQuat:   "Quat",
	KindMat3:   "Mat3",
	KindMat4:   "Mat4",
}

// Format renders v in the definition language. Parse(Format(v)) yields a tree
// Equal to v for every finite value.
func Format(v Value) string {
	var sb strings.Builder
	writeValue(&sb, v)
	return sb.String()
}

func (v Value) String() string { return Format(v) }

func writeValue(sb *strings.Builder, v Value) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		s := strconv.FormatFloat(v.f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		sb.WriteString(s)
	case KindString:
		writeQuoted(sb, v.s)
	case KindComponent:
		writeName(sb, v.s)
		sb.WriteString(": ")
		writeValue(sb, *v.inner)
	case KindArray:
		openTok, closeTok := "[", "]"
		if isObject(v) {
			openTok, closeTok = "{", "}"
		}
		sb.WriteString(openTok)
		for i, item := range v.items {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeValue(sb, item)
		}
		sb.WriteString(closeTok)
	default:
		sb.WriteString(ctorNames[v.kind])
		sb.WriteByte('(')
		for i, n := range v.nums {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.FormatFloat(float64(n), 'g', -1, 32))
		}
		sb.WriteByte(')')
	}
}

func isObject(v Value) bool {
	if len(v.items) == 0 {
		return false
	}
	for _, item := range v.items {
		if item.kind != KindComponent {
			return false
		}
	}
	return true
}

func writeName(sb *strings.Builder, name string) {
	if isIdent(name) && name != "null" {
		sb.WriteString(name)
		return
	}
	writeQuoted(sb, name)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func writeQuoted(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
}
