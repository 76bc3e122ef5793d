package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON for golden files and store
// payloads. The same Value tree always serializes to the same bytes.
//
// Properties, following RFC 8785:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//  4. Numbers in shortest round-trip form (1.0 serializes as "1")
//
// Unlike wire marshaling, the domain extensions serialize through their
// wire object form so a canonical document round-trips through Decode.
func MarshalCanonical(v Value) ([]byte, error) {
	switch val := v.(type) {
	case Null:
		return []byte("null"), nil
	case Bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case Int:
		return strconv.AppendInt(nil, int64(val), 10), nil
	case Float:
		return canonicalFloat(float64(val))
	case String:
		return canonicalString(string(val))
	case List:
		return canonicalList(val)
	case Object:
		return canonicalObject(val)
	case Link:
		return canonicalObject(Object{
			"sys": Object{
				"type":     String("Link"),
				"linkType": String(val.TargetKind),
				"id":       String(val.TargetID),
			},
		})
	case FileMeta:
		details := Object{"size": Int(val.Size)}
		if val.Width != 0 || val.Height != 0 {
			details["image"] = Object{"width": Int(val.Width), "height": Int(val.Height)}
		}
		return canonicalObject(Object{
			"url":         String(val.URL),
			"fileName":    String(val.FileName),
			"contentType": String(val.ContentType),
			"details":     details,
		})
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// SortedKeys returns object keys in RFC 8785 canonical order.
// Go's sort on strings compares UTF-8 bytes, which orders supplementary
// characters differently from the required UTF-16 code unit order.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

// compareUTF16 compares strings by UTF-16 code units as RFC 8785 requires.
func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}

func canonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	// Encoder appends a newline.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// canonicalFloat serializes a float the way ES6 Number::toString does,
// as RFC 8785 requires: positional notation for magnitudes in
// [1e-6, 1e21), exponent form outside that range, negative zero as "0".
// Shortest round-trip precision in both forms.
func canonicalFloat(f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite float has no canonical JSON form: %v", f)
	}
	if f == 0 {
		return []byte("0"), nil
	}
	abs := math.Abs(f)
	if abs < 1e-6 || abs >= 1e21 {
		return trimExponent(strconv.AppendFloat(nil, f, 'e', -1, 64)), nil
	}
	return strconv.AppendFloat(nil, f, 'f', -1, 64), nil
}

// trimExponent rewrites Go's zero-padded exponent ("1e-07") to the ES6
// form ("1e-7").
func trimExponent(b []byte) []byte {
	i := bytes.IndexByte(b, 'e')
	if i < 0 {
		return b
	}
	j := i + 1
	if j < len(b) && (b[j] == '+' || b[j] == '-') {
		j++
	}
	k := j
	for k < len(b)-1 && b[k] == '0' {
		k++
	}
	if k == j {
		return b
	}
	return append(b[:j], b[k:]...)
}

func canonicalList(list List) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range list {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := MarshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("list[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func canonicalObject(obj Object) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := canonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("canonical key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := MarshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("canonical value for key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
