// Package value implements the dynamic value model for arbitrary-shape
// content fields.
//
// Decoded fields form a tree of Value nodes: the JSON scalars and
// containers plus two domain extensions, Link (an unresolved reference to
// another entity) and FileMeta (asset file metadata). Decoding attempts
// every scalar and domain interpretation before falling back to the
// generic containers; see decode.go for why that ordering is load-bearing.
package value

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/quiltsoft/stitch/internal/identity"
)

// Value is a sealed interface over the dynamic field types.
// Only Null, Bool, Int, Float, String, List, Object, Link and FileMeta
// implement it.
type Value interface {
	value() // sealed
}

// Null represents an explicit JSON null.
// An explicit type (rather than a nil Value) keeps the sealed interface
// total: every decoded node is a non-nil Value.
type Null struct{}

func (Null) value() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Bool represents a boolean field value.
type Bool bool

func (Bool) value() {}

// Int represents an integral numeric field value.
// JSON numbers without a fractional part decode as Int, not Float, so
// identifiers and counts survive round-trips exactly.
type Int int64

func (Int) value() {}

// Float represents a fractional numeric field value.
type Float float64

func (Float) value() {}

// String represents a string field value.
type String string

func (String) value() {}

// List represents an ordered sequence of dynamic values.
type List []Value

func (List) value() {}

// Object represents a mapping from field name to dynamic value.
type Object map[string]Value

func (Object) value() {}

// Link is the placeholder a reference field decodes into: target kind and
// identifier, nothing more. Links are ephemeral - they exist between "this
// field is a reference" and "the reference was resolved or found absent",
// and are never persisted past a churn.
type Link struct {
	TargetKind identity.Kind
	TargetID   string
}

func (Link) value() {}

// Key builds the identity the link resolves against, under the given
// document locale.
func (l Link) Key(locale string) identity.Key {
	return identity.NewKey(l.TargetKind.Target(), l.TargetID, locale)
}

// MarshalJSON renders the wire link form:
// {"sys":{"type":"Link","linkType":<kind>,"id":<id>}}.
func (l Link) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"sys": map[string]any{
			"type":     "Link",
			"linkType": string(l.TargetKind),
			"id":       l.TargetID,
		},
	})
}

// FileMeta is the asset file metadata extension: the decoded form of an
// asset's "file" object.
type FileMeta struct {
	URL         string
	FileName    string
	ContentType string
	Size        int64
	Width       int64 // zero unless the file is an image
	Height      int64
}

func (FileMeta) value() {}

// MarshalJSON renders the wire file form with its nested details object.
func (f FileMeta) MarshalJSON() ([]byte, error) {
	details := map[string]any{"size": f.Size}
	if f.Width != 0 || f.Height != 0 {
		details["image"] = map[string]any{"width": f.Width, "height": f.Height}
	}
	return json.Marshal(map[string]any{
		"url":         f.URL,
		"fileName":    f.FileName,
		"contentType": f.ContentType,
		"details":     details,
	})
}

// MarshalValue marshals any Value to wire JSON via type-switch dispatch.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case Null:
		return []byte("null"), nil
	case Bool:
		return json.Marshal(bool(val))
	case Int:
		return json.Marshal(int64(val))
	case Float:
		return json.Marshal(float64(val))
	case String:
		return json.Marshal(string(val))
	case List:
		return marshalList(val)
	case Object:
		return val.MarshalJSON()
	case Link:
		return val.MarshalJSON()
	case FileMeta:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown value type: %T", v)
	}
}

func marshalList(list List) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range list {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := MarshalValue(elem)
		if err != nil {
			return nil, fmt.Errorf("list[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler for Object.
func (obj Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := MarshalValue(obj[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Links extracts the link members of a list.
// Returns nil unless every member is a Link: a field is an array-of-links
// only when it is homogeneous, otherwise it stays a plain list.
func (list List) Links() []Link {
	if len(list) == 0 {
		return nil
	}
	links := make([]Link, 0, len(list))
	for _, elem := range list {
		l, ok := elem.(Link)
		if !ok {
			return nil
		}
		links = append(links, l)
	}
	return links
}
