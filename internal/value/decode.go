package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quiltsoft/stitch/internal/identity"
)

// Decode parses arbitrary-shape JSON into a Value tree.
//
// Interpretation order is the one subtle correctness rule here: for an
// object, the domain shapes (Link, then FileMeta) are attempted BEFORE the
// generic Object fallback. A link or file-metadata object is structurally
// a plain mapping too, so trying the generic container first would shadow
// the domain types and no reference would ever register for resolution.
// Scalars are unambiguous and carry no ordering hazard.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	return fromAny(raw)
}

// UnmarshalJSON implements json.Unmarshaler for Object, applying the same
// interpretation order to every nested member.
func (obj *Object) UnmarshalJSON(data []byte) error {
	v, err := Decode(data)
	if err != nil {
		return err
	}
	o, ok := v.(Object)
	if !ok {
		return fmt.Errorf("expected object, decoded %T", v)
	}
	*obj = o
	return nil
}

// fromAny converts a json-decoded Go value into a Value.
// Numbers are tried as int64 before float64 so integral values stay exact.
func fromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case json.Number:
		s := string(val)
		if !strings.ContainsAny(s, ".eE") {
			n, err := val.Int64()
			if err == nil {
				return Int(n), nil
			}
			// Integral but beyond int64 range: degrade to float.
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("unrepresentable number: %s", s)
		}
		return Float(f), nil
	case []any:
		list := make(List, len(val))
		for i, elem := range val {
			dv, err := fromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list[i] = dv
		}
		return list, nil
	case map[string]any:
		// Domain shapes before the generic container (ordering rule).
		if link, ok := asLink(val); ok {
			return link, nil
		}
		if file, ok := asFileMeta(val); ok {
			return file, nil
		}
		obj := make(Object, len(val))
		for k, elem := range val {
			dv, err := fromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = dv
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported JSON type: %T", v)
	}
}

// asLink recognizes the wire link shape:
// {"sys": {"type": "Link", "linkType": <kind>, "id": <id>}}.
// The object must consist of exactly the sys wrapper; anything extra is a
// plain mapping that merely contains a sys member.
func asLink(m map[string]any) (Link, bool) {
	if len(m) != 1 {
		return Link{}, false
	}
	sys, ok := m["sys"].(map[string]any)
	if !ok {
		return Link{}, false
	}
	typ, _ := sys["type"].(string)
	if typ != string(identity.KindLink) {
		return Link{}, false
	}
	linkType, _ := sys["linkType"].(string)
	id, _ := sys["id"].(string)
	kind, err := identity.ParseKind(linkType)
	if err != nil || id == "" {
		return Link{}, false
	}
	return Link{TargetKind: kind, TargetID: id}, true
}

// asFileMeta recognizes the wire file shape on asset fields:
// {"url": ..., "fileName": ..., "contentType": ..., "details": {...}}.
// fileName and contentType are the discriminating pair; url alone is too
// common in plain content objects.
func asFileMeta(m map[string]any) (FileMeta, bool) {
	fileName, okName := m["fileName"].(string)
	contentType, okType := m["contentType"].(string)
	if !okName || !okType {
		return FileMeta{}, false
	}

	f := FileMeta{FileName: fileName, ContentType: contentType}
	f.URL, _ = m["url"].(string)

	if details, ok := m["details"].(map[string]any); ok {
		f.Size = intFromAny(details["size"])
		if image, ok := details["image"].(map[string]any); ok {
			f.Width = intFromAny(image["width"])
			f.Height = intFromAny(image["height"])
		}
	}
	return f, true
}

// intFromAny extracts an int64 from a json.Number, tolerating absence.
func intFromAny(v any) int64 {
	n, ok := v.(json.Number)
	if !ok {
		return 0
	}
	i, err := n.Int64()
	if err != nil {
		return 0
	}
	return i
}
