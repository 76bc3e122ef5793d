// Package content decodes delivery documents: system metadata, assets and
// entries, the host-supplied capability table for typed entries, and the
// response envelope that drives the two-phase decode-then-resolve cycle.
package content

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/quiltsoft/stitch/internal/identity"
)

// Sys is the system metadata present on every entity's wire
// representation. Identity (kind, id, locale) derives from here.
type Sys struct {
	ID          string
	Kind        identity.Kind
	Locale      string
	ContentType string // wire content-type tag; empty for assets and tombstones
	Revision    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Key returns the entity's composite identity.
func (s Sys) Key() identity.Key {
	return identity.NewKey(s.Kind, s.ID, s.Locale)
}

// sysWire mirrors the "sys" sub-object on the wire.
type sysWire struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Locale      string `json:"locale"`
	Revision    int    `json:"revision"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	ContentType *struct {
		Sys struct {
			ID string `json:"id"`
		} `json:"sys"`
	} `json:"contentType"`
}

// decodeSys parses a raw sys object into Sys.
// A missing id or an unknown type tag aborts the enclosing entity's
// decode; malformed timestamps do not (they are bookkeeping, not identity).
func decodeSys(raw json.RawMessage) (Sys, error) {
	var w sysWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Sys{}, fmt.Errorf("decode sys: %w", err)
	}
	if w.ID == "" {
		return Sys{}, fmt.Errorf("decode sys: missing id")
	}
	kind, err := identity.ParseKind(w.Type)
	if err != nil {
		return Sys{}, fmt.Errorf("decode sys %q: %w", w.ID, err)
	}

	s := Sys{
		ID:       w.ID,
		Kind:     kind,
		Locale:   identity.CanonicalLocale(w.Locale),
		Revision: w.Revision,
	}
	if w.ContentType != nil {
		s.ContentType = w.ContentType.Sys.ID
	}
	if t, err := time.Parse(time.RFC3339, w.CreatedAt); err == nil {
		s.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, w.UpdatedAt); err == nil {
		s.UpdatedAt = t
	}
	return s, nil
}
