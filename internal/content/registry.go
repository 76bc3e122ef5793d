package content

import (
	"fmt"

	"github.com/quiltsoft/stitch/internal/identity"
	"github.com/quiltsoft/stitch/internal/resolve"
	"github.com/quiltsoft/stitch/internal/value"
)

// TypedEntry is implemented by host-defined entry types. The decoder
// creates one via the registered factory, hands it its system metadata,
// then lets it decode its own fields - registering link assignments
// through the DecodeContext like any other field decoder.
//
// Embed EntryBase to satisfy everything except DecodeFields.
type TypedEntry interface {
	resolve.Entity
	SetSys(Sys)
	DecodeFields(dc *DecodeContext, fields value.Object) error
}

// EntryBase carries system metadata for host-defined entry types.
type EntryBase struct {
	Sys Sys
}

// SetSys stores the entity's system metadata.
func (b *EntryBase) SetSys(sys Sys) { b.Sys = sys }

// IdentityKey implements resolve.Entity.
func (b *EntryBase) IdentityKey() identity.Key { return b.Sys.Key() }

// EntryFactory constructs an empty typed entry for one content type.
type EntryFactory func() TypedEntry

// TypeRegistry is the capability table mapping a wire content-type tag to
// the in-memory type used when decoding entries of that type. Supplied by
// the host at startup and consulted - never hardcoded - during entity
// decode. Entries whose tag has no registration fall back to the generic
// Entry.
//
// Populate during initialization; the registry is not safe for concurrent
// mutation with decoding.
type TypeRegistry struct {
	factories map[string]EntryFactory
}

// NewTypeRegistry creates an empty capability table.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{factories: make(map[string]EntryFactory)}
}

// Register maps a content-type tag to a factory.
// Duplicate tags are a configuration error.
func (r *TypeRegistry) Register(tag string, factory EntryFactory) error {
	if tag == "" {
		return fmt.Errorf("register content type: empty tag")
	}
	if factory == nil {
		return fmt.Errorf("register content type %q: nil factory", tag)
	}
	if _, exists := r.factories[tag]; exists {
		return fmt.Errorf("register content type: duplicate tag %q", tag)
	}
	r.factories[tag] = factory
	return nil
}

// Lookup returns the factory for a tag, if registered.
func (r *TypeRegistry) Lookup(tag string) (EntryFactory, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.factories[tag]
	return f, ok
}
