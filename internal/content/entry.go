package content

import (
	"sort"

	"github.com/quiltsoft/stitch/internal/identity"
	"github.com/quiltsoft/stitch/internal/resolve"
	"github.com/quiltsoft/stitch/internal/value"
)

// Entry is a generic typed content record: system metadata plus dynamic
// fields. Reference fields register deferred assignments while the entry
// decodes; after churn the resolved targets are available through Ref and
// Refs. Fields keeps the wire echo of every field, link placeholders
// included, so a decoded entry can be re-serialized; resolution state
// lives only in the accessors.
type Entry struct {
	Sys    Sys
	Fields value.Object

	refs     map[string]resolve.Entity
	refLists map[string][]resolve.Entity
}

// IdentityKey implements resolve.Entity.
func (e *Entry) IdentityKey() identity.Key {
	return e.Sys.Key()
}

// Ref returns the resolved target of a single-link field.
// ok is false when the field was not a link or its target was absent at
// churn time.
func (e *Entry) Ref(field string) (resolve.Entity, bool) {
	ent, ok := e.refs[field]
	return ent, ok
}

// Refs returns the resolved targets of an array-of-links field, in wire
// order with absent members omitted. Nil when the field was not a link
// array or churn has not run.
func (e *Entry) Refs(field string) []resolve.Entity {
	return e.refLists[field]
}

// RefNames returns the sorted names of single-link fields that resolved.
func (e *Entry) RefNames() []string {
	names := make([]string, 0, len(e.refs))
	for name := range e.refs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RefListNames returns the sorted names of array-of-links fields that
// were registered for resolution.
func (e *Entry) RefListNames() []string {
	names := make([]string, 0, len(e.refLists))
	for name := range e.refLists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decodeEntry builds a generic Entry and registers a deferred assignment
// for every reference field. Registration never consults the cache: the
// target may decode later in the batch, or may reference this very entry.
func decodeEntry(dc *DecodeContext, sys Sys, fields value.Object) *Entry {
	e := &Entry{
		Sys:      sys,
		Fields:   fields,
		refs:     make(map[string]resolve.Entity),
		refLists: make(map[string][]resolve.Entity),
	}

	for name, v := range fields {
		name := name
		switch field := v.(type) {
		case value.Link:
			dc.RegisterLink(field, func(ent resolve.Entity, ok bool) {
				if ok {
					e.refs[name] = ent
				}
				// Absent target: leave the field unset. The document
				// report records the miss.
			})
		case value.List:
			links := field.Links()
			if links == nil {
				continue
			}
			dc.RegisterLinks(links, func(ents []resolve.Entity) {
				e.refLists[name] = ents
			})
		}
	}

	return e
}
