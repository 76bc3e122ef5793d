package content

import (
	"github.com/quiltsoft/stitch/internal/identity"
	"github.com/quiltsoft/stitch/internal/resolve"
	"github.com/quiltsoft/stitch/internal/value"
)

// DecodeContext threads the resolution engine, the capability table and
// the active locale through every nested field decoder. An explicit
// context object - rather than ambient package state - keeps the engine
// instance's lifetime visible: one context serves exactly one document's
// decode+churn cycle.
type DecodeContext struct {
	Engine *resolve.Engine
	Types  *TypeRegistry
	Locale string // active locale view; empty for locale-less documents
}

// NewDecodeContext creates a context for one document cycle.
// types may be nil when the host registers no typed entries.
func NewDecodeContext(engine *resolve.Engine, types *TypeRegistry, locale string) *DecodeContext {
	return &DecodeContext{
		Engine: engine,
		Types:  types,
		Locale: identity.CanonicalLocale(locale),
	}
}

// RegisterLink registers a deferred assignment for a single-link field
// under the context's locale.
func (dc *DecodeContext) RegisterLink(l value.Link, fn resolve.SingleFunc) {
	dc.Engine.RegisterSingle(l.Key(dc.Locale), fn)
}

// RegisterLinks registers a deferred assignment for an array-of-links
// field. Target order is preserved through resolution.
func (dc *DecodeContext) RegisterLinks(links []value.Link, fn resolve.ArrayFunc) {
	targets := make([]identity.Key, len(links))
	for i, l := range links {
		targets[i] = l.Key(dc.Locale)
	}
	dc.Engine.RegisterArray(targets, fn)
}
