// Package resolve implements the two-phase decode-then-resolve engine.
//
// During a document's decode phase, every finished entity is cached under
// its composite identity and every reference field registers a deferred
// assignment. After the whole document has been decoded, a single Churn
// pass satisfies every pending assignment against the cache and resets the
// engine. Deferring all assignments to one batch pass is what makes
// forward and circular references safe: no decode ever recurses into
// another entity's decode.
//
// The engine is single-threaded. One engine owns exactly one
// document's decode+churn cycle; concurrent documents each need their own
// instance, or the caller must serialize whole cycles.
package resolve

import (
	"log/slog"

	"github.com/quiltsoft/stitch/internal/identity"
)

// Entity is anything the cache can hold: a decoded asset or typed entry
// exposing its own composite identity.
type Entity interface {
	IdentityKey() identity.Key
}

// SingleFunc receives the resolution of a single-target link: the cached
// entity, or (nil, false) when the target is absent. Absence is a valid
// end state - a deleted or unpublished target - not an error.
type SingleFunc func(Entity, bool)

// ArrayFunc receives the resolution of an array-of-links field: the cached
// targets in registration order, with absent members omitted. A partially
// resolvable array degrades to a shorter array rather than failing.
type ArrayFunc func([]Entity)

// pending is the callback list waiting on one resolution key.
// Singles and arrays never share a key: single keys are the identity's
// canonical string, array keys are domain-hashed composites.
type pending struct {
	targets []identity.Key // one element for singles, ordered list for arrays
	array   bool
	singles []SingleFunc
	arrays  []ArrayFunc
}

// Engine owns the entity cache and the resolution registry for one
// document cycle.
//
// INVARIANTS:
//   - callbacks registered under one key fire exactly once, in
//     registration order, during a single Churn
//   - at most one entity per identity key; last writer wins on duplicates
//     (recorded in the Report, never silently dropped from it)
//   - Churn leaves the engine holding no state from the processed document
type Engine struct {
	cache      map[identity.Key]Entity
	registry   map[string]*pending
	duplicates []identity.Key // identities overwritten during this decode pass
}

// NewEngine creates an empty engine ready for one document cycle.
func NewEngine() *Engine {
	return &Engine{
		cache:    make(map[identity.Key]Entity),
		registry: make(map[string]*pending),
	}
}

// CacheEntity inserts a decoded entity under its own identity.
// Always succeeds. A duplicate identity overwrites the previous entity
// (last write wins) and is recorded for the churn report.
func (e *Engine) CacheEntity(ent Entity) {
	key := ent.IdentityKey()
	if _, exists := e.cache[key]; exists {
		e.duplicates = append(e.duplicates, key)
		slog.Debug("duplicate identity in cache, last write wins", "key", key.String())
	}
	e.cache[key] = ent
}

// CacheEntities inserts a batch of decoded entities in order.
// Invoked once per kind after a batch's assets or entries finish decoding.
func (e *Engine) CacheEntities(ents []Entity) {
	for _, ent := range ents {
		e.CacheEntity(ent)
	}
}

// Get returns the cached entity for a key, or (nil, false) if absent.
// When the key carries a locale and has no exact match, the locale-less
// identity is tried as a fallback: wire links never carry a locale, so a
// document decoded without a locale view caches entities bare.
func (e *Engine) Get(key identity.Key) (Entity, bool) {
	if ent, ok := e.cache[key]; ok {
		return ent, true
	}
	if key.Locale != "" {
		if ent, ok := e.cache[key.WithoutLocale()]; ok {
			return ent, true
		}
	}
	return nil, false
}

// Len reports the number of cached entities. Used by tests and the CLI
// decode summary.
func (e *Engine) Len() int {
	return len(e.cache)
}

// RegisterSingle appends a deferred assignment waiting on one target.
// Pure registration: the cache is never consulted here, because the target
// may not have been decoded yet - forward and circular references are
// legal and expected.
func (e *Engine) RegisterSingle(target identity.Key, fn SingleFunc) {
	k := target.String()
	p, ok := e.registry[k]
	if !ok {
		p = &pending{targets: []identity.Key{target}}
		e.registry[k] = p
	}
	p.singles = append(p.singles, fn)
}

// RegisterArray appends a deferred assignment waiting on an ordered list
// of targets. The composite key is order-sensitive: resolution must
// deliver members in exactly this order.
func (e *Engine) RegisterArray(targets []identity.Key, fn ArrayFunc) {
	k := identity.ArrayKey(targets)
	p, ok := e.registry[k]
	if !ok {
		ordered := make([]identity.Key, len(targets))
		copy(ordered, targets)
		p = &pending{targets: ordered, array: true}
		e.registry[k] = p
	}
	p.arrays = append(p.arrays, fn)
}

// Churn executes every pending assignment against the cache, then resets
// cache and registry for the next document.
//
// Enumeration order across distinct keys is unspecified; the callback list
// within one key fires in registration order. Churn cannot fail: every
// failure mode is expressed as an absent value delivered to the waiting
// callback. A second Churn with no new registrations is a no-op returning
// an empty report.
func (e *Engine) Churn() *Report {
	report := &Report{Duplicates: e.duplicates}

	for key, p := range e.registry {
		if p.array {
			e.churnArray(key, p, report)
		} else {
			e.churnSingle(p, report)
		}
	}

	// Reset: the engine must hold no residual state referencing the
	// just-processed document.
	e.cache = make(map[identity.Key]Entity)
	e.registry = make(map[string]*pending)
	e.duplicates = nil

	return report
}

func (e *Engine) churnSingle(p *pending, report *Report) {
	target := p.targets[0]
	ent, ok := e.Get(target)
	if ok {
		report.Resolved += len(p.singles)
	} else {
		report.Unresolved += len(p.singles)
		report.Missing = append(report.Missing, target)
		slog.Debug("link target absent at churn", "key", target.String())
	}
	for _, fn := range p.singles {
		fn(ent, ok)
	}
}

func (e *Engine) churnArray(key string, p *pending, report *Report) {
	resolved := make([]Entity, 0, len(p.targets))
	truncated := false
	for _, target := range p.targets {
		ent, ok := e.Get(target)
		if !ok {
			truncated = true
			report.Missing = append(report.Missing, target)
			continue
		}
		resolved = append(resolved, ent)
	}
	if truncated {
		report.Truncated = append(report.Truncated, key)
		slog.Debug("link array truncated at churn",
			"key", key,
			"requested", len(p.targets),
			"resolved", len(resolved),
		)
	}
	report.Resolved += len(p.arrays)
	for _, fn := range p.arrays {
		fn(resolved)
	}
}
