package content

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/quiltsoft/stitch/internal/identity"
	"github.com/quiltsoft/stitch/internal/resolve"
	"github.com/quiltsoft/stitch/internal/value"
)

// Document is a fully decoded and resolved delivery response.
type Document struct {
	Total int
	Skip  int
	Limit int

	// Items holds the top-level result entities in document order.
	Items []resolve.Entity

	// Entries and Assets collect every decoded record of each kind,
	// top-level items and includes alike, in decode order. Typed entries
	// (capability-table hits) appear in Items but not in Entries.
	Entries []*Entry
	Assets  []*Asset

	// Tombstones collects deleted-entity records (sync documents).
	Tombstones []*Deleted
}

// envelope mirrors the top-level response shape.
type envelope struct {
	Total    int               `json:"total"`
	Skip     int               `json:"skip"`
	Limit    int               `json:"limit"`
	Items    []json.RawMessage `json:"items"`
	Includes struct {
		Entry []json.RawMessage `json:"Entry"`
		Asset []json.RawMessage `json:"Asset"`
	} `json:"includes"`
}

// entityWire is the per-entity shape: system metadata plus dynamic fields.
type entityWire struct {
	Sys    json.RawMessage `json:"sys"`
	Fields value.Object    `json:"fields"`
}

// DecodeDocument decodes a complete delivery response and resolves every
// link in it.
//
// The cycle is strictly two-phase. Phase one decodes and caches every
// entity in the document - assets first, then entries, includes before
// top-level items of the same kind - while reference fields register
// deferred assignments. Phase two is a single churn that satisfies every
// registered assignment against the cache and resets the engine. Decode
// errors on an individual entity abort the whole decode before churn runs;
// unresolved links do not, they surface in the returned report.
func DecodeDocument(data []byte, dc *DecodeContext) (*Document, *resolve.Report, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("decode document envelope: %w", err)
	}

	doc := &Document{Total: env.Total, Skip: env.Skip, Limit: env.Limit}

	var assets []resolve.Entity
	var entries []resolve.Entity

	classify := func(raw json.RawMessage, topLevel bool) error {
		ent, err := decodeEntity(dc, raw)
		if err != nil {
			return err
		}
		switch e := ent.(type) {
		case *Asset:
			doc.Assets = append(doc.Assets, e)
			assets = append(assets, e)
		case *Entry:
			doc.Entries = append(doc.Entries, e)
			entries = append(entries, e)
		case *Deleted:
			doc.Tombstones = append(doc.Tombstones, e)
			entries = append(entries, e)
		default:
			// Typed entry from the capability table.
			entries = append(entries, ent)
		}
		if topLevel {
			doc.Items = append(doc.Items, ent)
		}
		return nil
	}

	for i, raw := range env.Includes.Asset {
		if err := classify(raw, false); err != nil {
			return nil, nil, fmt.Errorf("decode includes.Asset[%d]: %w", i, err)
		}
	}
	for i, raw := range env.Includes.Entry {
		if err := classify(raw, false); err != nil {
			return nil, nil, fmt.Errorf("decode includes.Entry[%d]: %w", i, err)
		}
	}
	for i, raw := range env.Items {
		if err := classify(raw, true); err != nil {
			return nil, nil, fmt.Errorf("decode items[%d]: %w", i, err)
		}
	}

	// Cache per kind, assets before entries, then resolve in one pass.
	dc.Engine.CacheEntities(assets)
	dc.Engine.CacheEntities(entries)
	report := dc.Engine.Churn()

	slog.Debug("document decoded",
		"items", len(doc.Items),
		"entries", len(doc.Entries),
		"assets", len(doc.Assets),
		"resolved", report.Resolved,
		"unresolved", report.Unresolved,
	)

	return doc, report, nil
}

// decodeEntity decodes one entity from its wire form, dispatching on the
// sys type tag and - for entries - the capability table.
func decodeEntity(dc *DecodeContext, raw json.RawMessage) (resolve.Entity, error) {
	var w entityWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode entity: %w", err)
	}
	if len(w.Sys) == 0 {
		return nil, fmt.Errorf("decode entity: missing sys")
	}
	sys, err := decodeSys(w.Sys)
	if err != nil {
		return nil, err
	}

	switch sys.Kind {
	case identity.KindAsset:
		return decodeAsset(sys, w.Fields), nil

	case identity.KindEntry:
		if factory, ok := dc.Types.Lookup(sys.ContentType); ok {
			typed := factory()
			typed.SetSys(sys)
			if err := typed.DecodeFields(dc, w.Fields); err != nil {
				return nil, fmt.Errorf("decode entry %q (%s): %w", sys.ID, sys.ContentType, err)
			}
			return typed, nil
		}
		return decodeEntry(dc, sys, w.Fields), nil

	case identity.KindDeletedEntry, identity.KindDeletedAsset:
		return &Deleted{Sys: sys}, nil

	default:
		return nil, fmt.Errorf("decode entity %q: unexpected kind %s", sys.ID, sys.Kind)
	}
}
