package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/quiltsoft/stitch/internal/content"
	"github.com/quiltsoft/stitch/internal/value"
)

// Snapshot renders a resolved document as a deterministic value tree.
// Canonical marshaling of the snapshot is byte-stable, which makes it
// suitable for golden comparison: resolved references appear as canonical
// key strings, never as pointers.
func Snapshot(res *Result) value.Object {
	snap := value.Object{
		"total":      value.Int(int64(res.Doc.Total)),
		"unresolved": value.Int(int64(res.Report.Unresolved)),
	}

	assets := make(value.List, 0, len(res.Doc.Assets))
	for _, a := range res.Doc.Assets {
		obj := value.Object{"id": value.String(a.Sys.ID)}
		if a.Sys.Locale != "" {
			obj["locale"] = value.String(a.Sys.Locale)
		}
		if a.Title != "" {
			obj["title"] = value.String(a.Title)
		}
		if a.File != (value.FileMeta{}) {
			obj["file"] = a.File
		}
		assets = append(assets, obj)
	}
	snap["assets"] = assets

	entries := make(value.List, 0, len(res.Doc.Entries))
	for _, e := range res.Doc.Entries {
		entries = append(entries, entrySnapshot(e))
	}
	snap["entries"] = entries

	return snap
}

func entrySnapshot(e *content.Entry) value.Object {
	obj := value.Object{
		"id":          value.String(e.Sys.ID),
		"contentType": value.String(e.Sys.ContentType),
		"fields":      e.Fields,
	}
	if e.Sys.Locale != "" {
		obj["locale"] = value.String(e.Sys.Locale)
	}

	if names := e.RefNames(); len(names) > 0 {
		refs := value.Object{}
		for _, name := range names {
			target, _ := e.Ref(name)
			refs[name] = value.String(target.IdentityKey().String())
		}
		obj["refs"] = refs
	}
	if names := e.RefListNames(); len(names) > 0 {
		refLists := value.Object{}
		for _, name := range names {
			keys := make(value.List, 0)
			for _, target := range e.Refs(name) {
				keys = append(keys, value.String(target.IdentityKey().String()))
			}
			refLists[name] = keys
		}
		obj["refLists"] = refLists
	}
	return obj
}

// RunWithGolden executes a scenario and compares its snapshot against the
// golden file testdata/<scenario.Name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *Scenario, baseDir string) *Result {
	t.Helper()

	res, err := Run(s, baseDir)
	if err != nil {
		t.Fatalf("run scenario %s: %v", s.Name, err)
	}

	data, err := value.MarshalCanonical(Snapshot(res))
	if err != nil {
		t.Fatalf("marshal snapshot %s: %v", s.Name, err)
	}

	g := goldie.New(t)
	g.Assert(t, s.Name, data)
	return res
}
