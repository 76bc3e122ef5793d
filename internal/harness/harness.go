package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/quiltsoft/stitch/internal/content"
	"github.com/quiltsoft/stitch/internal/resolve"
)

// Result is the outcome of executing one scenario.
type Result struct {
	Doc    *content.Document
	Report *resolve.Report
}

// Run executes a scenario: decodes its document fixture against a fresh
// engine and returns the resolved document and churn report.
// baseDir is the directory the scenario file was loaded from; the
// document path resolves relative to it.
func Run(s *Scenario, baseDir string) (*Result, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, s.Document))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: read document: %w", s.Name, err)
	}

	dc := content.NewDecodeContext(resolve.NewEngine(), nil, s.Locale)
	doc, report, err := content.DecodeDocument(data, dc)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return &Result{Doc: doc, Report: report}, nil
}

// Verify checks a result against the scenario's expectations.
// Returns one message per violated expectation; empty means the scenario
// passed.
func (s *Scenario) Verify(res *Result) []string {
	var failures []string
	fail := func(format string, args ...any) {
		failures = append(failures, fmt.Sprintf(format, args...))
	}

	if got := len(res.Doc.Entries); got != s.Expect.Entries {
		fail("entries: expected %d, got %d", s.Expect.Entries, got)
	}
	if got := len(res.Doc.Assets); got != s.Expect.Assets {
		fail("assets: expected %d, got %d", s.Expect.Assets, got)
	}
	if got := res.Report.Unresolved; got != s.Expect.Unresolved {
		fail("unresolved: expected %d, got %d", s.Expect.Unresolved, got)
	}
	if got := len(res.Report.Truncated); got != s.Expect.Truncated {
		fail("truncated: expected %d, got %d", s.Expect.Truncated, got)
	}
	if got := len(res.Report.Duplicates); got != s.Expect.Duplicates {
		fail("duplicates: expected %d, got %d", s.Expect.Duplicates, got)
	}

	entries := make(map[string]*content.Entry, len(res.Doc.Entries))
	for _, e := range res.Doc.Entries {
		entries[e.Sys.ID] = e
	}

	for _, ref := range s.Expect.Refs {
		entry, ok := entries[ref.Entry]
		if !ok {
			fail("ref %s.%s: entry not decoded", ref.Entry, ref.Field)
			continue
		}
		target, ok := entry.Ref(ref.Field)
		if !ok {
			fail("ref %s.%s: not resolved", ref.Entry, ref.Field)
			continue
		}
		if got := target.IdentityKey().String(); got != ref.Target {
			fail("ref %s.%s: expected target %s, got %s", ref.Entry, ref.Field, ref.Target, got)
		}
	}

	missing := make(map[string]bool, len(res.Report.Missing))
	for _, key := range res.Report.Missing {
		missing[key.String()] = true
	}
	for _, want := range s.Expect.Missing {
		if !missing[want] {
			fail("missing: expected %s in report", want)
		}
	}

	return failures
}
