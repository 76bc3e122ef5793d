package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/quiltsoft/stitch/internal/content"
	"github.com/quiltsoft/stitch/internal/resolve"
)

// Run describes one persisted snapshot.
type Run struct {
	Token      string
	Source     string
	CreatedAt  string
	Total      int
	EntryCount int
	AssetCount int
	Unresolved int
}

// NewRunToken generates a time-sortable UUIDv7 token for a snapshot run.
// Sortable tokens keep `stitch inspect` listings in ingestion order.
func NewRunToken() string {
	return uuid.Must(uuid.NewV7()).String()
}

// WriteSnapshot persists a decoded document and its resolution report as
// one run, atomically: either the run and all its entities commit, or
// nothing does.
//
// Entity rows upsert on the composite identity, so a duplicate identity
// within the document overwrites - the same last-write-wins rule the
// entity cache applies.
func (s *Store) WriteSnapshot(ctx context.Context, token, source string, doc *content.Document, report *resolve.Report) (Run, error) {
	run := Run{
		Token:      token,
		Source:     source,
		Total:      doc.Total,
		EntryCount: len(doc.Entries),
		AssetCount: len(doc.Assets),
		Unresolved: report.Unresolved,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (token, source, total, entry_count, asset_count, unresolved)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.Token, run.Source, run.Total, run.EntryCount, run.AssetCount, run.Unresolved)
	if err != nil {
		return Run{}, fmt.Errorf("write run %s: %w", run.Token, err)
	}

	seq := 0
	writeEntity := func(kind, id, locale, contentType, fields string) error {
		seq++
		_, err := tx.ExecContext(ctx, `
			INSERT INTO entities (run_token, kind, id, locale, content_type, fields, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_token, kind, id, locale) DO UPDATE SET
				content_type = excluded.content_type,
				fields = excluded.fields,
				seq = excluded.seq
		`, run.Token, kind, id, locale, contentType, fields, seq)
		if err != nil {
			return fmt.Errorf("write entity %s_%s: %w", kind, id, err)
		}
		return nil
	}

	for _, asset := range doc.Assets {
		fields, err := marshalAssetFields(asset)
		if err != nil {
			return Run{}, err
		}
		sys := asset.Sys
		if err := writeEntity(string(sys.Kind), sys.ID, sys.Locale, "", fields); err != nil {
			return Run{}, err
		}
	}
	for _, entry := range doc.Entries {
		fields, err := marshalEntryFields(entry)
		if err != nil {
			return Run{}, err
		}
		sys := entry.Sys
		if err := writeEntity(string(sys.Kind), sys.ID, sys.Locale, sys.ContentType, fields); err != nil {
			return Run{}, err
		}
	}
	for _, tomb := range doc.Tombstones {
		sys := tomb.Sys
		if err := writeEntity(string(sys.Kind), sys.ID, sys.Locale, "", "{}"); err != nil {
			return Run{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit snapshot %s: %w", run.Token, err)
	}
	return run, nil
}
